package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/book-expert/note-reader/internal/analysis"
)

func TestSplitSentences(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty text yields no sentences",
			input:    "",
			expected: []string{},
		},
		{
			name:     "whitespace only yields no sentences",
			input:    "   \t ",
			expected: []string{},
		},
		{
			name:     "mixed terminators",
			input:    "Hi there. How are you? Fine!",
			expected: []string{"Hi there.", "How are you?", "Fine!"},
		},
		{
			name:     "no terminal punctuation yields whole text",
			input:    "  just one fragment  ",
			expected: []string{"just one fragment"},
		},
		{
			name:     "residual fragment kept",
			input:    "First one. and then some",
			expected: []string{"First one.", "and then some"},
		},
		{
			name:     "punctuation without following whitespace does not split",
			input:    "Version 1.5 is out.Really? Yes.",
			expected: []string{"Version 1.5 is out.Really?", "Yes."},
		},
		{
			name:     "ellipsis splits after last dot",
			input:    "Wait... What happened?",
			expected: []string{"Wait...", "What happened?"},
		},
		{
			name:     "tab counts as whitespace",
			input:    "One.\tTwo.",
			expected: []string{"One.", "Two."},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.expected, analysis.SplitSentences(testCase.input))
		})
	}
}

func TestSplitSentences_Deterministic(t *testing.T) {
	t.Parallel()

	text := "Hi there. How are you? Fine!"

	first := analysis.SplitSentences(text)
	second := analysis.SplitSentences(text)

	require.Equal(t, first, second)
}
