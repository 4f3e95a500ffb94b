package analysis_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/note-reader/internal/analysis"
)

const photosynthesisNotes = "Photosynthesis converts light into chemical energy. " +
	"Plants use chlorophyll to capture light. " +
	"My cousin visited on Tuesday. " +
	"Light energy drives photosynthesis in plants. " +
	"The weather was nice. " +
	"Chlorophyll absorbs light energy for photosynthesis."

func TestSummarize_NoOpWhenShort(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		text         string
		maxSentences int
	}{
		{name: "empty text", text: "", maxSentences: 3},
		{name: "fewer sentences than limit", text: "One. Two.", maxSentences: 3},
		{name: "exactly the limit keeps spacing", text: "One.   Two!  Three?", maxSentences: 3},
		{name: "single fragment", text: "no punctuation here", maxSentences: 1},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, testCase.text, analysis.Summarize(testCase.text, testCase.maxSentences))
		})
	}
}

func TestSummarize_SelectsTopSentencesInDocumentOrder(t *testing.T) {
	t.Parallel()

	summary := analysis.Summarize(photosynthesisNotes, 3)

	require.Equal(
		t,
		"Photosynthesis converts light into chemical energy. "+
			"Light energy drives photosynthesis in plants. "+
			"Chlorophyll absorbs light energy for photosynthesis.",
		summary,
	)
}

func TestSummarize_SelectionCountAndOrder(t *testing.T) {
	t.Parallel()

	sentences := analysis.SplitSentences(photosynthesisNotes)

	for maxSentences := 1; maxSentences < len(sentences); maxSentences++ {
		summary := analysis.Summarize(photosynthesisNotes, maxSentences)
		chosen := analysis.SplitSentences(summary)

		require.Len(t, chosen, maxSentences)

		previous := -1

		for _, sentence := range chosen {
			position := indexOf(sentences, sentence)
			require.GreaterOrEqual(t, position, 0, "summary sentence %q not in source", sentence)
			require.Greater(t, position, previous, "summary is not in document order")

			previous = position
		}
	}
}

func TestSummarize_NonPositiveLimitUsesDefault(t *testing.T) {
	t.Parallel()

	summary := analysis.Summarize(photosynthesisNotes, 0)

	assert.Len(t, analysis.SplitSentences(summary), analysis.DefaultMaxSentences)
	assert.Equal(t, analysis.Summarize(photosynthesisNotes, analysis.DefaultMaxSentences), summary)
}

func TestSummarize_StopwordOnlySentenceScoresZero(t *testing.T) {
	t.Parallel()

	text := "It is what it is. Rockets need fuel. Fuel makes rockets fly. So it was."
	summary := analysis.Summarize(text, 2)

	require.Equal(t, "Rockets need fuel. Fuel makes rockets fly.", summary)
}

func TestScoreSentence(t *testing.T) {
	t.Parallel()

	table := analysis.FrequencyTable{"cat": 2, "dog": 1}

	expected := 2*(1+math.Log(3)) + (1 + math.Log(2))
	require.InDelta(t, expected, analysis.ScoreSentence("The cat, the cat and a dog", table), 1e-9)
	require.Zero(t, analysis.ScoreSentence("It is what it is", table))
	require.Zero(t, analysis.ScoreSentence("unknown words only", table))
}

func TestRankSentences_OrdersByDescendingScore(t *testing.T) {
	t.Parallel()

	sentences := []string{"alpha beta.", "gamma delta.", "alpha beta alpha."}
	table := analysis.BuildFrequencyTable(strings.Join(sentences, " "))

	ranked := analysis.RankSentences(sentences, table)

	require.Len(t, ranked, 3)
	require.Equal(t, []int{2, 0, 1}, rankedIndexes(ranked))
	require.Equal(t, "alpha beta alpha.", ranked[0].Text)
}

func TestRankSentences_EqualScoresKeepDocumentOrder(t *testing.T) {
	t.Parallel()

	sentences := []string{"noise.", "red blue.", "blue red.", "red."}
	table := analysis.BuildFrequencyTable(strings.Join(sentences, " "))

	ranked := analysis.RankSentences(sentences, table)

	require.Equal(t, []int{1, 2, 3, 0}, rankedIndexes(ranked))
}

func rankedIndexes(ranked []analysis.SentenceScore) []int {
	indexes := make([]int, len(ranked))
	for position, score := range ranked {
		indexes[position] = score.Index
	}

	return indexes
}

func indexOf(sentences []string, target string) int {
	for index, sentence := range sentences {
		if sentence == target {
			return index
		}
	}

	return -1
}
