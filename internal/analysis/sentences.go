package analysis

import (
	"regexp"
	"strings"
)

// sentenceBoundary matches a terminal punctuation mark and the whitespace run
// that follows it. The punctuation stays with the preceding sentence.
var sentenceBoundary = regexp.MustCompile(`[.!?]\s+`)

// SplitSentences segments text into trimmed, non-empty sentences in document
// order. A boundary is any '.', '!' or '?' followed by whitespace; the final
// fragment is kept even without terminal punctuation.
func SplitSentences(text string) []string {
	boundaries := sentenceBoundary.FindAllStringIndex(text, -1)
	sentences := make([]string, 0, len(boundaries)+1)
	start := 0

	for _, boundary := range boundaries {
		// The punctuation mark is a single ASCII byte.
		sentences = appendSentence(sentences, text[start:boundary[0]+1])
		start = boundary[1]
	}

	sentences = appendSentence(sentences, text[start:])

	return sentences
}

func appendSentence(sentences []string, piece string) []string {
	trimmed := strings.TrimSpace(piece)
	if trimmed == "" {
		return sentences
	}

	return append(sentences, trimmed)
}
