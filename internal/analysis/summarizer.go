package analysis

import (
	"math"
	"sort"
	"strings"
)

// DefaultMaxSentences is the summary length used when a caller asks for fewer
// than one sentence.
const DefaultMaxSentences = 3

// SentenceScore is the transient ranking record of one sentence.
type SentenceScore struct {
	Index int
	Text  string
	Score float64
}

// ScoreSentence sums 1 + ln(1 + f) over every non-stopword token of sentence,
// where f is the token's count in table. Tokens missing from table add nothing.
func ScoreSentence(sentence string, table FrequencyTable) float64 {
	score := 0.0

	for _, token := range Tokenize(sentence) {
		frequency := table.Count(token)
		if frequency == 0 {
			continue
		}

		score += 1 + math.Log(1+float64(frequency))
	}

	return score
}

// RankSentences scores every sentence against table and orders the result by
// descending score. Equal scores keep their original relative order.
func RankSentences(sentences []string, table FrequencyTable) []SentenceScore {
	ranked := make([]SentenceScore, len(sentences))

	for index, sentence := range sentences {
		ranked[index] = SentenceScore{
			Index: index,
			Text:  sentence,
			Score: ScoreSentence(sentence, table),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// Summarize returns the maxSentences highest-scoring sentences of text,
// re-emitted in document order and joined with a single space. Frequencies are
// computed over the whole text. When text has no more sentences than
// maxSentences it is returned unchanged. A maxSentences below one falls back
// to DefaultMaxSentences.
func Summarize(text string, maxSentences int) string {
	if maxSentences < 1 {
		maxSentences = DefaultMaxSentences
	}

	sentences := SplitSentences(text)
	if len(sentences) <= maxSentences {
		return text
	}

	ranked := RankSentences(sentences, BuildFrequencyTable(text))

	selected := make([]int, maxSentences)
	for position := range selected {
		selected[position] = ranked[position].Index
	}

	sort.Ints(selected)

	chosen := make([]string, len(selected))
	for position, index := range selected {
		chosen[position] = sentences[index]
	}

	return strings.Join(chosen, " ")
}
