package analysis

import "strings"

// Sentinel replies returned by Answer instead of errors.
const (
	// BlankQuestionMessage is returned when the question is empty or whitespace.
	BlankQuestionMessage = "Please type a question."
	// BlankContextMessage is returned when there is no text to search. It shares
	// the wording of BlankQuestionMessage.
	BlankContextMessage = BlankQuestionMessage
	// NoKeywordsMessage is returned when the question holds only stopwords or
	// punctuation.
	NoKeywordsMessage = "Please include some keywords in your question."
	// NoAnswerMessage is returned when no sentence shares a keyword with the
	// question.
	NoAnswerMessage = "I couldn't find an exact answer in the text."
)

// IsSentinel reports whether reply is one of the fixed Answer sentinels rather
// than text taken from the context.
func IsSentinel(reply string) bool {
	switch reply {
	case BlankQuestionMessage, NoKeywordsMessage, NoAnswerMessage:
		return true
	default:
		return false
	}
}

// BestMatches returns every sentence of context sharing the largest number of
// distinct keywords with question, in document order, together with that
// overlap. It returns a nil slice and zero when nothing overlaps.
func BestMatches(context string, question TokenSet) ([]string, int) {
	bestOverlap := 0

	var best []string

	for _, sentence := range SplitSentences(context) {
		overlap := question.Overlap(NewTokenSet(sentence))

		switch {
		case overlap == 0:
			continue
		case overlap > bestOverlap:
			bestOverlap = overlap
			best = append(best[:0], sentence)
		case overlap == bestOverlap:
			best = append(best, sentence)
		}
	}

	return best, bestOverlap
}

// Answer returns the context sentence(s) that best match the question's
// keywords, joined with a single space. Degenerate inputs produce one of the
// sentinel messages.
func Answer(context, question string) string {
	if strings.TrimSpace(question) == "" {
		return BlankQuestionMessage
	}

	if strings.TrimSpace(context) == "" {
		return BlankContextMessage
	}

	keywords := NewTokenSet(question)
	if len(keywords) == 0 {
		return NoKeywordsMessage
	}

	best, _ := BestMatches(context, keywords)
	if len(best) == 0 {
		return NoAnswerMessage
	}

	return strings.Join(best, " ")
}
