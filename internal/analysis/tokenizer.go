// Package analysis implements the offline text-analysis core of the note
// reader: tokenization, sentence segmentation, frequency-weighted extractive
// summarization and keyword-overlap question answering.
//
// Every function in this package is a pure function of its inputs. Nothing
// here logs, blocks or keeps state between calls, so callers may use it from
// any goroutine.
package analysis

import (
	"regexp"
	"strings"
)

// tokenSeparator matches any maximal run of characters that are not ASCII
// letters or digits. It is applied to already-lowercased text.
var tokenSeparator = regexp.MustCompile(`[^a-z0-9]+`)

// stopwords is the fixed set of low-information words excluded from scoring.
var stopwords = map[string]struct{}{
	"the": {}, "is": {}, "in": {}, "at": {}, "of": {}, "on": {}, "and": {},
	"a": {}, "an": {}, "to": {}, "for": {}, "it": {}, "this": {}, "that": {},
	"with": {}, "as": {}, "by": {}, "be": {}, "are": {}, "or": {}, "from": {},
	"was": {}, "were": {}, "but": {}, "if": {}, "then": {}, "so": {}, "we": {},
	"you": {}, "your": {},
}

// TokenSet is a set of normalized tokens. Order is irrelevant.
type TokenSet map[string]struct{}

// Contains reports whether token is a member of the set.
func (s TokenSet) Contains(token string) bool {
	_, ok := s[token]

	return ok
}

// Overlap returns the number of distinct tokens present in both sets.
func (s TokenSet) Overlap(other TokenSet) int {
	smaller, larger := s, other
	if len(larger) < len(smaller) {
		smaller, larger = larger, smaller
	}

	shared := 0

	for token := range smaller {
		if larger.Contains(token) {
			shared++
		}
	}

	return shared
}

// IsStopword reports whether word belongs to the fixed stopword set.
// Matching is case-insensitive.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]

	return ok
}

// Tokenize lowercases text, splits it on runs of non-alphanumeric ASCII
// characters and drops empty tokens and stopwords. Duplicates are preserved
// in order of appearance.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	parts := tokenSeparator.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		if _, isStopword := stopwords[part]; isStopword {
			continue
		}

		tokens = append(tokens, part)
	}

	return tokens
}

// NewTokenSet tokenizes text and collapses duplicate tokens into a set.
func NewTokenSet(text string) TokenSet {
	tokens := Tokenize(text)
	set := make(TokenSet, len(tokens))

	for _, token := range tokens {
		set[token] = struct{}{}
	}

	return set
}
