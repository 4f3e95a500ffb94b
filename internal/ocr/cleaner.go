package ocr

import (
	"regexp"
	"strings"
	"unicode"
)

// Cleaner repairs the layout artifacts OCR engines leave in recognized text.
// It holds only precompiled expressions, so one instance may be shared.
type Cleaner struct {
	reHyphenBreak     *regexp.Regexp
	reLineBreaks      *regexp.Regexp
	reMultiSpace      *regexp.Regexp
	reSpacedLetters   *regexp.Regexp
	reInnerWhitespace *regexp.Regexp
}

// NewCleaner creates a new text cleaner with all regular expressions precompiled.
func NewCleaner() *Cleaner {
	return &Cleaner{
		reHyphenBreak: regexp.MustCompile(`-\s*\n`),
		reLineBreaks:  regexp.MustCompile(`[\r\n]+`),
		reMultiSpace:  regexp.MustCompile(`\s{2,}`),
		// At least three single letters separated by whitespace, e.g. "L E A R N".
		reSpacedLetters:   regexp.MustCompile(`\b[A-Za-z](?:\s+[A-Za-z]){2,}\b`),
		reInnerWhitespace: regexp.MustCompile(`\s+`),
	}
}

// Clean turns raw OCR output into clean text: one line, single spaces, no
// control characters other than tab, and letter-spaced words re-joined.
// Clean is idempotent.
func (c *Cleaner) Clean(input string) string {
	if input == "" {
		return input
	}

	// 1. Merge words hyphenated across a line break: "exam-\nple" -> "example".
	text := c.reHyphenBreak.ReplaceAllString(input, "")

	// 2. Remaining line breaks become spaces.
	text = c.reLineBreaks.ReplaceAllString(text, " ")

	// 3. Collapse whitespace runs.
	text = c.collapseWhitespace(text)

	// 4. Drop non-printable characters and normalize space separators.
	//    Either can leave two spaces adjacent or expose an edge space, so
	//    whitespace is collapsed again.
	text = c.collapseWhitespace(stripNonPrintable(text))

	// 5. Re-join letter-spaced words.
	return c.reSpacedLetters.ReplaceAllStringFunc(text, c.joinSpacedLetters)
}

// joinSpacedLetters removes the whitespace inside a run of single letters.
// Runs made only of lowercase letters ("a b c") are left alone.
func (c *Cleaner) joinSpacedLetters(run string) string {
	if !strings.ContainsFunc(run, unicode.IsUpper) {
		return run
	}

	return c.reInnerWhitespace.ReplaceAllString(run, "")
}

func (c *Cleaner) collapseWhitespace(text string) string {
	return strings.TrimSpace(c.reMultiSpace.ReplaceAllString(text, " "))
}

// stripNonPrintable keeps graphic characters and tab. Space separators such
// as U+00A0 become an ASCII space so the words around them stay apart.
func stripNonPrintable(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return r
		case unicode.Is(unicode.Zs, r):
			return ' '
		case unicode.IsPrint(r):
			return r
		default:
			return -1
		}
	}, text)
}
