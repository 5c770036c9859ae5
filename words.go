package blogstat

import (
	"strings"
	"unicode"
)

// CountWords counts the words in text.
//
// Each line is trimmed and stripped of every rune that is neither a word rune
// (letter, number or underscore) nor whitespace, then split on whitespace.
// Punctuation inside a word joins its halves: "Foo-bar" counts as one word.
func CountWords(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		count += len(strings.Fields(strings.Map(keepWordOrSpace, line)))
	}
	return count
}

// keepWordOrSpace drops runes that are neither word runes nor whitespace.
func keepWordOrSpace(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
		return r
	}
	return -1
}
