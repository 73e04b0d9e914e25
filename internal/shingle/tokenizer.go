// Package shingle turns raw text into documents of word n-gram shingles.
package shingle

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize lower-cases text and splits it on runs of characters that are
// neither letters nor digits.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// filterShort drops tokens with fewer than minLen runes. minLen <= 1 keeps everything.
func filterShort(tokens []string, minLen int) []string {
	if minLen <= 1 {
		return tokens
	}
	kept := tokens[:0:0]
	for _, tok := range tokens {
		if utf8.RuneCountInString(tok) >= minLen {
			kept = append(kept, tok)
		}
	}
	return kept
}
