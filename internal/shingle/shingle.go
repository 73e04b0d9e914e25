package shingle

import (
	"fmt"

	"github.com/ludo-technologies/docsim/internal/analyzer"
)

// NGrams returns the contiguous n-grams of tokens in order. Fewer than n tokens
// yield no n-grams.
func NGrams(tokens []string, n int) [][]string {
	if n < 1 || len(tokens) < n {
		return nil
	}
	grams := make([][]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		grams = append(grams, tokens[i:i+n:i+n])
	}
	return grams
}

// Extractor converts text into a document of word n-gram shingles.
type Extractor struct {
	Size           int // Words per shingle
	MinTokenLength int // Tokens shorter than this are dropped before shingling
}

// DefaultExtractor returns an extractor producing word bigrams.
func DefaultExtractor() Extractor {
	return Extractor{Size: 2, MinTokenLength: 1}
}

// Validate checks the extractor settings.
func (e Extractor) Validate() error {
	if e.Size < 1 {
		return fmt.Errorf("%w: shingle size must be >= 1, got %d", analyzer.ErrConfiguration, e.Size)
	}
	if e.MinTokenLength < 0 {
		return fmt.Errorf("%w: min token length must be >= 0, got %d", analyzer.ErrConfiguration, e.MinTokenLength)
	}
	return nil
}

// Extract tokenizes text and returns its shingles in document order. Text with
// fewer than Size tokens produces an empty document.
func (e Extractor) Extract(text string) analyzer.Document {
	tokens := filterShort(Tokenize(text), e.MinTokenLength)
	grams := NGrams(tokens, e.Size)

	doc := make(analyzer.Document, len(grams))
	for i, gram := range grams {
		doc[i] = analyzer.NewShingle(gram...)
	}
	return doc
}
