package analyzer

import "strings"

// shingleSeparator joins the tokens of an n-gram. It is the ASCII unit separator,
// which does not occur in tokenized text, so tuple boundaries are preserved.
const shingleSeparator = "\x1f"

// Shingle is an opaque, comparable token representing a fragment of a document.
type Shingle string

// NewShingle serializes an n-gram tuple into a single shingle.
func NewShingle(tokens ...string) Shingle {
	return Shingle(strings.Join(tokens, shingleSeparator))
}

// Tokens splits the shingle back into its n-gram tokens.
func (s Shingle) Tokens() []string {
	return strings.Split(string(s), shingleSeparator)
}

// String renders the shingle with its tokens separated by spaces.
func (s Shingle) String() string {
	return strings.ReplaceAll(string(s), shingleSeparator, " ")
}

// Document is an ordered sequence of shingles. For similarity purposes it is
// treated as a set; repeated shingles do not matter.
type Document []Shingle

// ShingleSet returns the distinct shingles of the document.
func (d Document) ShingleSet() Set[Shingle] {
	return NewSet(d...)
}
