package analyzer

import "fmt"

// Set is a finite set of comparable elements.
type Set[T comparable] map[T]struct{}

// NewSet builds a set from items, dropping duplicates.
func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Contains reports whether item is in the set.
func (s Set[T]) Contains(item T) bool {
	_, ok := s[item]
	return ok
}

// JaccardSimilarity returns |a ∩ b| / |a ∪ b|.
//
// Two empty sets have no defined similarity and yield ErrEmptySet. When exactly
// one set is empty the union is non-empty and the result is 0.
func JaccardSimilarity[T comparable](a, b Set[T]) (float64, error) {
	if len(a) == 0 && len(b) == 0 {
		return 0, ErrEmptySet
	}

	// Iterate over the smaller set
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}

	intersection := 0
	for item := range small {
		if _, ok := large[item]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union), nil
}

// DocumentSimilarity computes the exact Jaccard similarity of two documents'
// shingle sets.
func DocumentSimilarity(a, b Document) (float64, error) {
	sim, err := JaccardSimilarity(a.ShingleSet(), b.ShingleSet())
	if err != nil {
		return 0, fmt.Errorf("document similarity: %w", err)
	}
	return sim, nil
}
