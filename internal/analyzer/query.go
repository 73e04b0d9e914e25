package analyzer

import (
	"fmt"
	"math"
	"sort"
)

// Match is a verified query result.
type Match struct {
	Index      int     // Document index in the corpus
	Similarity float64 // Exact Jaccard similarity with the query document
}

// SimilarPair represents a pair of documents whose exact similarity passed a threshold
type SimilarPair struct {
	Doc1       int     // Lower document index
	Doc2       int     // Higher document index
	Similarity float64 // Exact Jaccard similarity
}

// Query returns the indices of the candidates of docIdx whose exact Jaccard
// similarity with it is at least threshold, in ascending index order.
func (idx *LSHIndex) Query(docIdx int, threshold float64) ([]int, error) {
	matches, err := idx.QueryWithScores(docIdx, threshold)
	if err != nil {
		return nil, err
	}

	result := make([]int, len(matches))
	for i, m := range matches {
		result[i] = m.Index
	}
	return result, nil
}

// QueryWithScores is Query with the exact similarity attached to each result.
func (idx *LSHIndex) QueryWithScores(docIdx int, threshold float64) ([]Match, error) {
	if err := idx.checkDoc(docIdx); err != nil {
		return nil, err
	}
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}

	query := idx.sets[docIdx]
	matches := make([]Match, 0)

	it := idx.candidates[docIdx].Iterator()
	for it.HasNext() {
		candidate := int(it.Next())
		sim, err := JaccardSimilarity(query, idx.sets[candidate])
		if err != nil {
			// Unreachable for built indexes: empty documents are rejected at build
			return nil, fmt.Errorf("verify candidate %d: %w", candidate, err)
		}
		if sim >= threshold {
			matches = append(matches, Match{Index: candidate, Similarity: sim})
		}
	}

	return matches, nil
}

// Pairs returns every candidate pair whose exact similarity is at least threshold,
// sorted by similarity (descending) and then by document indices.
func (idx *LSHIndex) Pairs(threshold float64) ([]SimilarPair, error) {
	if idx == nil || !idx.built {
		return nil, ErrNotBuilt
	}
	if err := checkThreshold(threshold); err != nil {
		return nil, err
	}

	pairs := make([]SimilarPair, 0)
	for doc := range idx.docs {
		it := idx.candidates[doc].Iterator()
		it.AdvanceIfNeeded(uint32(doc) + 1)
		for it.HasNext() {
			other := int(it.Next())
			sim, err := JaccardSimilarity(idx.sets[doc], idx.sets[other])
			if err != nil {
				return nil, fmt.Errorf("verify pair (%d, %d): %w", doc, other, err)
			}
			if sim >= threshold {
				pairs = append(pairs, SimilarPair{Doc1: doc, Doc2: other, Similarity: sim})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Similarity != pairs[j].Similarity {
			return pairs[i].Similarity > pairs[j].Similarity
		}
		if pairs[i].Doc1 != pairs[j].Doc1 {
			return pairs[i].Doc1 < pairs[j].Doc1
		}
		return pairs[i].Doc2 < pairs[j].Doc2
	})

	return pairs, nil
}

func checkThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}
