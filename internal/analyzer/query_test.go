package analyzer

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_FourDocumentScenario(t *testing.T) {
	idx := buildIndex(t, LSHConfig{NumHashes: 20, NumBands: 4}, fourDocCorpus())

	result, err := idx.Query(0, 0.3)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, result)

	result, err = idx.Query(1, 0.3)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, result)

	result, err = idx.Query(2, 0.1)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestQuery_Errors(t *testing.T) {
	idx := buildIndex(t, LSHConfig{NumHashes: 20, NumBands: 4}, fourDocCorpus())

	tests := []struct {
		name      string
		docIdx    int
		threshold float64
		wantErr   error
	}{
		{"negative index", -1, 0.5, ErrIndexOutOfRange},
		{"index equal to size", 4, 0.5, ErrIndexOutOfRange},
		{"index far out of range", 100, 0.5, ErrIndexOutOfRange},
		{"negative threshold", 0, -0.1, ErrInvalidThreshold},
		{"threshold above one", 0, 1.5, ErrInvalidThreshold},
		{"NaN threshold", 0, math.NaN(), ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := idx.Query(tt.docIdx, tt.threshold)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestQuery_BoundaryThresholds(t *testing.T) {
	docs := []Document{
		{"a", "b", "c", "d"},
		{"a", "b", "c", "d"},
		{"a", "b", "x", "y"},
	}
	idx := buildIndex(t, LSHConfig{NumHashes: 16, NumBands: 16}, docs)

	// Identical documents always collide and match at threshold 1.0
	result, err := idx.Query(0, 1.0)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, result)

	// Threshold 0 returns every candidate
	all, err := idx.Query(0, 0.0)
	require.NoError(t, err)
	candidates, err := idx.Candidates(0)
	require.NoError(t, err)
	assert.Equal(t, candidates, all)
}

func TestQuery_Properties(t *testing.T) {
	docs := clusteredCorpus(42, 10, 6, 30)
	idx := buildIndex(t, LSHConfig{NumHashes: 64, NumBands: 16}, docs)
	thresholds := []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0}

	for i := range docs {
		candidates, err := idx.Candidates(i)
		require.NoError(t, err)
		candidateSet := NewSet(candidates...)

		var previous Set[int]
		for _, threshold := range thresholds {
			result, err := idx.Query(i, threshold)
			require.NoError(t, err)

			assert.True(t, sort.IntsAreSorted(result), "results not ascending for %d", i)
			current := NewSet(result...)

			for _, j := range result {
				// Soundness
				sim, err := DocumentSimilarity(docs[i], docs[j])
				require.NoError(t, err)
				assert.GreaterOrEqual(t, sim, threshold)

				// Results are a subset of the candidates
				assert.True(t, candidateSet.Contains(j))
				assert.NotEqual(t, i, j)
			}

			// Monotonicity: raising the threshold never adds results
			if previous != nil {
				for j := range current {
					assert.True(t, previous.Contains(j),
						"document %d appears at threshold %v but not below", j, threshold)
				}
			}
			previous = current
		}
	}
}

func TestQueryWithScores(t *testing.T) {
	docs := clusteredCorpus(8, 4, 5, 20)
	idx := buildIndex(t, LSHConfig{NumHashes: 32, NumBands: 16}, docs)

	for i := range docs {
		matches, err := idx.QueryWithScores(i, 0.25)
		require.NoError(t, err)
		indices, err := idx.Query(i, 0.25)
		require.NoError(t, err)
		require.Len(t, matches, len(indices))

		for k, m := range matches {
			assert.Equal(t, indices[k], m.Index)
			want, err := DocumentSimilarity(docs[i], docs[m.Index])
			require.NoError(t, err)
			assert.InDelta(t, want, m.Similarity, 1e-12)
		}
	}
}

func TestPairs(t *testing.T) {
	docs := clusteredCorpus(13, 6, 4, 20)
	idx := buildIndex(t, LSHConfig{NumHashes: 32, NumBands: 16}, docs)

	pairs, err := idx.Pairs(0.3)
	require.NoError(t, err)

	seen := make(Set[[2]int])
	for k, p := range pairs {
		assert.Less(t, p.Doc1, p.Doc2)
		assert.GreaterOrEqual(t, p.Similarity, 0.3)

		key := [2]int{p.Doc1, p.Doc2}
		assert.False(t, seen.Contains(key), "duplicate pair %v", key)
		seen[key] = struct{}{}

		if k > 0 {
			assert.GreaterOrEqual(t, pairs[k-1].Similarity, p.Similarity)
		}
	}

	// Every pair is reported from both sides by Query
	for i := range docs {
		result, err := idx.Query(i, 0.3)
		require.NoError(t, err)
		for _, j := range result {
			key := [2]int{min(i, j), max(i, j)}
			assert.True(t, seen.Contains(key), "pair %v missing from Pairs", key)
		}
	}

	_, err = idx.Pairs(2.0)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestPairs_FourDocumentScenario(t *testing.T) {
	idx := buildIndex(t, LSHConfig{NumHashes: 20, NumBands: 4}, fourDocCorpus())

	pairs, err := idx.Pairs(0.5)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, SimilarPair{Doc1: 0, Doc2: 1, Similarity: 1.0}, pairs[0])
}
