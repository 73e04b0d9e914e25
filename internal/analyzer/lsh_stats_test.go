package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLSHIndex_Stats(t *testing.T) {
	idx := buildIndex(t, LSHConfig{NumHashes: 20, NumBands: 4}, fourDocCorpus())
	stats := idx.Stats()

	assert.Equal(t, 4, stats.NumDocuments)
	assert.Equal(t, 20, stats.NumHashes)
	assert.Equal(t, 4, stats.Bands)
	assert.Equal(t, 5, stats.Rows)

	// Documents 0 and 1 share a bucket in every band; 2 and 3 are alone
	assert.Equal(t, 12, stats.NumBuckets)
	assert.Equal(t, 4, stats.SharedBuckets)
	assert.Equal(t, 1, stats.MinBucketSize)
	assert.Equal(t, 2, stats.MaxBucketSize)
	assert.InDelta(t, 16.0/12.0, stats.AvgBucketSize, 1e-9)
	assert.Equal(t, 1.0, stats.MedianBucketSize)
	assert.Equal(t, 1, stats.CandidatePairs)
	assert.InDelta(t, math.Pow(0.25, 0.2), stats.Threshold, 1e-9)
}

func TestLSHIndex_StatsUnbuilt(t *testing.T) {
	var idx LSHIndex
	assert.Equal(t, LSHIndexStats{}, idx.Stats())

	var nilIndex *LSHIndex
	assert.Equal(t, LSHIndexStats{}, nilIndex.Stats())
}

func TestCandidateProbability(t *testing.T) {
	idx := buildIndex(t, LSHConfig{NumHashes: 20, NumBands: 4}, fourDocCorpus())

	assert.Equal(t, 0.0, idx.CandidateProbability(0))
	assert.Equal(t, 1.0, idx.CandidateProbability(1))
	assert.InDelta(t, 1-math.Pow(1-math.Pow(0.5, 5), 4), idx.CandidateProbability(0.5), 1e-12)

	// The S-curve is increasing
	prev := 0.0
	for s := 0.05; s < 1; s += 0.05 {
		p := idx.CandidateProbability(s)
		assert.Greater(t, p, prev)
		prev = p
	}
}

func TestSuggestBands(t *testing.T) {
	tests := []struct {
		name      string
		numHashes int
		target    float64
		want      int
	}{
		{"invalid hash count", 0, 0.5, 0},
		{"single hash", 1, 0.5, 1},
		{"high threshold uses few bands", 128, 0.95, 4},
		{"default configuration", 128, 0.42, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestBands(tt.numHashes, tt.target)
			assert.Equal(t, tt.want, got)
			if got > 0 {
				assert.Zero(t, tt.numHashes%got)
			}
		})
	}
}
