package domain

import (
	"math"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
)

// TestDefaultValueConsistency ensures all default values are properly defined
// and maintain expected relationships
func TestDefaultValueConsistency(t *testing.T) {
	t.Run("Bands evenly divide the signature", func(t *testing.T) {
		if DefaultNumBands < 1 || DefaultNumHashes < 1 {
			t.Fatalf("hashes (%d) and bands (%d) must be positive", DefaultNumHashes, DefaultNumBands)
		}
		if DefaultNumHashes%DefaultNumBands != 0 {
			t.Errorf("DefaultNumBands (%d) should divide DefaultNumHashes (%d)",
				DefaultNumBands, DefaultNumHashes)
		}
	})

	t.Run("Banding threshold sits below the similarity threshold", func(t *testing.T) {
		rows := float64(DefaultNumHashes / DefaultNumBands)
		approx := math.Pow(1/float64(DefaultNumBands), 1/rows)
		if approx >= DefaultSimilarityThreshold {
			t.Errorf("banding threshold %.3f should be below DefaultSimilarityThreshold %.2f",
				approx, DefaultSimilarityThreshold)
		}
	})

	t.Run("Query defaults are within valid range", func(t *testing.T) {
		if DefaultSimilarityThreshold < 0.0 || DefaultSimilarityThreshold > 1.0 {
			t.Errorf("DefaultSimilarityThreshold (%.2f) should be in [0.0, 1.0]", DefaultSimilarityThreshold)
		}
		if DefaultMaxResults < 0 {
			t.Errorf("DefaultMaxResults (%d) should be >= 0", DefaultMaxResults)
		}
	})

	t.Run("Shingle defaults are positive", func(t *testing.T) {
		if DefaultShingleSize < 1 {
			t.Errorf("DefaultShingleSize (%d) should be >= 1", DefaultShingleSize)
		}
		if DefaultMinTokenLength < 0 {
			t.Errorf("DefaultMinTokenLength (%d) should be >= 0", DefaultMinTokenLength)
		}
	})
}

func TestDefaultPatterns(t *testing.T) {
	include := DefaultIncludePatterns()
	if len(include) == 0 {
		t.Fatal("DefaultIncludePatterns should not be empty")
	}
	for _, p := range append(include, DefaultExcludePatterns()...) {
		if !doublestar.ValidatePattern(p) {
			t.Errorf("invalid default pattern %q", p)
		}
	}

	// Callers may mutate the returned slices
	include[0] = "changed"
	if DefaultIncludePatterns()[0] == "changed" {
		t.Error("DefaultIncludePatterns should return a fresh slice")
	}
}

func TestDefaultSimilarityRequestIsValid(t *testing.T) {
	if err := DefaultSimilarityRequest().Validate(); err != nil {
		t.Fatalf("default request should validate: %v", err)
	}
}
