package analyzer

import (
	"math"
	"sort"
)

// LSHIndexStats provides statistics about the LSH index
type LSHIndexStats struct {
	NumDocuments     int     `json:"num_documents" yaml:"num_documents"`         // Number of documents indexed
	NumHashes        int     `json:"num_hashes" yaml:"num_hashes"`               // Signature length
	Bands            int     `json:"bands" yaml:"bands"`                         // Number of bands
	Rows             int     `json:"rows" yaml:"rows"`                           // Rows per band
	NumBuckets       int     `json:"num_buckets" yaml:"num_buckets"`             // Buckets across all bands
	SharedBuckets    int     `json:"shared_buckets" yaml:"shared_buckets"`       // Buckets holding 2+ documents
	MinBucketSize    int     `json:"min_bucket_size" yaml:"min_bucket_size"`     // Minimum bucket size
	MaxBucketSize    int     `json:"max_bucket_size" yaml:"max_bucket_size"`     // Maximum bucket size
	AvgBucketSize    float64 `json:"avg_bucket_size" yaml:"avg_bucket_size"`     // Average bucket size
	MedianBucketSize float64 `json:"median_bucket_size" yaml:"median_bucket_size"` // Median bucket size
	CandidatePairs   int     `json:"candidate_pairs" yaml:"candidate_pairs"`     // Unordered candidate pairs
	Threshold        float64 `json:"threshold" yaml:"threshold"`                 // Approximate S-curve midpoint
}

// Stats returns statistics about the index. A nil or unbuilt index yields zero stats.
func (idx *LSHIndex) Stats() LSHIndexStats {
	if idx == nil || !idx.built {
		return LSHIndexStats{}
	}

	stats := LSHIndexStats{
		NumDocuments: len(idx.docs),
		NumHashes:    idx.numHashes,
		Bands:        idx.numBands,
		Rows:         idx.rows,
		Threshold:    idx.ApproximateThreshold(),
	}

	var sizes []int
	total := 0
	for _, table := range idx.bands {
		for _, members := range table {
			sizes = append(sizes, len(members))
			total += len(members)
			if len(members) >= 2 {
				stats.SharedBuckets++
			}
		}
	}
	stats.NumBuckets = len(sizes)

	if len(sizes) > 0 {
		sort.Ints(sizes)
		stats.MinBucketSize = sizes[0]
		stats.MaxBucketSize = sizes[len(sizes)-1]
		stats.AvgBucketSize = float64(total) / float64(len(sizes))

		if len(sizes)%2 == 0 {
			mid := len(sizes) / 2
			stats.MedianBucketSize = float64(sizes[mid-1]+sizes[mid]) / 2.0
		} else {
			stats.MedianBucketSize = float64(sizes[len(sizes)/2])
		}
	}

	directed := uint64(0)
	for _, bm := range idx.candidates {
		directed += bm.GetCardinality()
	}
	// Candidate sets are symmetric, so each pair is counted twice
	stats.CandidatePairs = int(directed / 2)

	return stats
}

// ApproximateThreshold returns (1/b)^(1/r), the similarity at which a pair has
// roughly even odds of becoming a candidate.
func (idx *LSHIndex) ApproximateThreshold() float64 {
	return bandThreshold(idx.numBands, idx.rows)
}

// CandidateProbability returns the probability 1-(1-s^r)^b that two documents with
// true similarity s collide in at least one band.
func (idx *LSHIndex) CandidateProbability(similarity float64) float64 {
	return candidateProbability(similarity, idx.numBands, idx.rows)
}

// SuggestBands returns the divisor of numHashes whose banding threshold is closest
// to target. It returns 0 if numHashes < 1.
func SuggestBands(numHashes int, target float64) int {
	if numHashes < 1 {
		return 0
	}

	best := numHashes
	bestError := math.Inf(1)
	for bands := 1; bands <= numHashes; bands++ {
		if numHashes%bands != 0 {
			continue
		}
		err := math.Abs(bandThreshold(bands, numHashes/bands) - target)
		if err < bestError {
			bestError = err
			best = bands
		}
	}
	return best
}

func bandThreshold(bands, rows int) float64 {
	if bands <= 0 || rows <= 0 {
		return 0
	}
	return math.Pow(1.0/float64(bands), 1.0/float64(rows))
}

func candidateProbability(similarity float64, bands, rows int) float64 {
	if similarity <= 0 {
		return 0
	}
	if similarity >= 1 {
		return 1
	}
	probBandMatches := math.Pow(similarity, float64(rows))
	return 1.0 - math.Pow(1.0-probBandMatches, float64(bands))
}
