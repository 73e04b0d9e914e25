package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/analyzer"
)

func pairsResponse() *domain.SimilarityResponse {
	return &domain.SimilarityResponse{
		Mode:      domain.QueryModePairs,
		Threshold: 0.5,
		Pairs: []domain.DuplicatePair{
			{Index1: 0, Path1: "docs/a.txt", Index2: 1, Path2: "docs/b.txt", Similarity: 1.0},
			{Index1: 2, Path1: "docs/c.txt", Index2: 5, Path2: "docs/f.txt", Similarity: 0.625},
		},
		Index: domain.IndexSummary{
			Source:  "built",
			Skipped: []string{"docs/empty.txt"},
			Stats: analyzer.LSHIndexStats{
				NumDocuments: 6, NumHashes: 128, Bands: 32, Rows: 4,
				NumBuckets: 150, SharedBuckets: 40, CandidatePairs: 3, Threshold: 0.42,
			},
			BuildTime: 12,
		},
		Duration:    20,
		GeneratedAt: "2026-01-01T00:00:00Z",
		Version:     "test",
	}
}

func documentResponse() *domain.SimilarityResponse {
	resp := pairsResponse()
	resp.Mode = domain.QueryModeDocument
	resp.Pairs = nil
	resp.Query = &domain.DocumentRef{Index: 0, Path: "docs/a.txt", Shingles: 10}
	resp.Matches = []domain.SimilarDocument{
		{Index: 1, Path: "docs/b.txt", Similarity: 1.0},
		{Index: 3, Path: "docs/d.txt", Similarity: 0.55},
	}
	return resp
}

func TestSimilarityOutputFormatter_Text(t *testing.T) {
	f := NewSimilarityOutputFormatter()

	var buf bytes.Buffer
	require.NoError(t, f.Write(pairsResponse(), domain.OutputFormatText, &buf))
	out := buf.String()
	assert.Contains(t, out, "Near-Duplicate Detection Results")
	assert.Contains(t, out, "Documents: 6")
	assert.Contains(t, out, "Bands x rows: 32 x 4")
	assert.Contains(t, out, "Pairs found: 2")
	assert.Contains(t, out, "1.000  Identical")
	assert.Contains(t, out, "[5] docs/f.txt")
	assert.Contains(t, out, "skipped (no shingles): docs/empty.txt")

	buf.Reset()
	require.NoError(t, f.Write(documentResponse(), domain.OutputFormatText, &buf))
	out = buf.String()
	assert.Contains(t, out, "[0] docs/a.txt")
	assert.Contains(t, out, "0.550  Moderate")

	resp := documentResponse()
	resp.Matches = nil
	buf.Reset()
	require.NoError(t, f.Write(resp, domain.OutputFormatText, &buf))
	assert.Contains(t, buf.String(), "No similar documents found.")
}

func TestSimilarityOutputFormatter_JSONAndYAML(t *testing.T) {
	f := NewSimilarityOutputFormatter()

	var buf bytes.Buffer
	require.NoError(t, f.Write(pairsResponse(), domain.OutputFormatJSON, &buf))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "pairs", decoded["mode"])
	assert.Len(t, decoded["pairs"], 2)
	assert.NotContains(t, decoded, "matches")

	buf.Reset()
	require.NoError(t, f.Write(documentResponse(), domain.OutputFormatYAML, &buf))
	var y map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &y))
	assert.Equal(t, "document", y["mode"])
	assert.Len(t, y["matches"], 2)
}

func TestSimilarityOutputFormatter_CSV(t *testing.T) {
	f := NewSimilarityOutputFormatter()

	tests := []struct {
		name     string
		response *domain.SimilarityResponse
		header   []string
		rows     int
	}{
		{"pairs", pairsResponse(), []string{"index1", "path1", "index2", "path2", "similarity"}, 3},
		{"document", documentResponse(), []string{"query_index", "query_path", "index", "path", "similarity"}, 3},
		{"index", func() *domain.SimilarityResponse {
			r := pairsResponse()
			r.Mode = domain.QueryModeIndex
			return r
		}(), []string{"documents", "hashes", "bands", "rows", "buckets", "shared_buckets", "candidate_pairs", "threshold"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, f.Write(tt.response, domain.OutputFormatCSV, &buf))
			records, err := csv.NewReader(&buf).ReadAll()
			require.NoError(t, err)
			require.Len(t, records, tt.rows)
			assert.Equal(t, tt.header, records[0])
		})
	}
}

func TestSimilarityOutputFormatter_Errors(t *testing.T) {
	f := NewSimilarityOutputFormatter()
	var buf bytes.Buffer

	err := f.Write(pairsResponse(), domain.OutputFormat("html"), &buf)
	assert.Equal(t, domain.ErrCodeUnsupportedFormat, domain.ErrorCode(err))

	err = f.Write(nil, domain.OutputFormatText, &buf)
	assert.Equal(t, domain.ErrCodeOutputError, domain.ErrorCode(err))
}

func TestClassifySimilarity(t *testing.T) {
	assert.Equal(t, BandIdentical, ClassifySimilarity(1.0))
	assert.Equal(t, BandHigh, ClassifySimilarity(0.8))
	assert.Equal(t, BandModerate, ClassifySimilarity(0.79))
}
