package domain

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"strconv"

	"github.com/ludo-technologies/docsim/internal/analyzer"
)

// QueryMode selects what a similarity request reports
type QueryMode string

const (
	// QueryModeDocument reports the near-duplicates of a single document
	QueryModeDocument QueryMode = "document"

	// QueryModePairs reports every near-duplicate pair in the corpus
	QueryModePairs QueryMode = "pairs"

	// QueryModeIndex builds the index and reports only its statistics
	QueryModeIndex QueryMode = "index"
)

// SimilarityRequest represents a request for near-duplicate detection
type SimilarityRequest struct {
	// Input parameters
	Paths           []string `json:"paths"`
	Recursive       bool     `json:"recursive"`
	IncludePatterns []string `json:"include_patterns"`
	ExcludePatterns []string `json:"exclude_patterns"`
	SkipEmpty       bool     `json:"skip_empty"`

	// Shingling
	ShingleSize    int `json:"shingle_size"`
	MinTokenLength int `json:"min_token_length"`

	// Index construction
	NumHashes int `json:"num_hashes"`
	NumBands  int `json:"num_bands"`
	Workers   int `json:"workers"`

	// Query
	Mode       QueryMode `json:"mode"`
	Document   string    `json:"document,omitempty"` // Path or index of the query document
	Threshold  float64   `json:"threshold"`
	MaxResults int       `json:"max_results"`

	// Snapshot handling
	SnapshotIn  string `json:"snapshot_in,omitempty"`  // Load the index instead of building it
	SnapshotOut string `json:"snapshot_out,omitempty"` // Save the built index

	// Output configuration
	OutputFormat OutputFormat `json:"output_format"`
	OutputWriter io.Writer    `json:"-"`
	OutputPath   string       `json:"output_path,omitempty"`
	NoProgress   bool         `json:"no_progress"`

	// Configuration file
	ConfigPath string `json:"config_path,omitempty"`
}

// Validate validates a similarity request
func (req *SimilarityRequest) Validate() error {
	if len(req.Paths) == 0 {
		return NewValidationError("paths cannot be empty")
	}

	if req.ShingleSize < 1 {
		return NewValidationError("shingle_size must be >= 1")
	}

	if req.MinTokenLength < 0 {
		return NewValidationError("min_token_length must be >= 0")
	}

	if req.NumHashes < 1 {
		return NewValidationError("num_hashes must be >= 1")
	}

	if req.NumBands < 1 || req.NumHashes%req.NumBands != 0 {
		return NewValidationError("num_bands must be >= 1 and evenly divide num_hashes")
	}

	if math.IsNaN(req.Threshold) || req.Threshold < 0.0 || req.Threshold > 1.0 {
		return NewValidationError("threshold must be between 0.0 and 1.0")
	}

	if req.MaxResults < 0 {
		return NewValidationError("max_results must be >= 0")
	}

	switch req.Mode {
	case QueryModeDocument:
		if req.Document == "" {
			return NewValidationError("document mode requires a query document")
		}
	case QueryModePairs, QueryModeIndex:
	default:
		return NewValidationError("mode must be one of: document, pairs, index")
	}

	if _, err := ParseOutputFormat(string(req.OutputFormat)); err != nil {
		return err
	}

	return nil
}

// HasValidOutputWriter checks if the request has a valid output writer
func (req *SimilarityRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil
}

// DefaultSimilarityRequest returns a request populated with the default settings
func DefaultSimilarityRequest() *SimilarityRequest {
	return &SimilarityRequest{
		Paths:           []string{"."},
		Recursive:       true,
		IncludePatterns: DefaultIncludePatterns(),
		ExcludePatterns: DefaultExcludePatterns(),
		ShingleSize:     DefaultShingleSize,
		MinTokenLength:  DefaultMinTokenLength,
		NumHashes:       DefaultNumHashes,
		NumBands:        DefaultNumBands,
		Workers:         DefaultWorkers,
		Mode:            QueryModePairs,
		Threshold:       DefaultSimilarityThreshold,
		MaxResults:      DefaultMaxResults,
		OutputFormat:    OutputFormatText,
	}
}

// CorpusDocument is one file of the corpus. Index is its position in the
// corpus and therefore its document index in the LSH index.
type CorpusDocument struct {
	Index    int
	Path     string
	Shingles analyzer.Document
}

// Corpus is the ordered list of documents the index is built over
type Corpus struct {
	Documents []CorpusDocument
	Skipped   []string // Files dropped because they produced no shingles
}

// Len returns the number of documents
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Documents)
}

// ShingleDocuments returns the shingle documents in corpus order
func (c *Corpus) ShingleDocuments() []analyzer.Document {
	docs := make([]analyzer.Document, len(c.Documents))
	for i, d := range c.Documents {
		docs[i] = d.Shingles
	}
	return docs
}

// Resolve finds a document by path (as given or cleaned/absolute) or, failing
// that, by its numeric index.
func (c *Corpus) Resolve(ref string) (int, error) {
	for _, d := range c.Documents {
		if d.Path == ref {
			return d.Index, nil
		}
	}

	if abs, err := filepath.Abs(ref); err == nil {
		for _, d := range c.Documents {
			if docAbs, err := filepath.Abs(d.Path); err == nil && docAbs == abs {
				return d.Index, nil
			}
		}
	}

	if i, err := strconv.Atoi(ref); err == nil {
		if i >= 0 && i < len(c.Documents) {
			return i, nil
		}
		return 0, NewInvalidInputError("document index out of range: "+ref, analyzer.ErrIndexOutOfRange)
	}

	return 0, NewInvalidInputError("document not in corpus: "+ref, nil)
}

// DocumentRef identifies a corpus document in a response
type DocumentRef struct {
	Index    int    `json:"index" yaml:"index"`
	Path     string `json:"path" yaml:"path"`
	Shingles int    `json:"shingles" yaml:"shingles"`
}

// SimilarDocument is a verified near-duplicate of the query document
type SimilarDocument struct {
	Index      int     `json:"index" yaml:"index"`
	Path       string  `json:"path" yaml:"path"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// DuplicatePair is a verified near-duplicate pair with Index1 < Index2
type DuplicatePair struct {
	Index1     int     `json:"index1" yaml:"index1"`
	Path1      string  `json:"path1" yaml:"path1"`
	Index2     int     `json:"index2" yaml:"index2"`
	Path2      string  `json:"path2" yaml:"path2"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// IndexSummary describes the index a response was computed from
type IndexSummary struct {
	Source    string                 `json:"source" yaml:"source"` // "built" or "snapshot"
	Skipped   []string               `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Stats     analyzer.LSHIndexStats `json:"stats" yaml:"stats"`
	Snapshot  string                 `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	BuildTime int64                  `json:"build_time_ms" yaml:"build_time_ms"`
}

// SimilarityResponse represents the result of a similarity request
type SimilarityResponse struct {
	Mode      QueryMode         `json:"mode" yaml:"mode"`
	Threshold float64           `json:"threshold" yaml:"threshold"`
	Query     *DocumentRef      `json:"query,omitempty" yaml:"query,omitempty"`
	Matches   []SimilarDocument `json:"matches,omitempty" yaml:"matches,omitempty"`
	Pairs     []DuplicatePair   `json:"pairs,omitempty" yaml:"pairs,omitempty"`
	Index     IndexSummary      `json:"index" yaml:"index"`

	// Metadata
	Duration    int64  `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
}

// CorpusReader collects and shingles the documents selected by a request
type CorpusReader interface {
	// ReadCorpus returns the corpus in a stable order
	ReadCorpus(ctx context.Context, req *SimilarityRequest) (*Corpus, error)
}

// IndexService builds, persists and queries LSH indexes
type IndexService interface {
	// Build builds an index over the corpus
	Build(ctx context.Context, corpus *Corpus, req *SimilarityRequest) (*analyzer.LSHIndex, error)

	// LoadSnapshot restores an index for the corpus from a snapshot file
	LoadSnapshot(ctx context.Context, path string, corpus *Corpus) (*analyzer.LSHIndex, error)

	// SaveSnapshot writes the index to a snapshot file
	SaveSnapshot(idx *analyzer.LSHIndex, path string) error

	// FindSimilar returns the verified near-duplicates of one document
	FindSimilar(ctx context.Context, idx *analyzer.LSHIndex, docIdx int, threshold float64, maxResults int) ([]analyzer.Match, error)

	// FindPairs returns every verified near-duplicate pair
	FindPairs(ctx context.Context, idx *analyzer.LSHIndex, threshold float64, maxResults int) ([]analyzer.SimilarPair, error)
}

// SimilarityOutputFormatter formats similarity responses
type SimilarityOutputFormatter interface {
	// Write writes the response in the given format
	Write(response *SimilarityResponse, format OutputFormat, writer io.Writer) error
}
