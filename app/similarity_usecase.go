package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/analyzer"
	"github.com/ludo-technologies/docsim/internal/version"
)

// Index sources reported in responses
const (
	SourceBuilt    = "built"
	SourceSnapshot = "snapshot"
)

// SimilarityUseCase orchestrates near-duplicate detection: collect the corpus,
// build or restore the index, query it and write the report.
type SimilarityUseCase struct {
	reader    domain.CorpusReader
	service   domain.IndexService
	formatter domain.SimilarityOutputFormatter
	output    domain.ReportWriter
}

// NewSimilarityUseCase creates a new similarity use case with the given dependencies
func NewSimilarityUseCase(
	reader domain.CorpusReader,
	service domain.IndexService,
	formatter domain.SimilarityOutputFormatter,
	output domain.ReportWriter,
) *SimilarityUseCase {
	return &SimilarityUseCase{
		reader:    reader,
		service:   service,
		formatter: formatter,
		output:    output,
	}
}

// Execute runs the request and writes the formatted response
func (uc *SimilarityUseCase) Execute(ctx context.Context, req *domain.SimilarityRequest) error {
	response, err := uc.Run(ctx, req)
	if err != nil {
		return err
	}

	write := func(w io.Writer) error {
		return uc.formatter.Write(response, req.OutputFormat, w)
	}

	if uc.output != nil {
		if req.OutputPath == "" && !req.HasValidOutputWriter() {
			return fmt.Errorf("no valid output writer specified")
		}
		if err := uc.output.Write(req.OutputWriter, req.OutputPath, req.OutputFormat, write); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if !req.HasValidOutputWriter() {
		return fmt.Errorf("no valid output writer specified")
	}
	if err := write(req.OutputWriter); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// Run executes the request and returns the response without writing it
func (uc *SimilarityUseCase) Run(ctx context.Context, req *domain.SimilarityRequest) (*domain.SimilarityResponse, error) {
	startTime := time.Now()

	// Step 1: Validate the request
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Step 2: Collect and shingle the corpus
	corpus, err := uc.reader.ReadCorpus(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	// Step 3: Build the index or restore it from a snapshot
	idx, summary, err := uc.obtainIndex(ctx, corpus, req)
	if err != nil {
		return nil, err
	}

	response := &domain.SimilarityResponse{
		Mode:      req.Mode,
		Threshold: req.Threshold,
		Index:     summary,
	}

	// Step 4: Query
	switch req.Mode {
	case domain.QueryModeDocument:
		if err := uc.queryDocument(ctx, idx, corpus, req, response); err != nil {
			return nil, err
		}
	case domain.QueryModePairs:
		if err := uc.queryPairs(ctx, idx, corpus, req, response); err != nil {
			return nil, err
		}
	}

	// Step 5: Metadata
	response.Duration = time.Since(startTime).Milliseconds()
	response.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	response.Version = version.Version

	return response, nil
}

func (uc *SimilarityUseCase) obtainIndex(ctx context.Context, corpus *domain.Corpus, req *domain.SimilarityRequest) (*analyzer.LSHIndex, domain.IndexSummary, error) {
	summary := domain.IndexSummary{Source: SourceBuilt, Skipped: corpus.Skipped}
	start := time.Now()

	var (
		idx *analyzer.LSHIndex
		err error
	)
	if req.SnapshotIn != "" {
		idx, err = uc.service.LoadSnapshot(ctx, req.SnapshotIn, corpus)
		if err != nil {
			return nil, summary, fmt.Errorf("failed to load snapshot: %w", err)
		}
		summary.Source = SourceSnapshot
		summary.Snapshot = req.SnapshotIn
	} else {
		idx, err = uc.service.Build(ctx, corpus, req)
		if err != nil {
			return nil, summary, fmt.Errorf("failed to build index: %w", err)
		}
	}
	summary.BuildTime = time.Since(start).Milliseconds()

	if req.SnapshotOut != "" {
		if err := uc.service.SaveSnapshot(idx, req.SnapshotOut); err != nil {
			return nil, summary, fmt.Errorf("failed to save snapshot: %w", err)
		}
		summary.Snapshot = req.SnapshotOut
	}

	summary.Stats = idx.Stats()
	return idx, summary, nil
}

func (uc *SimilarityUseCase) queryDocument(ctx context.Context, idx *analyzer.LSHIndex, corpus *domain.Corpus, req *domain.SimilarityRequest, response *domain.SimilarityResponse) error {
	docIdx, err := corpus.Resolve(req.Document)
	if err != nil {
		return fmt.Errorf("failed to resolve query document: %w", err)
	}

	query := corpus.Documents[docIdx]
	response.Query = &domain.DocumentRef{
		Index:    query.Index,
		Path:     query.Path,
		Shingles: len(query.Shingles.ShingleSet()),
	}

	matches, err := uc.service.FindSimilar(ctx, idx, docIdx, req.Threshold, req.MaxResults)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	response.Matches = make([]domain.SimilarDocument, len(matches))
	for i, m := range matches {
		response.Matches[i] = domain.SimilarDocument{
			Index:      m.Index,
			Path:       corpus.Documents[m.Index].Path,
			Similarity: m.Similarity,
		}
	}
	return nil
}

func (uc *SimilarityUseCase) queryPairs(ctx context.Context, idx *analyzer.LSHIndex, corpus *domain.Corpus, req *domain.SimilarityRequest, response *domain.SimilarityResponse) error {
	pairs, err := uc.service.FindPairs(ctx, idx, req.Threshold, req.MaxResults)
	if err != nil {
		return fmt.Errorf("pair search failed: %w", err)
	}

	response.Pairs = make([]domain.DuplicatePair, len(pairs))
	for i, p := range pairs {
		response.Pairs[i] = domain.DuplicatePair{
			Index1:     p.Doc1,
			Path1:      corpus.Documents[p.Doc1].Path,
			Index2:     p.Doc2,
			Path2:      corpus.Documents[p.Doc2].Path,
			Similarity: p.Similarity,
		}
	}
	return nil
}

// SimilarityUseCaseBuilder helps build SimilarityUseCase with dependencies
type SimilarityUseCaseBuilder struct {
	reader    domain.CorpusReader
	service   domain.IndexService
	formatter domain.SimilarityOutputFormatter
	output    domain.ReportWriter
}

// NewSimilarityUseCaseBuilder creates a new builder for SimilarityUseCase
func NewSimilarityUseCaseBuilder() *SimilarityUseCaseBuilder {
	return &SimilarityUseCaseBuilder{}
}

// WithCorpusReader sets the corpus reader
func (b *SimilarityUseCaseBuilder) WithCorpusReader(reader domain.CorpusReader) *SimilarityUseCaseBuilder {
	b.reader = reader
	return b
}

// WithService sets the index service
func (b *SimilarityUseCaseBuilder) WithService(service domain.IndexService) *SimilarityUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *SimilarityUseCaseBuilder) WithFormatter(formatter domain.SimilarityOutputFormatter) *SimilarityUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithOutputWriter sets the report writer
func (b *SimilarityUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *SimilarityUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the SimilarityUseCase with the configured dependencies
func (b *SimilarityUseCaseBuilder) Build() (*SimilarityUseCase, error) {
	if b.reader == nil {
		return nil, fmt.Errorf("corpus reader is required")
	}
	if b.service == nil {
		return nil, fmt.Errorf("index service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	return NewSimilarityUseCase(b.reader, b.service, b.formatter, b.output), nil
}
