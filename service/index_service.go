package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/analyzer"
	"github.com/ludo-technologies/docsim/internal/logging"
	"github.com/ludo-technologies/docsim/internal/metrics"
)

// Query kinds used as metric labels
const (
	queryKindDocument = "document"
	queryKindPairs    = "pairs"
)

// IndexServiceImpl implements the IndexService interface
type IndexServiceImpl struct {
	progress domain.ProgressManager
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewIndexService creates a new index service. A nil progress manager
// disables progress output; nil metrics disables instrumentation.
func NewIndexService(progress domain.ProgressManager, m *metrics.Metrics) *IndexServiceImpl {
	if progress == nil {
		progress = NoOpProgressManager{}
	}
	return &IndexServiceImpl{
		progress: progress,
		metrics:  m,
		logger:   logging.WithComponent("index"),
	}
}

// Build builds an LSH index over the corpus
func (s *IndexServiceImpl) Build(ctx context.Context, corpus *domain.Corpus, req *domain.SimilarityRequest) (idx *analyzer.LSHIndex, err error) {
	start := time.Now()
	defer func() {
		if s.metrics == nil {
			return
		}
		s.metrics.BuildsTotal.WithLabelValues(metrics.Status(err)).Inc()
		if err == nil {
			s.metrics.BuildDuration.Observe(time.Since(start).Seconds())
		}
	}()

	builder, err := analyzer.NewIndexBuilder(analyzer.LSHConfig{
		NumHashes: req.NumHashes,
		NumBands:  req.NumBands,
		Workers:   req.Workers,
	})
	if err != nil {
		return nil, domain.NewConfigError("invalid LSH parameters", err)
	}

	s.progress.Describe("Building index")
	s.progress.Initialize(-1)
	s.progress.Start()

	idx, err = builder.Build(ctx, corpus.ShingleDocuments())
	s.progress.Complete(err == nil)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.NewAnalysisError("failed to build index", err)
	}

	s.observeIndex(idx)
	s.logger.Info("index built",
		"documents", idx.Size(),
		"num_hashes", req.NumHashes,
		"num_bands", req.NumBands,
		"duration", time.Since(start))
	return idx, nil
}

// LoadSnapshot restores an index for the corpus from a snapshot file
func (s *IndexServiceImpl) LoadSnapshot(ctx context.Context, path string, corpus *domain.Corpus) (idx *analyzer.LSHIndex, err error) {
	defer s.recordSnapshot("load", &err)

	file, err := os.Open(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}
	defer file.Close()

	idx, err = analyzer.LoadSnapshot(ctx, file, corpus.ShingleDocuments())
	if err != nil {
		return nil, domain.NewSnapshotError(fmt.Sprintf("failed to load snapshot %s", path), err)
	}

	s.observeIndex(idx)
	s.logger.Info("snapshot loaded", "path", path, "documents", idx.Size())
	return idx, nil
}

// SaveSnapshot writes the index to a snapshot file, replacing it atomically
func (s *IndexServiceImpl) SaveSnapshot(idx *analyzer.LSHIndex, path string) (err error) {
	defer s.recordSnapshot("save", &err)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.NewSnapshotError(fmt.Sprintf("failed to create directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return domain.NewSnapshotError("failed to create snapshot file", err)
	}
	defer os.Remove(tmp.Name())

	if err := idx.WriteSnapshot(tmp); err != nil {
		tmp.Close()
		return domain.NewSnapshotError("failed to write snapshot", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.NewSnapshotError("failed to write snapshot", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return domain.NewSnapshotError(fmt.Sprintf("failed to write snapshot %s", path), err)
	}

	s.logger.Info("snapshot saved", "path", path, "documents", idx.Size())
	return nil
}

// FindSimilar returns the verified near-duplicates of one document, most
// similar first. maxResults <= 0 means no limit.
func (s *IndexServiceImpl) FindSimilar(ctx context.Context, idx *analyzer.LSHIndex, docIdx int, threshold float64, maxResults int) (matches []analyzer.Match, err error) {
	start := time.Now()
	defer s.recordQuery(queryKindDocument, start, &err, func() int { return len(matches) })

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err = idx.QueryWithScores(docIdx, threshold)
	if err != nil {
		return nil, wrapQueryError(err)
	}

	if s.metrics != nil {
		if candidates, cerr := idx.Candidates(docIdx); cerr == nil {
			s.metrics.CandidatesPerQuery.Observe(float64(len(candidates)))
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Index < matches[j].Index
	})
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	s.logger.Debug("query finished", "document", docIdx, "threshold", threshold, "matches", len(matches))
	return matches, nil
}

// FindPairs returns every verified near-duplicate pair, most similar first.
// maxResults <= 0 means no limit.
func (s *IndexServiceImpl) FindPairs(ctx context.Context, idx *analyzer.LSHIndex, threshold float64, maxResults int) (pairs []analyzer.SimilarPair, err error) {
	start := time.Now()
	defer s.recordQuery(queryKindPairs, start, &err, func() int { return len(pairs) })

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pairs, err = idx.Pairs(threshold)
	if err != nil {
		return nil, wrapQueryError(err)
	}
	if maxResults > 0 && len(pairs) > maxResults {
		pairs = pairs[:maxResults]
	}

	s.logger.Debug("pairs finished", "threshold", threshold, "pairs", len(pairs))
	return pairs, nil
}

func wrapQueryError(err error) error {
	switch {
	case errors.Is(err, analyzer.ErrIndexOutOfRange), errors.Is(err, analyzer.ErrInvalidThreshold):
		return domain.NewInvalidInputError("invalid query", err)
	default:
		return domain.NewAnalysisError("query failed", err)
	}
}

func (s *IndexServiceImpl) observeIndex(idx *analyzer.LSHIndex) {
	if s.metrics == nil {
		return
	}
	s.metrics.DocumentsIndexed.Set(float64(idx.Size()))
	s.metrics.CandidatePairs.Set(float64(idx.Stats().CandidatePairs))
}

func (s *IndexServiceImpl) recordSnapshot(operation string, err *error) {
	if s.metrics == nil {
		return
	}
	s.metrics.SnapshotOperations.WithLabelValues(operation, metrics.Status(*err)).Inc()
}

func (s *IndexServiceImpl) recordQuery(kind string, start time.Time, err *error, results func() int) {
	if s.metrics == nil {
		return
	}
	s.metrics.QueriesTotal.WithLabelValues(kind, metrics.Status(*err)).Inc()
	if *err != nil {
		return
	}
	s.metrics.QueryLatency.Observe(time.Since(start).Seconds())
	s.metrics.QueryResultsCount.Observe(float64(results()))
}
