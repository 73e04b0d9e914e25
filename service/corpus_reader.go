package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/analyzer"
	"github.com/ludo-technologies/docsim/internal/logging"
	"github.com/ludo-technologies/docsim/internal/metrics"
	"github.com/ludo-technologies/docsim/internal/shingle"
)

// CorpusReaderImpl implements the CorpusReader interface
type CorpusReaderImpl struct {
	progress domain.ProgressManager
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewCorpusReader creates a new corpus reader. Both collaborators are optional.
func NewCorpusReader(progress domain.ProgressManager, m *metrics.Metrics) *CorpusReaderImpl {
	return &CorpusReaderImpl{
		progress: progress,
		metrics:  m,
		logger:   logging.WithComponent("corpus"),
	}
}

// ReadCorpus collects the files selected by the request, shingles them and
// returns them sorted by path.
func (r *CorpusReaderImpl) ReadCorpus(ctx context.Context, req *domain.SimilarityRequest) (*domain.Corpus, error) {
	extractor := shingle.Extractor{Size: req.ShingleSize, MinTokenLength: req.MinTokenLength}
	if err := extractor.Validate(); err != nil {
		return nil, domain.NewInvalidInputError("invalid shingle settings", err)
	}

	files, err := r.CollectFiles(req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("collected corpus files", "count", len(files))

	docs, err := r.shingleFiles(ctx, files, extractor, req.Workers)
	if err != nil {
		return nil, err
	}

	corpus := &domain.Corpus{Documents: make([]domain.CorpusDocument, 0, len(files))}
	for i, path := range files {
		if len(docs[i]) == 0 {
			if !req.SkipEmpty {
				return nil, domain.NewEmptyDocumentError(path, nil)
			}
			r.logger.Warn("skipping document without shingles", "path", path)
			if r.metrics != nil {
				r.metrics.CorpusFilesSkipped.Inc()
			}
			corpus.Skipped = append(corpus.Skipped, path)
			continue
		}
		corpus.Documents = append(corpus.Documents, domain.CorpusDocument{
			Index:    len(corpus.Documents),
			Path:     path,
			Shingles: docs[i],
		})
	}

	return corpus, nil
}

// shingleFiles reads and shingles every file in parallel, keeping input order.
func (r *CorpusReaderImpl) shingleFiles(ctx context.Context, files []string, extractor shingle.Extractor, workers int) ([]analyzer.Document, error) {
	results := make([]analyzer.Document, len(files))
	if len(files) == 0 {
		return results, nil
	}

	if r.progress != nil {
		r.progress.Describe("Reading corpus")
		r.progress.Initialize(len(files))
		r.progress.Start()
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	} else {
		g.SetLimit(-1)
	}

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return domain.NewFileNotFoundError(path, err)
			}
			results[i] = extractor.Extract(string(content))
			if r.progress != nil {
				r.progress.Update(int(done.Add(1)), len(files))
			}
			return nil
		})
	}

	err := g.Wait()
	if r.progress != nil {
		r.progress.Complete(err == nil)
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CollectFiles finds the files under paths matching the include patterns and
// none of the exclude patterns. The result is sorted and free of duplicates.
func (r *CorpusReaderImpl) CollectFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, domain.NewFileNotFoundError(path, err)
		}

		if !info.IsDir() {
			// Files named explicitly only have to pass the exclude patterns
			if !matchesAny(excludePatterns, path, filepath.Base(path)) {
				add(filepath.Clean(path))
			}
			continue
		}

		dirFiles, err := r.collectFromDirectory(path, recursive, includePatterns, excludePatterns)
		if err != nil {
			return nil, err
		}
		for _, f := range dirFiles {
			add(f)
		}
	}

	sort.Strings(files)
	return files, nil
}

// collectFromDirectory walks a directory collecting matching files
func (r *CorpusReaderImpl) collectFromDirectory(dirPath string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	var files []string

	walkFunc := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			r.logger.Warn("cannot access path", "path", path, "error", err)
			return nil
		}

		if d.IsDir() {
			if path == dirPath {
				return nil
			}
			if !recursive || shouldSkipDirectory(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip hidden files
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(dirPath, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if matchesAny(excludePatterns, rel, d.Name()) {
			return nil
		}
		if len(includePatterns) == 0 || matchesAny(includePatterns, rel, d.Name()) {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.WalkDir(dirPath, walkFunc); err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return files, nil
}

// matchesAny reports whether any pattern matches the slash-separated relative
// path or the base name.
func matchesAny(patterns []string, rel, base string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// shouldSkipDirectory checks if a directory should be skipped entirely
func shouldSkipDirectory(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__":
		return true
	}
	return false
}

// ValidatePaths validates that all provided paths exist and are accessible
func (r *CorpusReaderImpl) ValidatePaths(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return domain.NewFileNotFoundError(path, err)
			}
			return domain.NewInvalidInputError(fmt.Sprintf("cannot access path: %s", path), err)
		}
	}
	return nil
}
