package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/docsim/app"
	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/config"
	"github.com/ludo-technologies/docsim/service"
)

// SimilarityCommand holds the flags shared by query, pairs and index
type SimilarityCommand struct {
	mode domain.QueryMode

	// Input parameters
	recursive       bool
	includePatterns []string
	excludePatterns []string
	skipEmpty       bool

	// Shingling
	shingleSize    int
	minTokenLength int

	// Index construction
	numHashes int
	numBands  int
	workers   int

	// Query
	document   string
	threshold  float64
	maxResults int

	// Snapshots
	snapshotIn  string
	snapshotOut string

	// Output format flags (only one should be true)
	json bool
	csv  bool
	yaml bool

	// Output options
	reportFile string
	outputDir  string
	noProgress bool
}

// NewSimilarityCommand creates a command for the given mode with default flag values
func NewSimilarityCommand(mode domain.QueryMode) *SimilarityCommand {
	return &SimilarityCommand{
		mode:            mode,
		recursive:       true,
		includePatterns: domain.DefaultIncludePatterns(),
		excludePatterns: domain.DefaultExcludePatterns(),
		shingleSize:     domain.DefaultShingleSize,
		minTokenLength:  domain.DefaultMinTokenLength,
		numHashes:       domain.DefaultNumHashes,
		numBands:        domain.DefaultNumBands,
		workers:         domain.DefaultWorkers,
		threshold:       domain.DefaultSimilarityThreshold,
		maxResults:      domain.DefaultMaxResults,
	}
}

// addCorpusFlags adds the flags controlling corpus collection and indexing
func (c *SimilarityCommand) addCorpusFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolVarP(&c.recursive, config.FlagRecursive, "r", c.recursive, "Walk directories recursively")
	flags.StringSliceVar(&c.includePatterns, config.FlagInclude, c.includePatterns, "Glob patterns of files to index")
	flags.StringSliceVar(&c.excludePatterns, config.FlagExclude, c.excludePatterns, "Glob patterns of files to leave out")
	flags.BoolVar(&c.skipEmpty, config.FlagSkipEmpty, false, "Drop documents without shingles instead of failing")

	flags.IntVar(&c.shingleSize, config.FlagShingleSize, c.shingleSize, "Words per shingle")
	flags.IntVar(&c.minTokenLength, config.FlagMinTokenLength, c.minTokenLength, "Drop tokens shorter than this before shingling")

	flags.IntVar(&c.numHashes, config.FlagNumHashes, c.numHashes, "MinHash signature length")
	flags.IntVar(&c.numBands, config.FlagNumBands, c.numBands, "LSH bands; must divide --num-hashes")
	flags.IntVar(&c.workers, config.FlagWorkers, c.workers, "Build parallelism (0 = all CPUs)")

	flags.BoolVar(&c.json, "json", false, "Generate JSON report")
	flags.BoolVar(&c.csv, "csv", false, "Generate CSV report")
	flags.BoolVar(&c.yaml, "yaml", false, "Generate YAML report")
	flags.StringVar(&c.reportFile, "report-file", "", "Write the report to this file instead of stdout")
	flags.StringVar(&c.outputDir, config.FlagOutputDir, "", "Directory receiving timestamped report files")
	flags.BoolVar(&c.noProgress, "no-progress", false, "Disable the progress bar")
}

// addQueryFlags adds the flags controlling verification and snapshot reuse
func (c *SimilarityCommand) addQueryFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.Float64VarP(&c.threshold, config.FlagThreshold, "t", c.threshold, "Minimum exact Jaccard similarity (0.0-1.0)")
	flags.IntVar(&c.maxResults, config.FlagMaxResults, c.maxResults, "Maximum number of results (0 = no limit)")
	flags.StringVar(&c.snapshotIn, "snapshot", "", "Load the index from this snapshot instead of building it")
	flags.StringVar(&c.snapshotOut, "save-snapshot", "", "Save the built index to this snapshot file")
}

// overrides collects the flag values for merging over the configuration
func (c *SimilarityCommand) overrides() config.Overrides {
	return config.Overrides{
		NumHashes:       c.numHashes,
		NumBands:        c.numBands,
		Workers:         c.workers,
		ShingleSize:     c.shingleSize,
		MinTokenLength:  c.minTokenLength,
		Recursive:       c.recursive,
		IncludePatterns: c.includePatterns,
		ExcludePatterns: c.excludePatterns,
		SkipEmpty:       c.skipEmpty,
		Threshold:       c.threshold,
		MaxResults:      c.maxResults,
		OutputDir:       c.outputDir,
	}
}

// run executes the similarity use case for the command's mode
func (c *SimilarityCommand) run(cmd *cobra.Command, args []string) error {
	paths := getTargetPathsFromArgs(args)

	cfg, err := loadConfig(cmd, paths[0], c.overrides())
	if err != nil {
		return err
	}

	format, ext, err := service.NewOutputFormatResolver().Determine(c.json, c.csv, c.yaml, domain.OutputFormat(cfg.Output.Format))
	if err != nil {
		return err
	}

	req := domain.DefaultSimilarityRequest()
	cfg.ApplyToRequest(req)
	req.Paths = paths
	req.Mode = c.mode
	req.Document = c.document
	req.SnapshotIn = c.snapshotIn
	req.SnapshotOut = c.snapshotOut
	req.OutputFormat = format
	req.OutputWriter = cmd.OutOrStdout()
	req.OutputPath = resolveReportPath(c.reportFile, cfg.Output.Directory, string(c.mode), ext)
	req.NoProgress = c.noProgress
	req.ConfigPath, _ = cmd.Flags().GetString("config")

	var progress domain.ProgressManager = service.NoOpProgressManager{}
	if !c.noProgress {
		pm := service.NewProgressManager()
		defer pm.Close()
		progress = pm
	}

	useCase, err := app.NewSimilarityUseCaseBuilder().
		WithCorpusReader(service.NewCorpusReader(progress, nil)).
		WithService(service.NewIndexService(progress, nil)).
		WithFormatter(service.NewSimilarityOutputFormatter()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create use case: %w", err)
	}

	return useCase.Execute(cmd.Context(), req)
}

// NewQueryCmd creates the query command
func NewQueryCmd() *cobra.Command {
	c := NewSimilarityCommand(domain.QueryModeDocument)
	cmd := &cobra.Command{
		Use:   "query [paths...] --doc <path|index>",
		Short: "Find documents similar to one document",
		Long: `Find the near-duplicates of one document of the corpus.

The query document is named by its path or by its index in the sorted corpus.
Only candidates sharing at least one LSH band are verified, and every reported
similarity is the exact Jaccard similarity of the shingle sets.

Examples:
  # Documents at least 50% similar to notes/a.md
  docsim query ./notes --doc notes/a.md

  # Reuse a saved index and report JSON
  docsim query ./notes --doc 3 --snapshot notes.dsim --json`,
		RunE: c.run,
	}

	c.addCorpusFlags(cmd)
	c.addQueryFlags(cmd)
	cmd.Flags().StringVarP(&c.document, "doc", "d", "", "Query document path or corpus index")
	_ = cmd.MarkFlagRequired("doc")

	return cmd
}

// NewPairsCmd creates the pairs command
func NewPairsCmd() *cobra.Command {
	c := NewSimilarityCommand(domain.QueryModePairs)
	cmd := &cobra.Command{
		Use:   "pairs [paths...]",
		Short: "List every near-duplicate pair in the corpus",
		Long: `List every pair of documents whose exact Jaccard similarity reaches the threshold.

Pairs are reported most similar first.

Examples:
  # Near-duplicates among all text and markdown files
  docsim pairs .

  # Stricter threshold, CSV report
  docsim pairs ./corpus --threshold 0.9 --csv`,
		RunE: c.run,
	}

	c.addCorpusFlags(cmd)
	c.addQueryFlags(cmd)

	return cmd
}

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	c := NewSimilarityCommand(domain.QueryModeIndex)
	cmd := &cobra.Command{
		Use:   "index [paths...] -o <snapshot>",
		Short: "Build the index and save it as a snapshot",
		Long: `Build the LSH index over the corpus, save it as a snapshot and report its statistics.

A snapshot lets query and pairs skip signature generation with --snapshot,
as long as the corpus and shingle settings are unchanged.

Examples:
  docsim index ./corpus -o corpus.dsim`,
		RunE: c.run,
	}

	c.addCorpusFlags(cmd)
	cmd.Flags().StringVarP(&c.snapshotOut, "output", "o", "", "Snapshot file to write")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
