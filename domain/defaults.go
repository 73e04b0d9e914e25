package domain

// Index construction defaults. 128 hash functions in 32 bands of 4 rows put the
// banding threshold (1/b)^(1/r) near 0.42.
const (
	// DefaultNumHashes is the MinHash signature length.
	DefaultNumHashes = 128

	// DefaultNumBands is the number of LSH bands. It must divide DefaultNumHashes.
	DefaultNumBands = 32

	// DefaultWorkers of 0 lets the builder use GOMAXPROCS.
	DefaultWorkers = 0
)

// Shingling defaults
const (
	// DefaultShingleSize is the number of words per shingle.
	DefaultShingleSize = 2

	// DefaultMinTokenLength keeps every token.
	DefaultMinTokenLength = 1
)

// Query defaults
const (
	// DefaultSimilarityThreshold is the minimum exact Jaccard similarity reported.
	DefaultSimilarityThreshold = 0.5

	// DefaultMaxResults of 0 means no limit.
	DefaultMaxResults = 0
)

// Logging defaults
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// ConfigFileName is the dedicated configuration file discovered by walking up
// from the target directory.
const ConfigFileName = ".docsim.toml"

// DefaultIncludePatterns returns the glob patterns selecting corpus files.
func DefaultIncludePatterns() []string {
	return []string{"**/*.txt", "**/*.md"}
}

// DefaultExcludePatterns returns the glob patterns removed from the corpus.
func DefaultExcludePatterns() []string {
	return []string{}
}
