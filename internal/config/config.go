package config

import (
	"fmt"
	"math"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/logging"
)

// Config represents the main configuration structure
type Config struct {
	// LSH holds MinHash and banding parameters
	LSH LSHConfig `mapstructure:"lsh" toml:"lsh" yaml:"lsh"`

	// Shingle holds text shingling parameters
	Shingle ShingleConfig `mapstructure:"shingle" toml:"shingle" yaml:"shingle"`

	// Input holds corpus file selection
	Input InputConfig `mapstructure:"input" toml:"input" yaml:"input"`

	// Query holds verification parameters
	Query QueryConfig `mapstructure:"query" toml:"query" yaml:"query"`

	// Output holds report formatting configuration
	Output OutputConfig `mapstructure:"output" toml:"output" yaml:"output"`

	// Log holds logger configuration
	Log LogConfig `mapstructure:"log" toml:"log" yaml:"log"`
}

// LSHConfig holds configuration for signature generation and banding
type LSHConfig struct {
	// NumHashes is the signature length k
	NumHashes int `mapstructure:"num_hashes" toml:"num_hashes" yaml:"num_hashes"`

	// NumBands is the band count b; it must divide NumHashes
	NumBands int `mapstructure:"num_bands" toml:"num_bands" yaml:"num_bands"`

	// Workers bounds build parallelism; 0 means GOMAXPROCS
	Workers int `mapstructure:"workers" toml:"workers" yaml:"workers"`
}

// ShingleConfig holds configuration for turning text into shingles
type ShingleConfig struct {
	// Size is the number of words per shingle
	Size int `mapstructure:"size" toml:"size" yaml:"size"`

	// MinTokenLength drops shorter tokens before shingling
	MinTokenLength int `mapstructure:"min_token_length" toml:"min_token_length" yaml:"min_token_length"`
}

// InputConfig holds configuration for corpus collection
type InputConfig struct {
	// Recursive controls whether directories are walked recursively
	Recursive bool `mapstructure:"recursive" toml:"recursive" yaml:"recursive"`

	// IncludePatterns are doublestar globs selecting corpus files
	IncludePatterns []string `mapstructure:"include_patterns" toml:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns are doublestar globs removing files from the corpus
	ExcludePatterns []string `mapstructure:"exclude_patterns" toml:"exclude_patterns" yaml:"exclude_patterns"`

	// SkipEmpty drops files without shingles instead of failing
	SkipEmpty bool `mapstructure:"skip_empty" toml:"skip_empty" yaml:"skip_empty"`
}

// QueryConfig holds configuration for candidate verification
type QueryConfig struct {
	// Threshold is the minimum exact Jaccard similarity reported
	Threshold float64 `mapstructure:"threshold" toml:"threshold" yaml:"threshold"`

	// MaxResults caps the number of reported results; 0 means no limit
	MaxResults int `mapstructure:"max_results" toml:"max_results" yaml:"max_results"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `mapstructure:"format" toml:"format" yaml:"format"`

	// Directory receives report files when set
	Directory string `mapstructure:"directory" toml:"directory" yaml:"directory"`
}

// LogConfig holds configuration for structured logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level" toml:"level" yaml:"level"`

	// Format is text or json
	Format string `mapstructure:"format" toml:"format" yaml:"format"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LSH: LSHConfig{
			NumHashes: domain.DefaultNumHashes,
			NumBands:  domain.DefaultNumBands,
			Workers:   domain.DefaultWorkers,
		},
		Shingle: ShingleConfig{
			Size:           domain.DefaultShingleSize,
			MinTokenLength: domain.DefaultMinTokenLength,
		},
		Input: InputConfig{
			Recursive:       true,
			IncludePatterns: domain.DefaultIncludePatterns(),
			ExcludePatterns: domain.DefaultExcludePatterns(),
			SkipEmpty:       false,
		},
		Query: QueryConfig{
			Threshold:  domain.DefaultSimilarityThreshold,
			MaxResults: domain.DefaultMaxResults,
		},
		Output: OutputConfig{
			Format: string(domain.OutputFormatText),
		},
		Log: LogConfig{
			Level:  domain.DefaultLogLevel,
			Format: domain.DefaultLogFormat,
		},
	}
}

// LoadConfig reads an explicit configuration file of any format viper
// understands (toml, yaml, json) on top of the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(configPath)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Load resolves the configuration for a run: an explicit configPath wins,
// otherwise .docsim.toml is discovered from targetDir upwards, otherwise the
// defaults apply.
func Load(configPath, targetDir string) (*Config, error) {
	if configPath != "" {
		return LoadConfig(configPath)
	}
	return NewTomlConfigLoader().LoadConfig(targetDir)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate LSH parameters
	if c.LSH.NumHashes < 1 {
		return fmt.Errorf("lsh.num_hashes must be >= 1, got %d", c.LSH.NumHashes)
	}

	if c.LSH.NumBands < 1 {
		return fmt.Errorf("lsh.num_bands must be >= 1, got %d", c.LSH.NumBands)
	}

	if c.LSH.NumHashes%c.LSH.NumBands != 0 {
		return fmt.Errorf("lsh.num_bands (%d) must evenly divide lsh.num_hashes (%d)",
			c.LSH.NumBands, c.LSH.NumHashes)
	}

	if c.LSH.Workers < 0 {
		return fmt.Errorf("lsh.workers must be >= 0, got %d", c.LSH.Workers)
	}

	// Validate shingling
	if c.Shingle.Size < 1 {
		return fmt.Errorf("shingle.size must be >= 1, got %d", c.Shingle.Size)
	}

	if c.Shingle.MinTokenLength < 0 {
		return fmt.Errorf("shingle.min_token_length must be >= 0, got %d", c.Shingle.MinTokenLength)
	}

	// Validate include patterns (at least one must be specified)
	if len(c.Input.IncludePatterns) == 0 {
		return fmt.Errorf("input.include_patterns cannot be empty")
	}

	for _, p := range append(append([]string{}, c.Input.IncludePatterns...), c.Input.ExcludePatterns...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern '%s'", p)
		}
	}

	// Validate query parameters
	if math.IsNaN(c.Query.Threshold) || c.Query.Threshold < 0 || c.Query.Threshold > 1 {
		return fmt.Errorf("query.threshold must be between 0.0 and 1.0, got %v", c.Query.Threshold)
	}

	if c.Query.MaxResults < 0 {
		return fmt.Errorf("query.max_results must be >= 0, got %d", c.Query.MaxResults)
	}

	// Validate output format
	if _, err := domain.ParseOutputFormat(c.Output.Format); err != nil {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	// Validate logging
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format '%s', must be one of: text, json", c.Log.Format)
	}

	return nil
}

// ApplyToRequest copies the configured settings into a similarity request.
// Paths, mode and the query document are left to the caller.
func (c *Config) ApplyToRequest(req *domain.SimilarityRequest) {
	req.Recursive = c.Input.Recursive
	req.IncludePatterns = c.Input.IncludePatterns
	req.ExcludePatterns = c.Input.ExcludePatterns
	req.SkipEmpty = c.Input.SkipEmpty

	req.ShingleSize = c.Shingle.Size
	req.MinTokenLength = c.Shingle.MinTokenLength

	req.NumHashes = c.LSH.NumHashes
	req.NumBands = c.LSH.NumBands
	req.Workers = c.LSH.Workers

	req.Threshold = c.Query.Threshold
	req.MaxResults = c.Query.MaxResults

	req.OutputFormat = domain.OutputFormat(c.Output.Format)
}
