package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Command-line flag names that can override configuration values
const (
	FlagNumHashes      = "num-hashes"
	FlagNumBands       = "bands"
	FlagWorkers        = "workers"
	FlagShingleSize    = "shingle-size"
	FlagMinTokenLength = "min-token-length"
	FlagRecursive      = "recursive"
	FlagInclude        = "include"
	FlagExclude        = "exclude"
	FlagSkipEmpty      = "skip-empty"
	FlagThreshold      = "threshold"
	FlagMaxResults     = "max-results"
	FlagOutputDir      = "output-dir"
	FlagLogLevel       = "log-level"
	FlagLogFormat      = "log-format"
)

// Overrides holds values parsed from command-line flags. Only flags recorded
// in the FlagTracker take effect.
type Overrides struct {
	NumHashes       int
	NumBands        int
	Workers         int
	ShingleSize     int
	MinTokenLength  int
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
	SkipEmpty       bool
	Threshold       float64
	MaxResults      int
	OutputDir       string
	LogLevel        string
	LogFormat       string
}

// ApplyOverrides merges explicitly set flags over the loaded configuration and
// re-validates the result.
func (c *Config) ApplyOverrides(o Overrides, ft *FlagTracker) error {
	c.LSH.NumHashes = ft.MergeInt(c.LSH.NumHashes, o.NumHashes, FlagNumHashes)
	c.LSH.NumBands = ft.MergeInt(c.LSH.NumBands, o.NumBands, FlagNumBands)
	c.LSH.Workers = ft.MergeInt(c.LSH.Workers, o.Workers, FlagWorkers)

	c.Shingle.Size = ft.MergeInt(c.Shingle.Size, o.ShingleSize, FlagShingleSize)
	c.Shingle.MinTokenLength = ft.MergeInt(c.Shingle.MinTokenLength, o.MinTokenLength, FlagMinTokenLength)

	c.Input.Recursive = ft.MergeBool(c.Input.Recursive, o.Recursive, FlagRecursive)
	c.Input.IncludePatterns = ft.MergeStringSlice(c.Input.IncludePatterns, o.IncludePatterns, FlagInclude)
	c.Input.ExcludePatterns = ft.MergeStringSlice(c.Input.ExcludePatterns, o.ExcludePatterns, FlagExclude)
	c.Input.SkipEmpty = ft.MergeBool(c.Input.SkipEmpty, o.SkipEmpty, FlagSkipEmpty)

	c.Query.Threshold = ft.MergeFloat64(c.Query.Threshold, o.Threshold, FlagThreshold)
	c.Query.MaxResults = ft.MergeInt(c.Query.MaxResults, o.MaxResults, FlagMaxResults)

	c.Output.Directory = ft.MergeString(c.Output.Directory, o.OutputDir, FlagOutputDir)

	c.Log.Level = ft.MergeString(c.Log.Level, o.LogLevel, FlagLogLevel)
	c.Log.Format = ft.MergeString(c.Log.Format, o.LogFormat, FlagLogFormat)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SaveConfig writes config to path in the format implied by its extension
// (toml, yaml, yml or json).
func SaveConfig(config *Config, path string) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "toml", "yaml", "yml", "json":
	default:
		return fmt.Errorf("unsupported config file extension '%s', use .toml, .yaml or .json", filepath.Ext(path))
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ext)

	for key, value := range settings(config) {
		v.Set(key, value)
	}

	return v.WriteConfig()
}

// settings flattens config into viper keys using the file key names
func settings(config *Config) map[string]any {
	return map[string]any{
		"lsh.num_hashes":           config.LSH.NumHashes,
		"lsh.num_bands":            config.LSH.NumBands,
		"lsh.workers":              config.LSH.Workers,
		"shingle.size":             config.Shingle.Size,
		"shingle.min_token_length": config.Shingle.MinTokenLength,
		"input.recursive":          config.Input.Recursive,
		"input.include_patterns":   config.Input.IncludePatterns,
		"input.exclude_patterns":   config.Input.ExcludePatterns,
		"input.skip_empty":         config.Input.SkipEmpty,
		"query.threshold":          config.Query.Threshold,
		"query.max_results":        config.Query.MaxResults,
		"output.format":            config.Output.Format,
		"output.directory":         config.Output.Directory,
		"log.level":                config.Log.Level,
		"log.format":               config.Log.Format,
	}
}
