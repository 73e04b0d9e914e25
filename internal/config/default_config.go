package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"text/template"

	"github.com/ludo-technologies/docsim/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
// All values are sourced from the domain package to ensure a single source of truth.
type DefaultConfigValues struct {
	// LSH
	NumHashes       int
	NumBands        int
	Rows            int
	ApproxThreshold float64
	Workers         int

	// Shingle
	ShingleSize    int
	MinTokenLength int

	// Input
	IncludePatterns []string

	// Query
	Threshold  float64
	MaxResults int

	// Output and logging
	OutputFormat string
	LogLevel     string
	LogFormat    string
}

// newDefaultConfigValues creates a DefaultConfigValues populated from domain constants.
func newDefaultConfigValues() DefaultConfigValues {
	rows := domain.DefaultNumHashes / domain.DefaultNumBands
	return DefaultConfigValues{
		NumHashes:       domain.DefaultNumHashes,
		NumBands:        domain.DefaultNumBands,
		Rows:            rows,
		ApproxThreshold: math.Pow(1.0/float64(domain.DefaultNumBands), 1.0/float64(rows)),
		Workers:         domain.DefaultWorkers,

		ShingleSize:    domain.DefaultShingleSize,
		MinTokenLength: domain.DefaultMinTokenLength,

		IncludePatterns: domain.DefaultIncludePatterns(),

		Threshold:  domain.DefaultSimilarityThreshold,
		MaxResults: domain.DefaultMaxResults,

		OutputFormat: string(domain.OutputFormatText),
		LogLevel:     domain.DefaultLogLevel,
		LogFormat:    domain.DefaultLogFormat,
	}
}

// GenerateDefaultConfigTOML renders the default config template with domain values
// and returns the resulting TOML string.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}
