package service

import (
	"fmt"

	"github.com/ludo-technologies/docsim/domain"
)

// OutputFormatResolver resolves output format and file extension from flags.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine evaluates format flags and returns the selected format and extension.
// At most one of json/csv/yaml may be true; if none are true, fallback is used
// (text when fallback is empty).
func (r *OutputFormatResolver) Determine(json, csv, yaml bool, fallback domain.OutputFormat) (domain.OutputFormat, string, error) {
	formatCount := 0
	var format domain.OutputFormat

	if json {
		formatCount++
		format = domain.OutputFormatJSON
	}
	if csv {
		formatCount++
		format = domain.OutputFormatCSV
	}
	if yaml {
		formatCount++
		format = domain.OutputFormatYAML
	}

	if formatCount > 1 {
		return "", "", fmt.Errorf("only one output format flag can be specified")
	}
	if formatCount == 0 {
		if fallback == "" {
			fallback = domain.OutputFormatText
		}
		if _, err := domain.ParseOutputFormat(string(fallback)); err != nil {
			return "", "", err
		}
		format = fallback
	}
	return format, Extension(format), nil
}

// Extension returns the report file extension for a format
func Extension(format domain.OutputFormat) string {
	switch format {
	case domain.OutputFormatJSON:
		return "json"
	case domain.OutputFormatCSV:
		return "csv"
	case domain.OutputFormatYAML:
		return "yaml"
	default:
		return "txt"
	}
}
