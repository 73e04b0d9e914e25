package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/analyzer"
)

// TestNewErrorCategorizer tests the constructor
func TestNewErrorCategorizer(t *testing.T) {
	categorizer := NewErrorCategorizer()
	assert.NotNil(t, categorizer)
	assert.IsType(t, &ErrorCategorizerImpl{}, categorizer)
}

func TestCategorize_TypedErrors(t *testing.T) {
	categorizer := NewErrorCategorizer()

	tests := []struct {
		name         string
		err          error
		wantCategory domain.ErrorCategory
	}{
		{"bands do not divide", fmt.Errorf("%w: num_bands (3) must evenly divide num_hashes (10)", analyzer.ErrConfiguration), domain.ErrorCategoryConfig},
		{"bad threshold", fmt.Errorf("%w: got 2", analyzer.ErrInvalidThreshold), domain.ErrorCategoryInput},
		{"out of range", domain.NewInvalidInputError("invalid query", analyzer.ErrIndexOutOfRange), domain.ErrorCategoryInput},
		{"empty document", domain.NewEmptyDocumentError("a.txt", nil), domain.ErrorCategoryInput},
		{"missing file", domain.NewFileNotFoundError("a.txt", nil), domain.ErrorCategoryInput},
		{"corrupt snapshot", domain.NewSnapshotError("load", analyzer.ErrInvalidSnapshot), domain.ErrorCategoryProcessing},
		{"stale snapshot", analyzer.ErrSnapshotMismatch, domain.ErrorCategoryProcessing},
		{"config domain error", domain.NewConfigError("bad config", nil), domain.ErrorCategoryConfig},
		{"unsupported format", domain.NewUnsupportedFormatError("xml"), domain.ErrorCategoryConfig},
		{"output", domain.NewOutputError("failed to write output", nil), domain.ErrorCategoryOutput},
		{"cancelled", fmt.Errorf("build: %w", context.Canceled), domain.ErrorCategoryTimeout},
		{"deadline", context.DeadlineExceeded, domain.ErrorCategoryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizer.Categorize(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCategory, got.Category)
			assert.Equal(t, tt.err, got.Original)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestCategorize_MessagePatterns(t *testing.T) {
	categorizer := NewErrorCategorizer()

	tests := []struct {
		msg          string
		wantCategory domain.ErrorCategory
	}{
		{"operation timed out", domain.ErrorCategoryTimeout},
		{"failed to read config file .docsim.toml", domain.ErrorCategoryConfig},
		{"open x.txt: no such file or directory", domain.ErrorCategoryInput},
		{"failed to write report", domain.ErrorCategoryOutput},
		{"signature lengths differ", domain.ErrorCategoryProcessing},
		{"something odd happened", domain.ErrorCategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			got := categorizer.Categorize(errors.New(tt.msg))
			assert.Equal(t, tt.wantCategory, got.Category)
		})
	}

	unknown := categorizer.Categorize(errors.New("something odd happened"))
	assert.Equal(t, "something odd happened", unknown.Message)
}

func TestCategorize_Nil(t *testing.T) {
	assert.Nil(t, NewErrorCategorizer().Categorize(nil))
}

func TestGetRecoverySuggestions(t *testing.T) {
	categorizer := NewErrorCategorizer()

	categories := []domain.ErrorCategory{
		domain.ErrorCategoryInput,
		domain.ErrorCategoryConfig,
		domain.ErrorCategoryProcessing,
		domain.ErrorCategoryOutput,
		domain.ErrorCategoryTimeout,
		domain.ErrorCategoryUnknown,
	}
	for _, c := range categories {
		assert.NotEmpty(t, categorizer.GetRecoverySuggestions(c), c)
	}

	assert.Equal(t, []string{"Check the error message for more details"},
		categorizer.GetRecoverySuggestions(domain.ErrorCategory("bogus")))
	assert.Contains(t, categorizer.GetRecoverySuggestions(domain.ErrorCategoryConfig),
		"Try: docsim init to generate a valid config file")
}
