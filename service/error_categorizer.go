package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/docsim/domain"
	"github.com/ludo-technologies/docsim/internal/analyzer"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns returns the message fallbacks in match order
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"deadline",
			"context canceled",
			"operation timed out",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"configuration",
			"invalid settings",
			"toml",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no files found",
			"file not found",
			"no such file",
			"cannot access",
			"permission denied",
		}},
		{domain.ErrorCategoryOutput, []string{
			"output",
			"cannot create",
			"failed to write",
			"report generation",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"snapshot",
			"signature",
			"index",
			"shingle",
		}},
	}
}

// Categorize determines the category of an error. Typed errors are checked
// first; the message patterns only apply to errors without a known type.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category, ok := categoryOf(err)
	if !ok {
		category = domain.ErrorCategoryUnknown
		errMsg := strings.ToLower(err.Error())
		for _, cp := range ec.patterns {
			if containsAnyPattern(errMsg, cp.patterns) {
				category = cp.category
				break
			}
		}
	}

	message := err.Error()
	if category != domain.ErrorCategoryUnknown {
		message = ec.getCategoryMessage(category)
	}
	return &domain.CategorizedError{
		Category: category,
		Message:  message,
		Original: err,
	}
}

func categoryOf(err error) (domain.ErrorCategory, bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domain.ErrorCategoryTimeout, true
	case errors.Is(err, analyzer.ErrConfiguration):
		return domain.ErrorCategoryConfig, true
	case errors.Is(err, analyzer.ErrInvalidThreshold), errors.Is(err, analyzer.ErrIndexOutOfRange),
		errors.Is(err, analyzer.ErrEmptyDocument):
		return domain.ErrorCategoryInput, true
	case errors.Is(err, analyzer.ErrInvalidSnapshot), errors.Is(err, analyzer.ErrSnapshotMismatch),
		errors.Is(err, analyzer.ErrNotBuilt):
		return domain.ErrorCategoryProcessing, true
	}

	switch domain.ErrorCode(err) {
	case domain.ErrCodeInvalidInput, domain.ErrCodeFileNotFound, domain.ErrCodeEmptyDocument:
		return domain.ErrorCategoryInput, true
	case domain.ErrCodeConfigError, domain.ErrCodeUnsupportedFormat:
		return domain.ErrorCategoryConfig, true
	case domain.ErrCodeOutputError:
		return domain.ErrorCategoryOutput, true
	case domain.ErrCodeAnalysisError, domain.ErrCodeSnapshotError:
		return domain.ErrorCategoryProcessing, true
	}
	return "", false
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the paths exist and contain files matching the include patterns",
			"Use --skip-empty to drop documents that produce no shingles",
			"Ensure you have read permissions for the target files",
		},
		domain.ErrorCategoryConfig: {
			"Verify configuration file format and values",
			"Try: docsim init to generate a valid config file",
			"Make sure lsh.num_bands evenly divides lsh.num_hashes",
		},
		domain.ErrorCategoryTimeout: {
			"Index a smaller corpus or fewer paths",
			"Lower lsh.num_hashes to speed up signature generation",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions for the output location",
			"Try writing to a different location",
		},
		domain.ErrorCategoryProcessing: {
			"Rebuild the snapshot with docsim index if the corpus changed",
			"Run with --log-level debug for detailed information",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --log-level debug for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to process input documents",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Operation was cancelled or timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error while building or querying the index",
		domain.ErrorCategoryUnknown:    "An unexpected error occurred",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
