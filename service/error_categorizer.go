package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/setsim/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	codes    map[string]domain.ErrorCategory
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		codes:    initializeErrorCodes(),
		patterns: initializeErrorPatterns(),
	}
}

func initializeErrorCodes() map[string]domain.ErrorCategory {
	return map[string]domain.ErrorCategory{
		domain.ErrCodeInvalidInput:       domain.ErrorCategoryInput,
		domain.ErrCodeFileNotFound:       domain.ErrorCategoryInput,
		domain.ErrCodeParseError:         domain.ErrorCategoryInput,
		domain.ErrCodeUnsupportedFormat:  domain.ErrorCategoryInput,
		domain.ErrCodeConfigError:        domain.ErrorCategoryConfig,
		domain.ErrCodeAnalysisError:      domain.ErrorCategoryProcessing,
		domain.ErrCodeShapeMismatch:      domain.ErrorCategoryProcessing,
		domain.ErrCodeUndefinedSignature: domain.ErrorCategoryProcessing,
		domain.ErrCodeOutputError:        domain.ErrorCategoryOutput,
	}
}

// initializeErrorPatterns is the fallback for errors that are not DomainErrors.
// Order matters: the first matching category wins.
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"deadline",
			"context canceled",
			"operation timed out",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no such file",
			"file not found",
			"no dataset files",
			"permission denied",
			"directory",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"toml",
			"hash family",
			"total hashes",
		}},
		{domain.ErrorCategoryOutput, []string{
			"write",
			"output",
			"cannot create",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"signature",
			"similarity",
			"parse",
		}},
	}
}

// Categorize determines the category of an error
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	var categorized *domain.CategorizedError
	if errors.As(err, &categorized) {
		return categorized
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ec.categorized(domain.ErrorCategoryTimeout, err)
	}

	var derr domain.DomainError
	if errors.As(err, &derr) {
		if category, ok := ec.codes[derr.Code]; ok {
			return ec.categorized(category, err)
		}
	}

	errMsg := strings.ToLower(err.Error())
	for _, cp := range ec.patterns {
		if containsAnyPattern(errMsg, cp.patterns) {
			return ec.categorized(cp.category, err)
		}
	}

	return &domain.CategorizedError{
		Category: domain.ErrorCategoryUnknown,
		Message:  err.Error(),
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) categorized(category domain.ErrorCategory, err error) *domain.CategorizedError {
	return &domain.CategorizedError{
		Category: category,
		Message:  ec.getCategoryMessage(category),
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the dataset path exists and is readable",
			"Pass --input-format explicitly if the file extension is not .json, .yaml, .toml or .csv",
			"For directory datasets, check --include and --exclude patterns",
			"Elements must be integers",
		},
		domain.ErrorCategoryConfig: {
			"Verify .setsim.toml values and SETSIM_* environment variables",
			"Try: setsim init to generate a valid config file",
			"total_hashes must be positive and threshold within [0, 1]",
		},
		domain.ErrorCategoryTimeout: {
			"Reduce --hashes or split the dataset",
			"Increase --workers to use more CPUs",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions for the output directory",
			"Try writing to a different location with --output",
		},
		domain.ErrorCategoryProcessing: {
			"Empty sets have no signature: use --empty-sets sentinel to compare them anyway",
			"Run with --verbose for detailed information",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
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
		domain.ErrorCategoryInput:      "Failed to read the dataset",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Computation was cancelled or timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error while computing signatures or similarities",
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
