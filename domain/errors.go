package domain

import (
	"errors"
	"fmt"
)

// DomainError represents errors in the domain layer
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Domain error codes
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeFileNotFound       = "FILE_NOT_FOUND"
	ErrCodeParseError         = "PARSE_ERROR"
	ErrCodeAnalysisError      = "ANALYSIS_ERROR"
	ErrCodeConfigError        = "CONFIG_ERROR"
	ErrCodeOutputError        = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	ErrCodeShapeMismatch      = "SHAPE_MISMATCH"
	ErrCodeUndefinedSignature = "UNDEFINED_SIGNATURE"
)

// Sentinel causes, matchable with errors.Is through a DomainError.
var (
	ErrInvalidTotalHashes = errors.New("total hashes must be a positive integer")
	ErrShapeMismatch      = errors.New("signatures have different lengths")
	ErrUndefinedSignature = errors.New("signature of an empty set is undefined")
	ErrUnknownHashFamily  = errors.New("unknown hash family")
)

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewParseError creates a parse error
func NewParseError(file string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse dataset: %s", file), cause)
}

// NewAnalysisError creates an analysis error
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

// NewOutputError creates an output error
func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}

// NewValidationError creates a validation error
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

// NewInvalidTotalHashesError reports a non-positive hash count.
func NewInvalidTotalHashesError(totalHashes int) error {
	return NewConfigError(fmt.Sprintf("invalid total hashes %d", totalHashes), ErrInvalidTotalHashes)
}

// NewShapeMismatchError reports signatures of unequal length.
func NewShapeMismatchError(lenA, lenB int) error {
	return NewDomainError(ErrCodeShapeMismatch,
		fmt.Sprintf("cannot compare signatures of length %d and %d", lenA, lenB), ErrShapeMismatch)
}

// NewUndefinedSignatureError reports a comparison against an empty set's signature.
func NewUndefinedSignatureError(label string) error {
	msg := "cannot estimate similarity of an empty set"
	if label != "" {
		msg = fmt.Sprintf("cannot estimate similarity of empty set %q", label)
	}
	return NewDomainError(ErrCodeUndefinedSignature, msg, ErrUndefinedSignature)
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var de DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
