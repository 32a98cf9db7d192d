package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Pipeline specific errors
	ErrExtraction     ErrorCode = "EXTRACTION_ERROR"
	ErrEmbedding      ErrorCode = "EMBEDDING_ERROR"
	ErrCorruptArchive ErrorCode = "CORRUPT_ARCHIVE"
	ErrPersistence    ErrorCode = "PERSISTENCE_ERROR"
	ErrCompletion     ErrorCode = "COMPLETION_SERVICE_ERROR"
	ErrQuizParse      ErrorCode = "QUIZ_PARSE_ERROR"
)

// ErrRateLimited marks a completion failure caused by a quota or rate-limit
// condition. Callers surface it as a distinct warning, not a hard failure.
var ErrRateLimited = errors.New("completion service rate limited")

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewExtractionError(message string, err error) *DomainError {
	return NewError(ErrExtraction, message, err)
}

func NewEmbeddingError(message string, err error) *DomainError {
	return NewError(ErrEmbedding, message, err)
}

func NewCorruptArchiveError(message string, err error) *DomainError {
	return NewError(ErrCorruptArchive, message, err)
}

func NewPersistenceError(message string, err error) *DomainError {
	return NewError(ErrPersistence, message, err)
}

func NewCompletionError(err error) *DomainError {
	return NewError(ErrCompletion, "Completion service call failed", err)
}

func NewQuizParseError(err error) *DomainError {
	return NewError(ErrQuizParse, "Failed to parse generated quiz", err)
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
