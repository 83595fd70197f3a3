package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is returned when a Redis key does not exist.
	RedisNotFoundMessage = "not found"
	// InvalidQueryMessage describes request validation failures.
	InvalidQueryMessage = "invalid query"
	// NoDocumentsMessage is returned when the document corpus is unavailable.
	NoDocumentsMessage = "no documents available"
	// GenerationFailedMessage describes failures of the generation backend.
	GenerationFailedMessage = "generation backend failure"
	// CorpusLoadMessage describes failures while loading the document corpus.
	CorpusLoadMessage = "failed to load documents"
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// InvalidQuery marks a request as failing validation. Maps to 400.
func InvalidQuery(err error) *AppError {
	msg := InvalidQueryMessage
	if err != nil {
		msg = err.Error()
	}
	return New(err, http.StatusBadRequest, msg)
}

// NoDocuments reports that the corpus has no documents to serve. Maps to 503.
func NoDocuments() *AppError {
	return New(nil, http.StatusServiceUnavailable, NoDocumentsMessage)
}

// GenerationFailure wraps an error from the generation backend. Maps to 502.
func GenerationFailure(err error) *AppError {
	return New(err, http.StatusBadGateway, GenerationFailedMessage)
}

// CorpusLoad wraps a corpus-level load error. Maps to 500.
func CorpusLoad(err error) *AppError {
	return New(err, http.StatusInternalServerError, CorpusLoadMessage)
}

// From converts any error into an AppError. Errors that already carry an
// AppError in their chain pass through unchanged; everything else becomes an
// internal server error with a safe message.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return New(err, http.StatusInternalServerError, SystemErrorMessage)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
