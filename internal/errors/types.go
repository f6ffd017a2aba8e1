package errors

import "errors"

// ValidationError represents a validation error with a field and message
type ValidationError struct {
	Field   string
	Message string
}

// StagingError represents a failure while copying files into or out of
// temporary staging directories
type StagingError struct {
	Path    string
	Message string
	Cause   error
}

// FormatterError represents a failure reported by the external formatter
type FormatterError struct {
	File    string
	Message string
	Output  string
	Cause   error
}

var (
	// ErrUnsupportedOperation is returned when a formatter is asked to do
	// something its capabilities do not include
	ErrUnsupportedOperation = errors.New("operation not supported by formatter")

	// ErrManagerDisposed is returned when a disposed temp file manager is used
	ErrManagerDisposed = errors.New("temp file manager has been disposed")

	// ErrOriginalModified is the cause of a StagingError when an original
	// changed while its staged copy was being formatted
	ErrOriginalModified = errors.New("original modified while formatting")
)
