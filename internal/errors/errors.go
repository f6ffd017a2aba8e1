package errors

import "fmt"

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *StagingError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: path=%s", msg, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *StagingError) Unwrap() error {
	return e.Cause
}

func (e *FormatterError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = fmt.Sprintf("%s: file=%s", msg, e.File)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s\n%s", msg, e.Output)
	}
	return msg
}

func (e *FormatterError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewStagingError creates a new StagingError
func NewStagingError(path, message string, cause error) *StagingError {
	return &StagingError{
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// NewFormatterError creates a new FormatterError
func NewFormatterError(file, message, output string, cause error) *FormatterError {
	return &FormatterError{
		File:    file,
		Message: message,
		Output:  output,
		Cause:   cause,
	}
}
