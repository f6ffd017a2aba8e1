package errors

// Error message constants
const (
	ErrMsgNoFiles          = "At least one file is required"
	ErrMsgFileNotFound     = "File not found"
	ErrMsgFileType         = "File type not supported by the formatter"
	ErrMsgExecutableNeeded = "Formatter executable is required"
	ErrMsgNoOperations     = "Formatter must support at least one operation"
)
