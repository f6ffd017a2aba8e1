// Package formatter delegates source reformatting to an external code
// formatter and provides the decorators that sit in front of it: a deferred
// command queue and a formatter that works on staged temp copies.
package formatter

import "context"

// CodeFormatter is the capability offered by a code formatter. Callers check
// the Supports methods before using the matching operation; unsupported
// operations return errors.ErrUnsupportedOperation.
type CodeFormatter interface {
	ReformatFile(ctx context.Context, file string) error
	ReformatFiles(ctx context.Context, files []string) error
	ReformatFilesInDirectory(ctx context.Context, directory string) error
	ReformatFilesInDirectoryRecursively(ctx context.Context, directory string) error

	SupportsFileType(file string) bool
	SupportsReformatFile() bool
	SupportsReformatFiles() bool
	SupportsReformatFilesInDirectory() bool
	SupportsReformatFilesInDirectoryRecursively() bool
}

// Logger defines the logging interface used by the formatter package
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogDebug(message string, fields map[string]interface{})
	LogWarn(message string, fields map[string]interface{})
	LogError(err error, msg string) error
}

// Capabilities is a snapshot of a formatter's supported operations
type Capabilities struct {
	ReformatFile                        bool     `json:"reformatFile"`
	ReformatFiles                       bool     `json:"reformatFiles"`
	ReformatFilesInDirectory            bool     `json:"reformatFilesInDirectory"`
	ReformatFilesInDirectoryRecursively bool     `json:"reformatFilesInDirectoryRecursively"`
	Extensions                          []string `json:"extensions,omitempty"`
}

// CapabilitiesOf queries every capability flag of f
func CapabilitiesOf(f CodeFormatter) Capabilities {
	caps := Capabilities{
		ReformatFile:                        f.SupportsReformatFile(),
		ReformatFiles:                       f.SupportsReformatFiles(),
		ReformatFilesInDirectory:            f.SupportsReformatFilesInDirectory(),
		ReformatFilesInDirectoryRecursively: f.SupportsReformatFilesInDirectoryRecursively(),
	}
	if e, ok := f.(interface{ Extensions() []string }); ok {
		caps.Extensions = e.Extensions()
	}
	return caps
}
