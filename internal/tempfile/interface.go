package tempfile

// TempFileManager defines the interface for staging copies of original files
// in numbered scratch directories
type TempFileManager interface {
	// Add copies the file into a new numbered subdirectory of the root
	Add(file string) error

	// OriginalFiles returns the added originals in addition order
	OriginalFiles() []string

	// TempFiles returns the temp copies, positionally aligned with OriginalFiles
	TempFiles() []string

	// TempsToOriginals maps every temp copy to the original it was copied from
	TempsToOriginals() map[string]string

	// TempDirectory returns the root scratch directory of this manager
	TempDirectory() string

	// TempSubdirectory returns the n-th (1-based) per-addition subdirectory
	TempSubdirectory(n int) string

	// Dispose removes the root scratch directory and everything under it
	Dispose() error
}

// Logger defines the logging interface used by the tempfile package
type Logger interface {
	LogInfo(msg string, fields map[string]interface{})
	LogDebug(message string, fields map[string]interface{})
	LogError(err error, msg string) error
}
