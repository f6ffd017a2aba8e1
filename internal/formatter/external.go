package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/consensuslabs/extformatter/internal/errors"
)

// Argument placeholders understood by the command templates
const (
	PlaceholderFile      = "{file}"
	PlaceholderFiles     = "{files}"
	PlaceholderDirectory = "{directory}"
)

// ArgsConfig holds the argument template for each formatter operation. An
// empty template marks the operation as unsupported.
type ArgsConfig struct {
	File               string `mapstructure:"file"`
	Files              string `mapstructure:"files"`
	Directory          string `mapstructure:"directory"`
	DirectoryRecursive string `mapstructure:"directoryRecursive"`
}

// Config represents external formatter configuration
type Config struct {
	Name       string        `mapstructure:"name"`       // Display name used in logs
	Executable string        `mapstructure:"executable"` // Path to the formatter binary
	WorkDir    string        `mapstructure:"workDir"`    // Working directory for the process
	Args       ArgsConfig    `mapstructure:"args"`
	Extensions []string      `mapstructure:"extensions"` // Supported file extensions, empty means all
	Timeout    time.Duration `mapstructure:"timeout"`    // Per invocation, zero means none
	Staged     bool          `mapstructure:"staged"`     // Format temp copies instead of originals
}

// ExternalFormatter runs a user-configured formatter executable
type ExternalFormatter struct {
	config     *Config
	extensions map[string]bool
	logger     Logger
}

var _ CodeFormatter = (*ExternalFormatter)(nil)

// NewExternalFormatter creates a formatter that shells out to config.Executable
func NewExternalFormatter(config *Config, logger Logger) *ExternalFormatter {
	extensions := make(map[string]bool, len(config.Extensions))
	for _, ext := range config.Extensions {
		extensions[NormalizeExtension(ext)] = true
	}
	return &ExternalFormatter{
		config:     config,
		extensions: extensions,
		logger:     logger,
	}
}

// NormalizeExtension lower-cases ext and makes sure it starts with a dot
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Extensions returns the configured file extensions
func (f *ExternalFormatter) Extensions() []string {
	return f.config.Extensions
}

func (f *ExternalFormatter) ReformatFile(ctx context.Context, file string) error {
	if !f.SupportsReformatFile() {
		return apperrors.ErrUnsupportedOperation
	}
	if err := f.checkFile(file); err != nil {
		return err
	}
	args := expandArgs(f.config.Args.File, map[string][]string{
		PlaceholderFile: {file},
	})
	return f.run(ctx, file, args)
}

func (f *ExternalFormatter) ReformatFiles(ctx context.Context, files []string) error {
	if !f.SupportsReformatFiles() {
		return apperrors.ErrUnsupportedOperation
	}
	if len(files) == 0 {
		return nil
	}
	for _, file := range files {
		if err := f.checkFile(file); err != nil {
			return err
		}
	}
	args := expandArgs(f.config.Args.Files, map[string][]string{
		PlaceholderFiles: files,
	})
	return f.run(ctx, strings.Join(files, ","), args)
}

func (f *ExternalFormatter) ReformatFilesInDirectory(ctx context.Context, directory string) error {
	if !f.SupportsReformatFilesInDirectory() {
		return apperrors.ErrUnsupportedOperation
	}
	return f.reformatDirectory(ctx, f.config.Args.Directory, directory)
}

func (f *ExternalFormatter) ReformatFilesInDirectoryRecursively(ctx context.Context, directory string) error {
	if !f.SupportsReformatFilesInDirectoryRecursively() {
		return apperrors.ErrUnsupportedOperation
	}
	return f.reformatDirectory(ctx, f.config.Args.DirectoryRecursive, directory)
}

func (f *ExternalFormatter) reformatDirectory(ctx context.Context, template, directory string) error {
	info, err := os.Stat(directory)
	if err != nil {
		return apperrors.NewFormatterError(directory, apperrors.ErrMsgFileNotFound, "", err)
	}
	if !info.IsDir() {
		return apperrors.NewFormatterError(directory, "not a directory", "", nil)
	}
	args := expandArgs(template, map[string][]string{
		PlaceholderDirectory: {directory},
	})
	return f.run(ctx, directory, args)
}

// SupportsFileType reports whether the file's extension is configured. With
// no extensions configured every file is accepted.
func (f *ExternalFormatter) SupportsFileType(file string) bool {
	if len(f.extensions) == 0 {
		return true
	}
	return f.extensions[strings.ToLower(filepath.Ext(file))]
}

func (f *ExternalFormatter) SupportsReformatFile() bool {
	return f.config.Args.File != ""
}

func (f *ExternalFormatter) SupportsReformatFiles() bool {
	return f.config.Args.Files != ""
}

func (f *ExternalFormatter) SupportsReformatFilesInDirectory() bool {
	return f.config.Args.Directory != ""
}

func (f *ExternalFormatter) SupportsReformatFilesInDirectoryRecursively() bool {
	return f.config.Args.DirectoryRecursive != ""
}

func (f *ExternalFormatter) checkFile(file string) error {
	if !f.SupportsFileType(file) {
		return apperrors.NewFormatterError(file, apperrors.ErrMsgFileType, "", apperrors.ErrUnsupportedOperation)
	}
	if _, err := os.Stat(file); err != nil {
		return apperrors.NewFormatterError(file, apperrors.ErrMsgFileNotFound, "", err)
	}
	return nil
}

// run executes the formatter and waits for it to finish
func (f *ExternalFormatter) run(ctx context.Context, target string, args []string) error {
	if f.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.config.Executable, args...)
	cmd.Dir = f.config.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	f.logger.LogDebug("Executing formatter command", map[string]interface{}{
		"formatter": f.config.Name,
		"command":   cmd.String(),
		"target":    target,
	})

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = strings.TrimSpace(stdout.String())
		}
		f.logger.LogError(err, fmt.Sprintf("Formatter failed: formatter=%s, target=%s", f.config.Name, target))
		return apperrors.NewFormatterError(target, "formatter failed", output, err)
	}

	f.logger.LogInfo("Formatter completed", map[string]interface{}{
		"formatter": f.config.Name,
		"target":    target,
		"duration":  time.Since(start),
	})
	return nil
}

// expandArgs splits template on whitespace and substitutes placeholders. A
// token that is exactly a placeholder expands to all of its values; embedded
// placeholders are replaced with the values joined by spaces.
func expandArgs(template string, values map[string][]string) []string {
	tokens := strings.Fields(template)
	args := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if v, ok := values[token]; ok {
			args = append(args, v...)
			continue
		}
		for placeholder, v := range values {
			token = strings.ReplaceAll(token, placeholder, strings.Join(v, " "))
		}
		args = append(args, token)
	}
	return args
}
