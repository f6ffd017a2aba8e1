package tempfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	apperrors "github.com/consensuslabs/extformatter/internal/errors"
	"github.com/google/uuid"
)

// DefaultPermissions is used for scratch directories when the config leaves
// Permissions unset
const DefaultPermissions os.FileMode = 0o755

// Config represents the configuration for the temporary file manager
type Config struct {
	BaseDir     string      `mapstructure:"baseDir"`     // Parent of every manager's root directory
	Permissions os.FileMode `mapstructure:"permissions"` // Permissions for created directories
}

type entry struct {
	original string
	tempDir  string
	tempFile string
}

// Manager stages copies of original files. Every Add gets its own numbered
// subdirectory under the manager's root, so repeated originals never clash.
// A Manager is not safe for concurrent use.
type Manager struct {
	root        string
	entries     []entry
	logger      Logger
	permissions os.FileMode
	disposed    bool
}

var _ TempFileManager = (*Manager)(nil)

// NewManager creates the manager's root scratch directory and returns the
// manager. The caller owns the directory and must call Dispose.
func NewManager(config *Config, logger Logger) (*Manager, error) {
	baseDir := config.BaseDir
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "extfmt")
	}
	perm := config.Permissions
	if perm == 0 {
		perm = DefaultPermissions
	}

	if err := os.MkdirAll(baseDir, perm); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	root := filepath.Join(baseDir, uuid.New().String())
	if err := os.Mkdir(root, perm); err != nil {
		logger.LogError(err, fmt.Sprintf("Failed to create temporary directory: path=%s", root))
		return nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}

	logger.LogDebug("Created temporary directory", map[string]interface{}{
		"path": root,
	})

	return &Manager{
		root:        root,
		logger:      logger,
		permissions: perm,
	}, nil
}

// Add copies file into subdirectory n+1 of the root, where n is the number of
// files added so far. On failure nothing is recorded and the subdirectory is
// removed again.
func (m *Manager) Add(file string) error {
	if m.disposed {
		return apperrors.ErrManagerDisposed
	}

	dir := m.TempSubdirectory(len(m.entries) + 1)
	if err := os.Mkdir(dir, m.permissions); err != nil {
		return apperrors.NewStagingError(dir, "failed to create temp subdirectory", err)
	}

	tempFile := filepath.Join(dir, filepath.Base(file))
	if err := copyFile(file, tempFile); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			m.logger.LogError(rmErr, fmt.Sprintf("Failed to remove partial temp subdirectory: path=%s", dir))
		}
		return apperrors.NewStagingError(file, "failed to copy file to temp directory", err)
	}

	m.entries = append(m.entries, entry{
		original: file,
		tempDir:  dir,
		tempFile: tempFile,
	})

	m.logger.LogDebug("Staged file", map[string]interface{}{
		"original": file,
		"temp":     tempFile,
	})
	return nil
}

// OriginalFiles returns the originals in addition order, duplicates included
func (m *Manager) OriginalFiles() []string {
	files := make([]string, len(m.entries))
	for i, e := range m.entries {
		files[i] = e.original
	}
	return files
}

// TempFiles returns the temp copies in addition order
func (m *Manager) TempFiles() []string {
	files := make([]string, len(m.entries))
	for i, e := range m.entries {
		files[i] = e.tempFile
	}
	return files
}

// TempsToOriginals maps each temp copy to its original
func (m *Manager) TempsToOriginals() map[string]string {
	mapping := make(map[string]string, len(m.entries))
	for _, e := range m.entries {
		mapping[e.tempFile] = e.original
	}
	return mapping
}

// TempDirectory returns the root scratch directory
func (m *Manager) TempDirectory() string {
	return m.root
}

// TempSubdirectory returns the path of the n-th per-addition subdirectory
func (m *Manager) TempSubdirectory(n int) string {
	return filepath.Join(m.root, strconv.Itoa(n))
}

// Dispose removes the root scratch directory recursively. Calling it again
// after a successful dispose is a no-op.
func (m *Manager) Dispose() error {
	if m.disposed {
		return nil
	}

	if err := os.RemoveAll(m.root); err != nil {
		m.logger.LogError(err, fmt.Sprintf("Failed to cleanup temporary directory: path=%s", m.root))
		return apperrors.NewStagingError(m.root, "failed to cleanup temporary directory", err)
	}

	m.disposed = true

	m.logger.LogDebug("Cleaned up temporary directory", map[string]interface{}{
		"path": m.root,
	})
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm()|0o200)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
