package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/consensuslabs/extformatter/internal/errors"
	"github.com/consensuslabs/extformatter/internal/tempfile"
)

// StagedFormatter runs the wrapped formatter on temp copies of the files and
// copies results back only for files whose contents changed. Originals are
// never touched when the formatter fails. Directory operations are passed
// through unstaged.
type StagedFormatter struct {
	target     CodeFormatter
	tempConfig *tempfile.Config
	logger     Logger
}

var _ CodeFormatter = (*StagedFormatter)(nil)

// NewStagedFormatter wraps target with temp-file staging
func NewStagedFormatter(target CodeFormatter, tempConfig *tempfile.Config, logger Logger) *StagedFormatter {
	return &StagedFormatter{
		target:     target,
		tempConfig: tempConfig,
		logger:     logger,
	}
}

func (s *StagedFormatter) ReformatFile(ctx context.Context, file string) error {
	return s.stage(ctx, []string{file}, func(temps []string) error {
		return s.target.ReformatFile(ctx, temps[0])
	})
}

func (s *StagedFormatter) ReformatFiles(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	return s.stage(ctx, files, func(temps []string) error {
		return s.target.ReformatFiles(ctx, temps)
	})
}

func (s *StagedFormatter) ReformatFilesInDirectory(ctx context.Context, directory string) error {
	return s.target.ReformatFilesInDirectory(ctx, directory)
}

func (s *StagedFormatter) ReformatFilesInDirectoryRecursively(ctx context.Context, directory string) error {
	return s.target.ReformatFilesInDirectoryRecursively(ctx, directory)
}

func (s *StagedFormatter) SupportsFileType(file string) bool {
	return s.target.SupportsFileType(file)
}

func (s *StagedFormatter) SupportsReformatFile() bool {
	return s.target.SupportsReformatFile()
}

func (s *StagedFormatter) SupportsReformatFiles() bool {
	return s.target.SupportsReformatFiles()
}

func (s *StagedFormatter) SupportsReformatFilesInDirectory() bool {
	return s.target.SupportsReformatFilesInDirectory()
}

func (s *StagedFormatter) SupportsReformatFilesInDirectoryRecursively() bool {
	return s.target.SupportsReformatFilesInDirectoryRecursively()
}

// stage copies files into a fresh temp manager, runs format on the copies and
// reconciles the results. The manager is disposed on every path.
func (s *StagedFormatter) stage(ctx context.Context, files []string, format func(temps []string) error) (err error) {
	manager, err := tempfile.NewManager(s.tempConfig, s.logger)
	if err != nil {
		return err
	}
	defer func() {
		if disposeErr := manager.Dispose(); disposeErr != nil && err == nil {
			err = disposeErr
		}
	}()

	for _, file := range files {
		if err := manager.Add(file); err != nil {
			return err
		}
	}

	staged, err := snapshot(manager)
	if err != nil {
		return err
	}

	if err := format(manager.TempFiles()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	changed, err := s.reconcile(manager, staged)
	if err != nil {
		return err
	}

	s.logger.LogInfo("Reconciled staged files", map[string]interface{}{
		"files":   len(files),
		"changed": changed,
	})
	return nil
}

// snapshot reads the staged copies before the formatter runs. They hold the
// bytes each original had when it was added.
func snapshot(manager tempfile.TempFileManager) ([][]byte, error) {
	temps := manager.TempFiles()
	staged := make([][]byte, len(temps))
	for i, temp := range temps {
		data, err := os.ReadFile(temp)
		if err != nil {
			return nil, apperrors.NewStagingError(temp, "failed to read staged copy", err)
		}
		staged[i] = data
	}
	return staged, nil
}

// reconcile writes every formatted copy that differs from what was staged
// back over its original and returns how many originals were rewritten. An
// original that no longer matches its staged bytes was edited while the
// formatter ran; it is left alone and reported as ErrOriginalModified once
// the other files are written.
func (s *StagedFormatter) reconcile(manager tempfile.TempFileManager, staged [][]byte) (int, error) {
	originals := manager.OriginalFiles()
	changed := 0
	var conflicts []string
	for i, temp := range manager.TempFiles() {
		original := originals[i]

		formatted, err := os.ReadFile(temp)
		if err != nil {
			return changed, apperrors.NewStagingError(temp, "failed to read formatted copy", err)
		}
		if bytes.Equal(formatted, staged[i]) {
			continue
		}

		current, err := os.ReadFile(original)
		if err != nil {
			return changed, apperrors.NewStagingError(original, "failed to read original", err)
		}
		if !bytes.Equal(current, staged[i]) {
			s.logger.LogWarn("Original changed while formatting, keeping it", map[string]interface{}{
				"file": original,
			})
			conflicts = append(conflicts, original)
			continue
		}
		info, err := os.Stat(original)
		if err != nil {
			return changed, apperrors.NewStagingError(original, "failed to stat original", err)
		}
		if err := os.WriteFile(original, formatted, info.Mode().Perm()); err != nil {
			return changed, apperrors.NewStagingError(original, "failed to write back formatted file", err)
		}
		changed++

		s.logger.LogDebug(fmt.Sprintf("Updated %s", original), map[string]interface{}{
			"temp": temp,
		})
	}

	if len(conflicts) > 0 {
		return changed, apperrors.NewStagingError(strings.Join(conflicts, ", "),
			"formatted result discarded", apperrors.ErrOriginalModified)
	}
	return changed, nil
}
