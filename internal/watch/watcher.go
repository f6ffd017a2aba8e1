// Package watch reformats supported files shortly after they are saved.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "github.com/consensuslabs/extformatter/internal/errors"
	"github.com/consensuslabs/extformatter/internal/formatter"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is unset
const DefaultDebounce = 500 * time.Millisecond

// Config represents the watcher configuration
type Config struct {
	Dirs      []string      `mapstructure:"dirs"`
	Debounce  time.Duration `mapstructure:"debounce"`
	Recursive bool          `mapstructure:"recursive"`
}

type stamp struct {
	modTime time.Time
	size    int64
}

// Watcher queues a reformat for every supported file that is written and
// flushes the queue once the file has been quiet for the debounce period.
type Watcher struct {
	watcher   *fsnotify.Watcher
	formatter formatter.CodeFormatter
	logger    formatter.Logger
	config    Config
	pending   map[string]time.Time
	formatted map[string]stamp
}

// NewWatcher creates a watcher over config.Dirs
func NewWatcher(config Config, f formatter.CodeFormatter, logger formatter.Logger) (*Watcher, error) {
	if len(config.Dirs) == 0 {
		return nil, fmt.Errorf("no directories to watch")
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:   fw,
		formatter: f,
		logger:    logger,
		config:    config,
		pending:   make(map[string]time.Time),
		formatted: make(map[string]stamp),
	}

	for _, dir := range config.Dirs {
		if err := w.addDir(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addDir(dir string) error {
	if !w.config.Recursive {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.logger.LogInfo("Watching directory", map[string]interface{}{"path": dir})
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		w.logger.LogDebug("Watching directory", map[string]interface{}{"path": path})
		return nil
	})
}

// Run processes file events until ctx is cancelled. It closes the underlying
// watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	tick := w.config.Debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.LogInfo("Watcher stopped", nil)
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.LogError(err, "File watcher error")

		case now := <-ticker.C:
			w.flushDue(ctx, now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if w.config.Recursive && event.Has(fsnotify.Create) {
			if err := w.addDir(event.Name); err != nil {
				w.logger.LogError(err, "Failed to watch new directory")
			}
		}
		return
	}

	if !w.formatter.SupportsFileType(event.Name) {
		return
	}
	if s, ok := w.formatted[event.Name]; ok && s.modTime.Equal(info.ModTime()) && s.size == info.Size() {
		return
	}

	w.pending[event.Name] = time.Now()
}

// flushDue reformats every pending file that has been quiet long enough
func (w *Watcher) flushDue(ctx context.Context, now time.Time) {
	var due []string
	for file, last := range w.pending {
		if now.Sub(last) >= w.config.Debounce {
			due = append(due, file)
		}
	}
	if len(due) == 0 {
		return
	}
	sort.Strings(due)

	queue := formatter.NewQueue(w.formatter, w.logger)
	for _, file := range due {
		delete(w.pending, file)
		queue.Enqueue(reformatOnSave{file: file, watcher: w})
	}

	// Flush drops a failed command and keeps the rest queued
	for queue.Len() > 0 {
		if err := queue.Flush(ctx); err != nil {
			w.logger.LogWarn("Reformat on save failed", map[string]interface{}{
				"error": err.Error(),
			})
			if ctx.Err() != nil {
				return
			}
		}
	}
}

// settle runs right after the formatter is done with file. A file whose
// formatted result was discarded because it was saved again meanwhile goes
// back to pending; any other file has its current state remembered.
func (w *Watcher) settle(file string, err error) {
	if errors.Is(err, apperrors.ErrOriginalModified) {
		delete(w.formatted, file)
		w.pending[file] = time.Now()
		w.logger.LogInfo("File saved while formatting, queued again", map[string]interface{}{
			"file": file,
		})
		return
	}
	w.remember(file)
}

// remember records the state a file was left in after formatting so the
// write caused by the formatter itself does not trigger another run
func (w *Watcher) remember(file string) {
	info, err := os.Stat(file)
	if err != nil {
		delete(w.formatted, file)
		return
	}
	w.formatted[file] = stamp{modTime: info.ModTime(), size: info.Size()}
}

// reformatOnSave reformats one saved file and settles it in the watcher as
// soon as the formatter returns, before later files in the same flush run
type reformatOnSave struct {
	file    string
	watcher *Watcher
}

func (c reformatOnSave) Execute(ctx context.Context, f formatter.CodeFormatter) error {
	err := f.ReformatFile(ctx, c.file)
	c.watcher.settle(c.file, err)
	return err
}

func (c reformatOnSave) String() string {
	return formatter.ReformatFileCommand{File: c.file}.String()
}
