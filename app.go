package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/consensuslabs/extformatter/internal/config"
	"github.com/consensuslabs/extformatter/internal/formatter"
	"github.com/consensuslabs/extformatter/internal/logger"
	"github.com/consensuslabs/extformatter/internal/watch"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	ctx       context.Context
	Config    *config.Config
	logger    logger.Logger
	formatter formatter.CodeFormatter
	router    *gin.Engine
}

// NewApp creates a new application instance with all dependencies
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) *App {
	app := &App{
		ctx:       ctx,
		Config:    cfg,
		logger:    log,
		formatter: newFormatter(cfg, log),
	}

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.router = gin.New()
	app.router.Use(gin.Recovery())
	app.setupRoutes()

	return app
}

// newFormatter builds the external formatter, staged behind temp copies when
// configured
func newFormatter(cfg *config.Config, log logger.Logger) formatter.CodeFormatter {
	external := formatter.NewExternalFormatter(&cfg.Formatter, log.WithFields(map[string]interface{}{
		"component": "formatter",
	}))
	if !cfg.Formatter.Staged {
		return external
	}
	return formatter.NewStagedFormatter(external, &cfg.TempFile, log.WithFields(map[string]interface{}{
		"component": "staging",
	}))
}

// Format queues a reformat for every path and flushes once. Directories use
// the directory operations of the formatter.
func (a *App) Format(paths []string, recursive bool) error {
	queue := formatter.NewQueue(a.formatter, a.logger)

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}

		switch {
		case info.IsDir() && recursive:
			if !queue.SupportsReformatFilesInDirectoryRecursively() {
				return fmt.Errorf("%s: formatter cannot reformat directories recursively", p)
			}
			queue.Enqueue(formatter.ReformatDirectoryCommand{Directory: abs, Recursive: true})
		case info.IsDir():
			if !queue.SupportsReformatFilesInDirectory() {
				return fmt.Errorf("%s: formatter cannot reformat directories", p)
			}
			queue.Enqueue(formatter.ReformatDirectoryCommand{Directory: abs})
		case !queue.SupportsFileType(abs):
			a.logger.LogWarn("Skipping unsupported file type", map[string]interface{}{"file": abs})
		default:
			if !queue.SupportsReformatFile() {
				return fmt.Errorf("%s: formatter cannot reformat single files", p)
			}
			queue.Enqueue(formatter.ReformatFileCommand{File: abs})
		}
	}

	return queue.Flush(a.ctx)
}

// Watch reformats files under dirs as they are saved until the context ends
func (a *App) Watch(dirs []string) error {
	cfg := a.Config.Watch
	cfg.Dirs = dirs

	w, err := watch.NewWatcher(cfg, a.formatter, a.logger.WithFields(map[string]interface{}{
		"component": "watcher",
	}))
	if err != nil {
		return err
	}
	return w.Run(a.ctx)
}

// Serve runs the HTTP API, and the watcher when watch directories are
// configured, until the context ends
func (a *App) Serve() error {
	addr := net.JoinHostPort(a.Config.Server.Host, strconv.Itoa(a.Config.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(a.ctx)

	g.Go(func() error {
		a.logger.LogInfo("Starting server", map[string]interface{}{"addr": addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.LogInfo("Shutting down server", nil)
		return server.Shutdown(shutdownCtx)
	})

	if len(a.Config.Watch.Dirs) > 0 {
		g.Go(func() error {
			w, err := watch.NewWatcher(a.Config.Watch, a.formatter, a.logger.WithFields(map[string]interface{}{
				"component": "watcher",
			}))
			if err != nil {
				return err
			}
			return w.Run(ctx)
		})
	}

	return g.Wait()
}
