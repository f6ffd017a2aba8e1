package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/consensuslabs/extformatter/internal/config"
	"github.com/consensuslabs/extformatter/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configDir string
	recursive bool
	quiet     bool
)

var rootCmd = &cobra.Command{
	Use:           "extfmt",
	Short:         "Reformat source files with an external code formatter",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var formatCmd = &cobra.Command{
	Use:   "format PATH...",
	Short: "Reformat the given files and directories once",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *App) error {
			return app.Format(args, recursive)
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [DIR...]",
	Short: "Reformat files as they are saved",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *App) error {
			dirs := args
			if len(dirs) == 0 {
				dirs = app.Config.Watch.Dirs
			}
			if len(dirs) == 0 {
				return fmt.Errorf("no directories to watch: pass them as arguments or set watch.dirs")
			}
			return app.Watch(dirs)
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the formatter over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(app *App) error {
			return app.Serve()
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Discard log output")
	formatCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Reformat directories recursively")

	rootCmd.AddCommand(formatCmd, watchCmd, serveCmd)
}

// withApp loads the configuration, builds the application and runs fn
func withApp(ctx context.Context, fn func(app *App) error) error {
	bootstrap, err := logger.NewLogger(logger.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.NewConfigService(bootstrap).Load(configDir)
	if err != nil {
		return bootstrap.LogError(err, "Failed to load configuration")
	}

	appLogger, err := newAppLogger(cfg, quiet)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if s, ok := appLogger.(interface{ Sync() error }); ok {
		defer s.Sync()
	}

	return fn(NewApp(ctx, cfg, appLogger))
}

// newAppLogger builds the configured logger, or one that discards everything
// when quiet is set
func newAppLogger(cfg *config.Config, quiet bool) (logger.Logger, error) {
	if quiet {
		return logger.NewNop(), nil
	}
	return logger.NewLogger(&cfg.Logging)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
