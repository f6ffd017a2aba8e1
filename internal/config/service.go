package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/consensuslabs/extformatter/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes environment variables that override config keys, e.g.
// EXTFMT_FORMATTER_EXECUTABLE for formatter.executable
const EnvPrefix = "EXTFMT"

// ConfigService implements the Service interface
type ConfigService struct {
	logger Logger
}

// NewConfigService creates a new configuration service
func NewConfigService(logger Logger) *ConfigService {
	return &ConfigService{
		logger: logger,
	}
}

// Load reads config.yaml (config_test.yaml when ENV=test) from path. A .env
// file in path is loaded first; environment variables override file values.
// A missing config file is not an error as long as the result validates.
func (s *ConfigService) Load(path string) (*Config, error) {
	envFile := filepath.Join(path, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	if os.Getenv("ENV") == "test" {
		v.SetConfigName("config_test")
	} else {
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		s.logger.LogInfo("No config file found, using defaults and environment", map[string]interface{}{
			"path": path,
		})
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := resolvePaths(&config, path); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	s.logger.LogInfo("Configuration loaded successfully", map[string]interface{}{
		"environment": config.Environment,
		"formatter":   config.Formatter.Name,
		"configFile":  v.ConfigFileUsed(),
	})
	return &config, nil
}

// setDefaults registers every key so that environment overrides apply even
// when the config file does not mention the key
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8737)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.development", false)
	v.SetDefault("formatter.name", "external")
	v.SetDefault("formatter.executable", "")
	v.SetDefault("formatter.workDir", "")
	v.SetDefault("formatter.args.file", "")
	v.SetDefault("formatter.args.files", "")
	v.SetDefault("formatter.args.directory", "")
	v.SetDefault("formatter.args.directoryRecursive", "")
	v.SetDefault("formatter.extensions", []string{})
	v.SetDefault("formatter.timeout", "60s")
	v.SetDefault("formatter.staged", true)
	v.SetDefault("tempfile.baseDir", filepath.Join(os.TempDir(), "extfmt"))
	v.SetDefault("tempfile.permissions", 0o755)
	v.SetDefault("watch.dirs", []string{})
	v.SetDefault("watch.debounce", "500ms")
	v.SetDefault("watch.recursive", true)
}

func validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return apperrors.NewValidationError("server.port", "invalid server port")
	}

	if _, err := zapcore.ParseLevel(string(config.Logging.Level)); err != nil {
		return apperrors.NewValidationError("logging.level", err.Error())
	}

	f := config.Formatter
	if strings.TrimSpace(f.Executable) == "" {
		return apperrors.NewValidationError("formatter.executable", apperrors.ErrMsgExecutableNeeded)
	}
	if f.Args.File == "" && f.Args.Files == "" && f.Args.Directory == "" && f.Args.DirectoryRecursive == "" {
		return apperrors.NewValidationError("formatter.args", apperrors.ErrMsgNoOperations)
	}
	if f.Timeout < 0 {
		return apperrors.NewValidationError("formatter.timeout", "timeout must not be negative")
	}
	if config.Watch.Debounce < 0 {
		return apperrors.NewValidationError("watch.debounce", "debounce must not be negative")
	}

	return nil
}

// resolvePaths converts relative paths to absolute paths based on basePath
func resolvePaths(config *Config, basePath string) error {
	var err error
	if config.TempFile.BaseDir, err = absolute(basePath, config.TempFile.BaseDir); err != nil {
		return fmt.Errorf("failed to resolve temp directory path: %w", err)
	}
	if config.Formatter.WorkDir, err = absolute(basePath, config.Formatter.WorkDir); err != nil {
		return fmt.Errorf("failed to resolve formatter work directory: %w", err)
	}
	for i, dir := range config.Watch.Dirs {
		if config.Watch.Dirs[i], err = absolute(basePath, dir); err != nil {
			return fmt.Errorf("failed to resolve watch directory: %w", err)
		}
	}
	return nil
}

func absolute(basePath, path string) (string, error) {
	if path == "" || filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(filepath.Join(basePath, path))
}
