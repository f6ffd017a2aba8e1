package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/consensuslabs/extformatter/internal/errors"
	"github.com/consensuslabs/extformatter/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
environment: development
server:
  port: 9000
logging:
  level: debug
  format: json
formatter:
  name: astyle
  executable: /usr/bin/astyle
  args:
    file: "--quiet {file}"
    files: "--quiet {files}"
    directoryRecursive: "--recursive {directory}/*"
  extensions: [java, c, h]
  timeout: 30s
  staged: false
tempfile:
  baseDir: scratch
watch:
  dirs: [src]
  debounce: 250ms
`

const testConfig = `
environment: test
formatter:
  executable: cat
  args:
    file: "{file}"
`

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFile(t, dir, "config.yaml", sampleConfig)
	testhelper.WriteFile(t, dir, "config_test.yaml", testConfig)

	tests := []struct {
		name           string
		env            string
		wantEnv        string
		wantExecutable string
		wantPort       int
	}{
		{
			name:           "Test Environment",
			env:            "test",
			wantEnv:        "test",
			wantExecutable: "cat",
			wantPort:       8737,
		},
		{
			name:           "Development Environment",
			env:            "development",
			wantEnv:        "development",
			wantExecutable: "/usr/bin/astyle",
			wantPort:       9000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", tt.env)
			log := testhelper.NewTestLogger(false)

			cfg, err := NewConfigService(log).Load(dir)
			require.NoError(t, err)

			assert.Equal(t, tt.wantEnv, cfg.Environment)
			assert.Equal(t, tt.wantExecutable, cfg.Formatter.Executable)
			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.True(t, log.HasInfo("Configuration loaded successfully"))
		})
	}
}

func TestLoadConfig_Values(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFile(t, dir, "config.yaml", sampleConfig)
	t.Setenv("ENV", "development")

	cfg, err := NewConfigService(testhelper.NewTestLogger(false)).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "astyle", cfg.Formatter.Name)
	assert.Equal(t, "--quiet {file}", cfg.Formatter.Args.File)
	assert.Equal(t, "--recursive {directory}/*", cfg.Formatter.Args.DirectoryRecursive)
	assert.Empty(t, cfg.Formatter.Args.Directory)
	assert.Equal(t, []string{"java", "c", "h"}, cfg.Formatter.Extensions)
	assert.Equal(t, 30*time.Second, cfg.Formatter.Timeout)
	assert.False(t, cfg.Formatter.Staged)
	assert.Equal(t, "debug", string(cfg.Logging.Level))
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, filepath.Join(dir, "scratch"), cfg.TempFile.BaseDir)
	assert.Equal(t, []string{filepath.Join(dir, "src")}, cfg.Watch.Dirs)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.True(t, cfg.Watch.Recursive)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFile(t, dir, "config.yaml", sampleConfig)
	t.Setenv("ENV", "development")
	t.Setenv("EXTFMT_FORMATTER_EXECUTABLE", "/opt/astyle/bin/astyle")
	t.Setenv("EXTFMT_WATCH_DEBOUNCE", "2s")

	cfg, err := NewConfigService(testhelper.NewTestLogger(false)).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/opt/astyle/bin/astyle", cfg.Formatter.Executable)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadConfig_DotEnvWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFile(t, dir, ".env", "EXTFMT_FORMATTER_EXECUTABLE=gofmt\nEXTFMT_FORMATTER_ARGS_FILE=\"-w {file}\"\n")
	t.Setenv("ENV", "development")
	t.Cleanup(func() {
		// godotenv sets variables process-wide
		os.Unsetenv("EXTFMT_FORMATTER_EXECUTABLE")
		os.Unsetenv("EXTFMT_FORMATTER_ARGS_FILE")
	})

	log := testhelper.NewTestLogger(false)
	cfg, err := NewConfigService(log).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gofmt", cfg.Formatter.Executable)
	assert.Equal(t, "-w {file}", cfg.Formatter.Args.File)
	assert.True(t, cfg.Formatter.Staged)
	assert.True(t, log.HasInfo("No config file found, using defaults and environment"))
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		wantField string
	}{
		{
			name:      "missing executable",
			config:    "formatter:\n  args:\n    file: \"{file}\"\n",
			wantField: "formatter.executable",
		},
		{
			name:      "no operations",
			config:    "formatter:\n  executable: astyle\n",
			wantField: "formatter.args",
		},
		{
			name:      "bad port",
			config:    "server:\n  port: 70000\nformatter:\n  executable: astyle\n  args:\n    file: \"{file}\"\n",
			wantField: "server.port",
		},
		{
			name:      "bad log level",
			config:    "logging:\n  level: loud\nformatter:\n  executable: astyle\n  args:\n    file: \"{file}\"\n",
			wantField: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testhelper.WriteFile(t, dir, "config.yaml", tt.config)
			t.Setenv("ENV", "development")

			_, err := NewConfigService(testhelper.NewTestLogger(false)).Load(dir)
			require.Error(t, err)

			var validationErr *apperrors.ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	testhelper.WriteFile(t, dir, "config.yaml", "formatter: [unclosed\n")
	t.Setenv("ENV", "development")

	_, err := NewConfigService(testhelper.NewTestLogger(false)).Load(dir)
	assert.Error(t, err)
}
