package cmd

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "eto", configBaseName)
	assert.Equal(t, "eto.yaml", configFileName)
	assert.Equal(t, ".", configFolderPath)
	assert.Equal(t, "scan.workers", scanWorkersKey)
	assert.Equal(t, "package.compression", packageCompressionKey)
	assert.Equal(t, "package.pattern", packagePatternKey)
	assert.Equal(t, "apply.poll_interval", applyPollIntervalKey)
	assert.Equal(t, "apply.settle_delay", applySettleDelayKey)
	assert.Equal(t, "./*.etopack", defaultPackagePattern)
	assert.Equal(t, "eto.log", defaultLogFilename)
	assert.Equal(t, "ETO", envPrefix)
}

func TestConfigVersionConstants(t *testing.T) {
	assert.Equal(t, "version", configVersionKey)
	assert.Equal(t, 1, currentConfigVersion)
}

func TestWorkflowOptions_Defaults(t *testing.T) {
	options := workflowOptions()
	assert.Equal(t, 1, options.ScanWorkers)
	assert.Equal(t, -1, options.CompressionLevel)
	assert.Equal(t, time.Second, options.SettleDelay)
	assert.Equal(t, 250*time.Millisecond, viper.GetDuration(applyPollIntervalKey))
}

func TestWorkflowOptions_FromEnv(t *testing.T) {
	t.Setenv("ETO_SCAN_WORKERS", "4")
	t.Setenv("ETO_APPLY_SETTLE_DELAY", "50ms")

	options := workflowOptions()
	assert.Equal(t, 4, options.ScanWorkers)
	assert.Equal(t, 50*time.Millisecond, options.SettleDelay)
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		value string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"loud", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.value, slog.LevelInfo))
		})
	}
}

func TestConfigureLogger_WritesFileAndConsole(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	logPath := filepath.Join(t.TempDir(), "eto.log")
	console := &bytes.Buffer{}

	logger := configureLogger(console, logPath, false)
	logger.Info("package applied", "written", 2)
	logger.Debug("hidden at info level")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package applied")
	assert.NotContains(t, string(data), "hidden at info level")
	assert.Contains(t, console.String(), "written=2")
}

func TestConfigureLogger_VerboseLogsDebug(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	console := &bytes.Buffer{}

	logger := configureLogger(console, filepath.Join(t.TempDir(), "eto.log"), true)
	logger.Debug("scanning")

	assert.Contains(t, console.String(), "scanning")
}

func TestReadConfig(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		v := viper.New()
		v.SetConfigFile(filepath.Join(t.TempDir(), configFileName))

		assert.NoError(t, readConfig(v))
	})

	t.Run("valid file is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), configFileName)
		require.NoError(t, os.WriteFile(path, []byte("scan:\n  workers: 6\n"), 0o644))

		v := viper.New()
		v.SetConfigFile(path)

		require.NoError(t, readConfig(v))
		assert.Equal(t, 6, v.GetInt(scanWorkersKey))
	})

	t.Run("malformed file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), configFileName)
		require.NoError(t, os.WriteFile(path, []byte("scan: [workers\n"), 0o644))

		v := viper.New()
		v.SetConfigFile(path)

		err := readConfig(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestRootCmd_ReportsConfigError(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	originalErr := configErr
	configErr = errors.New("failed to read config eto.yaml: yaml: line 1: did not find expected ',' or ']'")
	t.Cleanup(func() { configErr = originalErr })

	_, err := execute(t, nil, newVersionCmd(), "version")
	require.Error(t, err)
	assert.Equal(t, configErr, err)
}
