package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"eto.dev/pkg/eto/internal/adapter"
	"eto.dev/pkg/eto/internal/domain"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "eto"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	logFileFlagName = "log-file"
	verboseFlagName = "verbose"
	formatFlagName  = "format"
	packageFlagName = "package"

	scanWorkersKey        = "scan.workers"
	packageCompressionKey = "package.compression"
	packagePatternKey     = "package.pattern"
	applyPollIntervalKey  = "apply.poll_interval"
	applySettleDelayKey   = "apply.settle_delay"

	defaultScanWorkers        = 1
	defaultPackageCompression = gzip.DefaultCompression
	defaultPackagePattern     = "./*" + domain.PackageExtension
	defaultApplyPollInterval  = adapter.DefaultPollInterval
	defaultApplySettleDelay   = domain.DefaultSettleDelay

	envPrefix = "ETO"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logConsoleKey    = "log.console"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = domain.LogFileName
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogConsole    = true
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

// configErr holds the config file failure, reported once a command runs.
var configErr error

func init() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault(configVersionKey, currentConfigVersion)
	viper.SetDefault(scanWorkersKey, defaultScanWorkers)
	viper.SetDefault(packageCompressionKey, defaultPackageCompression)
	viper.SetDefault(packagePatternKey, defaultPackagePattern)
	viper.SetDefault(applyPollIntervalKey, defaultApplyPollInterval)
	viper.SetDefault(applySettleDelayKey, defaultApplySettleDelay)

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logConsoleKey, defaultLogConsole)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)

	configErr = readConfig(viper.GetViper())
}

// readConfig loads the config file into v. A missing file is not an error.
func readConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("failed to read config %s: %w", v.ConfigFileUsed(), err)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	// Allow numeric slog levels as well (e.g. -4 for debug).
	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger configures the global slog logger.
//
// By default it logs at Info; if verbose is true it logs at Debug. When
// log.console is set, records are mirrored to console as well as the file.
func configureLogger(console io.Writer, logPath string, verbose bool) *slog.Logger {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	var logWriter io.Writer = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	if console != nil && viper.GetBool(logConsoleKey) {
		logWriter = io.MultiWriter(logWriter, console)
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: verbose,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	return globalLogger
}

// workflowOptions reads the engine tuning keys.
func workflowOptions() domain.Options {
	return domain.Options{
		ScanWorkers:      viper.GetInt(scanWorkersKey),
		CompressionLevel: viper.GetInt(packageCompressionKey),
		SettleDelay:      viper.GetDuration(applySettleDelayKey),
	}
}

func globalLoggerOrDefault() *slog.Logger {
	if globalLogger != nil {
		return globalLogger
	}

	return slog.Default()
}
