package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/forksync/config"
	"github.com/grovetools/forksync/pkg/paths"
)

// Environment overrides.
const (
	EnvLevel  = "FORKSYNC_LOG_LEVEL"
	EnvCaller = "FORKSYNC_LOG_CALLER"
	EnvDebug  = "FORKSYNC_DEBUG"
	// EnvFile sets the log file path; "off" disables the file sink.
	EnvFile = "FORKSYNC_LOG_FILE"
)

var (
	loggers       = make(map[string]*logrus.Entry)
	loggersMu     sync.Mutex
	levelOverride *logrus.Level
)

// NewLogger returns the logger for a component, creating it on first use.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logCfg := loadConfig()
	logger := logrus.New()

	levelStr := "info"
	if v := os.Getenv(EnvLevel); v != "" {
		levelStr = v
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	if levelOverride != nil {
		level = *levelOverride
	}
	logger.SetLevel(level)

	if os.Getenv(EnvCaller) == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer
	if path := logFilePath(component, logCfg); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				writers = append(writers, file)
			} else if logCfg.File.Enabled {
				logger.Warnf("Failed to open log file %s: %v", path, err)
			}
		}
	}

	if logToStderr(logCfg.Format.StructuredToStderr, logger.GetLevel()) {
		writers = append(writers, stderrSink)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// SetLevel changes the level of every logger, including ones created
// later. Used by --verbose.
func SetLevel(level logrus.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	levelOverride = &level
	for _, entry := range loggers {
		entry.Logger.SetLevel(level)
	}
}

// Reset drops all cached loggers and the level override.
func Reset() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	loggers = make(map[string]*logrus.Entry)
	levelOverride = nil
}

// LogFile returns where a component writes today, or "" when the file
// sink is disabled.
func LogFile(component string) string {
	return logFilePath(component, loadConfig())
}

func loadConfig() Config {
	var logCfg Config
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)
	cfg, err := config.LoadDefaultWithLogger(quiet)
	if err != nil {
		return logCfg
	}
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "forksync: failed to parse 'logging' config: %v\n", err)
	}
	return logCfg
}

func logFilePath(component string, logCfg Config) string {
	if v := os.Getenv(EnvFile); v != "" {
		if strings.EqualFold(v, "off") {
			return ""
		}
		return paths.ExpandHome(v)
	}
	if logCfg.File.Enabled && logCfg.File.Path != "" {
		return paths.ExpandHome(logCfg.File.Path)
	}
	dir := paths.LogDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.log", component, time.Now().Format("2006-01-02")))
}

// logToStderr applies the structured_to_stderr policy. In "auto" mode
// structured logs reach stderr only when debugging or when stderr is not
// a terminal.
func logToStderr(mode string, level logrus.Level) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	isDebug := os.Getenv(EnvDebug) == "1" || level >= logrus.DebugLevel
	fd := os.Stderr.Fd()
	isInteractive := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return isDebug || !isInteractive
}
