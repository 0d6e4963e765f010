// Package logging builds the per-component logrus loggers used across reqs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/reqs/config"
	"github.com/grovetools/reqs/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// Loggers are cached per component.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	var logCfg Config
	var configDir string
	if cfg, err := config.LoadDefault(); err == nil {
		configDir = filepath.Dir(cfg.Path())
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	entry := build(component, logCfg, configDir, isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	loggers[component] = entry
	return entry
}

// build assembles a logger from an explicit configuration. configDir is the
// directory holding reqs.yml; when empty no default log file is written.
func build(component string, logCfg Config, configDir string, interactive bool) *logrus.Entry {
	logger := logrus.New()

	levelStr := "info"
	if env := os.Getenv("REQS_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("REQS_LOG_CALLER") == "true" || logCfg.ReportCaller {
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

	logFilePath := ""
	if logCfg.File.Enabled && logCfg.File.Path != "" {
		logFilePath = pathutil.Expand(logCfg.File.Path)
	} else if configDir != "" {
		logFilePath = LogFile(configDir, component, time.Now())
	}

	if logFilePath != "" {
		dir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			if logCfg.File.Enabled {
				logger.Warnf("Failed to create log directory %s: %v", dir, err)
			}
		} else if file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
			writers = append(writers, file)
		} else if logCfg.File.Enabled {
			logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
		}
	}

	stderrMode := "auto"
	if logCfg.Format.StructuredToStderr != "" {
		stderrMode = logCfg.Format.StructuredToStderr
	}

	toStderr := false
	switch stderrMode {
	case "always":
		toStderr = true
	case "never":
		toStderr = false
	default:
		// Interactive terminals only see structured logs in debug mode.
		isDebug := os.Getenv("REQS_DEBUG") == "1" || logger.GetLevel() >= logrus.DebugLevel
		toStderr = isDebug || !interactive
	}
	if toStderr {
		writers = append(writers, GetGlobalOutput())
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}

// LogFile returns the default log file path for component on date, below
// the project directory holding reqs.yml.
func LogFile(configDir, component string, date time.Time) string {
	return filepath.Join(LogDir(configDir), fmt.Sprintf("%s-%s.log", component, date.Format("2006-01-02")))
}

// LogDir returns the directory holding the default log files.
func LogDir(configDir string) string {
	return filepath.Join(configDir, ".reqs", "logs")
}
