package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/extender/config"
	"github.com/grovetools/extender/pkg/paths"
	"github.com/grovetools/extender/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// Loggers are cached per component so repeated calls share one instance.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	var logCfg Config
	if cfg, err := config.LoadDefault(); err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	entry := newLogger(component, logCfg)
	loggers[component] = entry
	return entry
}

// newLogger builds a logger from an explicit configuration.
func newLogger(component string, logCfg Config) *logrus.Entry {
	logger := logrus.New()

	// Configure Level
	levelStr := "info"
	if env := os.Getenv("EXTENDER_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("EXTENDER_LOG_CALLER") == "true" || logCfg.ReportCaller {
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

	// File sink is opt-in.
	if logCfg.File.Enabled {
		logFilePath := ""
		if logCfg.File.Path != "" {
			expanded, err := pathutil.Expand(logCfg.File.Path)
			if err != nil {
				logger.Warnf("Invalid log file path %s: %v", logCfg.File.Path, err)
			} else {
				logFilePath = expanded
			}
		} else if paths.LogDir() != "" {
			logFilePath = filepath.Join(paths.LogDir(),
				fmt.Sprintf("%s-%s.log", component, time.Now().Format("2006-01-02")))
		}
		if logFilePath != "" {
			if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
				logger.Warnf("Failed to create log directory %s: %v", filepath.Dir(logFilePath), err)
			} else if file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err != nil {
				logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
			} else {
				writers = append(writers, file)
			}
		}
	}

	if shouldLogToStderr(logCfg, logger.GetLevel()) {
		writers = append(writers, GetGlobalOutput())
	}

	switch len(writers) {
	case 0:
		// Interactive terminals get no structured logs unless debugging.
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}

// shouldLogToStderr decides whether structured logs go to the global writer.
func shouldLogToStderr(logCfg Config, level logrus.Level) bool {
	mode := logCfg.Format.StructuredToStderr
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		isDebug := os.Getenv("EXTENDER_DEBUG") == "1" || level >= logrus.DebugLevel
		isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		return isDebug || !isInteractive
	}
}
