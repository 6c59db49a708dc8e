// Package logging provides pre-configured component loggers for the
// fsevents module. Every component (stream, watcher, serve, ...) gets a
// logrus entry tagged with its name so log lines from the native callback
// path can be told apart from application logs.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger creates and returns a pre-configured logger for a specific
// component. It uses a singleton pattern per component to avoid
// re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	// Configure Level
	levelStr := "info"
	if env := os.Getenv("FSEVENTS_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("FSEVENTS_LOG_CALLER") == "true" {
		logger.SetReportCaller(true)
	}

	// Configure Formatter
	switch os.Getenv("FSEVENTS_LOG_FORMAT") {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{DisableTimestamp: true, DisableComponent: true})
	default:
		logger.SetFormatter(&TextFormatter{})
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// SetLevel overrides the level of an already-created component logger.
// Used by the CLI to honor --verbose after flag parsing.
func SetLevel(component string, level logrus.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if entry, exists := loggers[component]; exists {
		entry.Logger.SetLevel(level)
	}
}
