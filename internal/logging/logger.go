// Package logging provides structured logging with file output support.
// It is configured through environment variables so the TUI can log to a
// file instead of the terminal it draws on.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// LoggerCloser wraps a logger and provides a Close method for cleanup
type LoggerCloser struct {
	*log.Logger
	closer io.Closer
	path   string
}

// Close closes the underlying writer if it's closeable
func (lc *LoggerCloser) Close() error {
	if lc.closer != nil {
		return lc.closer.Close()
	}
	return nil
}

// Path returns the log file path, or "" when logging to a stream.
func (lc *LoggerCloser) Path() string {
	return lc.path
}

// NewLoggerWithWriter creates a new logger with the provided writer
func NewLoggerWithWriter(w io.Writer) *LoggerCloser {
	lg := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Level:           levelFromEnv(),
	})

	prefix := os.Getenv("OBJBROWSE_LOG_PREFIX")
	if prefix == "" {
		prefix = "objbrowse "
	}

	var closer io.Closer
	if c, ok := w.(io.Closer); ok && w != os.Stderr && w != os.Stdout {
		closer = c
	}

	return &LoggerCloser{
		Logger: lg.WithPrefix(prefix),
		closer: closer,
	}
}

func levelFromEnv() log.Level {
	switch os.Getenv("OBJBROWSE_LOG_LEVEL") {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// LogFilePattern matches the files written when OBJBROWSE_LOG_TO_FILE is set.
const LogFilePattern = "objbrowse-*-debug.log"

// NewLogger creates a new logger based on environment variables
// OBJBROWSE_LOG_LEVEL: debug, info, warn, error (default: info)
// OBJBROWSE_LOG_PREFIX: prefix for log messages (default: "objbrowse ")
// OBJBROWSE_LOG_TO_FILE: when set to "1", logs to a timestamped file instead of stderr
// OBJBROWSE_LOG_DIR: directory for log files (default: current directory)
func NewLogger() *LoggerCloser {
	if os.Getenv("OBJBROWSE_LOG_TO_FILE") != "1" {
		return NewLoggerWithWriter(os.Stderr)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(os.Getenv("OBJBROWSE_LOG_DIR"), fmt.Sprintf("objbrowse-%s-debug.log", timestamp))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		// If file creation fails, fall back to stderr
		return NewLoggerWithWriter(os.Stderr)
	}
	lc := NewLoggerWithWriter(f)
	lc.path = path
	return lc
}

// LatestLogFile returns the most recent log file in dir.
func LatestLogFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, LogFilePattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no log files matching %s in %s", LogFilePattern, dir)
	}
	// Timestamps in the names sort chronologically.
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// IsDebug returns true if debug logging is enabled
func IsDebug() bool {
	return os.Getenv("OBJBROWSE_LOG_LEVEL") == "debug"
}
