// Package debug provides debug logging utilities for uisel.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// EnvVar enables debug logging when set to any non-empty value.
const EnvVar = "UISEL_DEBUG"

var (
	// enabled controls whether debug logging is active
	enabled atomic.Bool

	// logFile is the optional file to write debug logs to
	logFile     *os.File
	logFileMu   sync.Mutex
	logFilePath string

	logger *log.Logger
)

func init() {
	if os.Getenv(EnvVar) != "" {
		Enable()
	}

	logger = log.New(os.Stderr, "", log.LstdFlags)
}

// Enable turns on debug logging.
func Enable() {
	enabled.Store(true)
}

// Disable turns off debug logging.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	return enabled.Load()
}

// SetOutput redirects all log output. Tests use it to capture lines.
func SetOutput(w io.Writer) {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	logger.SetOutput(w)
}

// SetLogFile sets an optional file to write debug logs to.
// If name is empty, logs go to stderr only.
// The file is created/appended to in the user's cache directory.
func SetLogFile(name string) error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	if name == "" {
		logger.SetOutput(os.Stderr)
		logFilePath = ""
		return nil
	}

	logDir := logDirectory()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath = filepath.Join(logDir, name)
	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	logFile = f

	// Write to both stderr and file
	logger.SetOutput(io.MultiWriter(os.Stderr, f))

	return nil
}

func logDirectory() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "uisel", "logs")
}

// GetLogFilePath returns the current log file path, or empty if not set.
func GetLogFilePath() string {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	return logFilePath
}

// Close closes the log file if open.
func Close() {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Log logs a debug message if debug mode is enabled.
// Format: [DEBUG] [component] message
func Log(component, format string, args ...interface{}) {
	if !enabled.Load() {
		return
	}

	msg := fmt.Sprintf(format, args...)
	logger.Printf("[DEBUG] [%s] %s", component, msg)
}

// Error logs an error message (always logged, regardless of debug mode).
func Error(component, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Printf("[ERROR] [%s] %s", component, msg)
}

// Warn logs a warning message (always logged, regardless of debug mode).
func Warn(component, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Printf("[WARN] [%s] %s", component, msg)
}

// Info logs an info message (always logged, regardless of debug mode).
func Info(component, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Printf("[INFO] [%s] %s", component, msg)
}

// Trace logs a detailed trace message (only when debug is enabled).
// Use for per-event logging such as pointer moves.
func Trace(component, format string, args ...interface{}) {
	if !enabled.Load() {
		return
	}

	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("15:04:05.000000")
	logger.Printf("[TRACE] [%s] [%s] %s", ts, component, msg)
}
