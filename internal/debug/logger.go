// Package debug provides the structured logger shared by sequel-go packages, built on log/slog.
package debug

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// disabledLevel sits above every level slog emits
const disabledLevel = slog.LevelError + 1

var (
	logger  *slog.Logger
	enabled bool
	out     io.Writer = os.Stderr
	mu      sync.RWMutex
)

func init() {
	Init(os.Getenv("SEQUEL_DEBUG") != "")
}

// Init turns debug logging on or off.
// When enabled, records at Debug level and above are written to the configured output.
func Init(enable bool) {
	mu.Lock()
	defer mu.Unlock()

	enabled = enable
	logger = newLogger(out, enable)
}

// SetOutput redirects log output, keeping the current enabled state
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	out = w
	logger = newLogger(out, enabled)
}

func newLogger(w io.Writer, enable bool) *slog.Logger {
	level := disabledLevel
	if enable {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Enabled returns whether debug logging is enabled
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	return current()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
