package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Logger defines the common logging interface used throughout the application.
// It separates internal (debug) logging from user-facing messages: the former
// goes to the structured log file, the latter to the terminal.
type Logger interface {
	// Info logs an informational message for debugging purposes.
	// The format string follows fmt.Printf style formatting.
	Info(format string, args ...interface{})

	// Warning logs a warning message for debugging purposes.
	Warning(format string, args ...interface{})

	// Error logs an error message for operational failures.
	Error(format string, args ...interface{})

	// Event emits one structured log record for a significant state
	// transition (scan result, commit, push attempt, conflict, backup).
	// attrs are slog key/value pairs.
	Event(name string, attrs ...any)

	// InfoToUser logs an informational message intended for users.
	// Always shown regardless of verbosity, and mirrored to the log file.
	InfoToUser(format string, args ...interface{})

	// WarningToUser logs a warning message intended for users.
	WarningToUser(format string, args ...interface{})

	// Success logs a success message to the user.
	Success(format string, args ...interface{})

	// StatusMessage prints a status line to the user without structuring.
	StatusMessage(format string, args ...interface{})

	// Close flushes and closes any open log file handles.
	Close() error
}

// DefaultLogger implements Logger on top of log/slog. Structured records go
// to an append-only log file; user-facing lines go to the terminal through
// a tint handler with colors disabled when stdout is not a TTY.
type DefaultLogger struct {
	mu      sync.Mutex
	file    *slog.Logger
	console *slog.Logger
	enabled bool
	logFile string
	verbose bool
	stdout  io.Writer
	stderr  io.Writer
	handle  *os.File
}

// New creates a new Logger instance writing user output to os.Stdout/os.Stderr.
func New(enabled bool, logFile string, verbose bool) Logger {
	return NewWithOutput(enabled, logFile, verbose, os.Stdout, os.Stderr)
}

// NewWithOutput creates a DefaultLogger with custom output writers.
func NewWithOutput(enabled bool, logFile string, verbose bool, stdout, stderr io.Writer) *DefaultLogger {
	var fileLogger *slog.Logger
	var handle *os.File

	if enabled {
		logDir := filepath.Dir(logFile)
		if logDir != "." {
			if err := os.MkdirAll(logDir, 0o755); err != nil {
				_, _ = fmt.Fprintf(stderr, "failed to create log directory: %v\n", err)
			}
		}

		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			handle = f
			fileLogger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			fileLogger.Info("gittrack logging started")
		} else {
			fileLogger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			_, _ = fmt.Fprintf(stderr, "failed to open log file: %v, using stderr instead\n", err)
		}
	}

	noColor := true
	if f, ok := stdout.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	console := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}))

	return &DefaultLogger{
		file:    fileLogger,
		console: console,
		enabled: enabled,
		logFile: logFile,
		verbose: verbose,
		stdout:  stdout,
		stderr:  stderr,
		handle:  handle,
	}
}

// Info logs an informational message (file only).
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	l.file.Info(fmt.Sprintf(format, args...))
}

// Warning logs a warning message. Shown to the user only in verbose mode.
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.file.Warn(msg)
	}
	if l.verbose {
		l.console.Warn(msg)
	}
}

// Error logs an error message. Always shown to the user.
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.file.Error(msg)
	}
	l.console.Error(msg)
}

// Event emits one structured record per significant transition.
func (l *DefaultLogger) Event(name string, attrs ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.enabled {
		l.file.Info(name, attrs...)
	}
	if l.verbose {
		l.console.Info(name, attrs...)
	}
}

// InfoToUser logs an informational message to both file and stdout.
func (l *DefaultLogger) InfoToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.file.Info(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "%s\n", msg)
}

// WarningToUser logs a warning message to both file and stdout.
func (l *DefaultLogger) WarningToUser(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.file.Warn(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "warning: %s\n", msg)
}

// Success logs a success message to both file and stdout.
func (l *DefaultLogger) Success(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	if l.enabled {
		l.file.Info(msg)
	}
	_, _ = fmt.Fprintf(l.stdout, "ok: %s\n", msg)
}

// StatusMessage prints a status message to stdout only (no logging).
func (l *DefaultLogger) StatusMessage(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintf(l.stdout, format+"\n", args...)
}

// LogFile returns the path of the structured log file, or "" when file
// logging is disabled. The logs view tails this file.
func (l *DefaultLogger) LogFile() string {
	if !l.enabled {
		return ""
	}
	return l.logFile
}

// Close ensures any buffered data is written and closes open log file handles.
func (l *DefaultLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.handle != nil {
		if err := l.handle.Sync(); err != nil {
			return err
		}
		return l.handle.Close()
	}
	return nil
}

// SetStdout sets a custom writer for user-facing stdout messages only.
// Primarily intended for testing.
func (l *DefaultLogger) SetStdout(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stdout = w
}

// SetStderr sets a custom writer for user-facing stderr messages only.
// Primarily intended for testing.
func (l *DefaultLogger) SetStderr(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stderr = w
}
