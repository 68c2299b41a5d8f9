// Package logger provides logging facilities for the gittrack application.
//
// It defines the Logger interface used throughout the codebase and a
// default implementation built on log/slog. Structured records (one per
// significant transition: scan results, commits, push attempts, conflict
// and backup events) are appended to a log file, while user-facing
// messages go to the terminal through a tint handler that disables colors
// when stdout is not a TTY.
//
// The interface deliberately separates two audiences:
//
//   - Info, Warning, Error, Event: operational records for the log file
//   - InfoToUser, WarningToUser, Success, StatusMessage: terminal output
//
// The "gittrack logs" view reads the trailing lines of the structured
// file via Tail.
package logger
