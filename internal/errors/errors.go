package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors that can be used with errors.Is() for error type checking
var (
	// ErrNotGitRepository indicates the target path is not a git repository
	ErrNotGitRepository = errors.New("not a git repository")

	// ErrGitOperationFailed indicates a git command returned an error
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrDivergence indicates a push or pull was rejected because local and
	// remote histories contain incompatible changes
	ErrDivergence = errors.New("local and remote histories have diverged")

	// ErrNotInitialized indicates no configuration file exists yet
	ErrNotInitialized = errors.New("configuration not initialized")

	// ErrDecryptionFailed indicates the config blob could not be decrypted
	// with the active key (missing or mismatched key material)
	ErrDecryptionFailed = errors.New("failed to decrypt configuration")

	// ErrEncryptionFailed indicates the config could not be sealed because
	// the key is unavailable or the cipher failed
	ErrEncryptionFailed = errors.New("failed to encrypt configuration")

	// ErrCorruptConfig indicates the decrypted payload is not well-formed
	ErrCorruptConfig = errors.New("configuration payload is corrupt")

	// ErrInvalidConfiguration indicates an invalid or conflicting user configuration
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNoConflicts indicates conflict detection ran against a clean repository
	ErrNoConflicts = errors.New("no conflicted paths found")

	// ErrUnknownPath indicates a resolution was requested for a path that is
	// not part of the current conflict record
	ErrUnknownPath = errors.New("path is not part of the conflict record")

	// ErrStillUnresolved indicates finalize was called while paths remain unresolved
	ErrStillUnresolved = errors.New("conflict record still has unresolved paths")

	// ErrNothingToBackup indicates a backup was requested before any config exists
	ErrNothingToBackup = errors.New("no configuration to back up")

	// ErrBackupNotFound indicates the requested backup snapshot does not exist
	ErrBackupNotFound = errors.New("backup not found")

	// ErrLockAcquisitionFailure indicates a lock file could not be acquired
	ErrLockAcquisitionFailure = errors.New("failed to acquire lock")

	// ErrAlreadyRunning indicates another gittrack instance is running for this directory
	ErrAlreadyRunning = errors.New("another gittrack instance is already running for this repository")
)

// New creates a new error with the given message.
// This is a convenience function that wraps errors.New.
func New(message string) error {
	return errors.New(message)
}

// Errorf creates a new formatted error.
// This is a convenience function that wraps fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Wrap wraps an error with a message for better context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted message for better context.
func Wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether target is in err's chain.
// This is a convenience function that wraps errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience function that wraps errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join wraps errors.Join from the standard library.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// GitError represents an error that occurred during a Git operation.
// It captures the command details, underlying error, and command output.
type GitError struct {
	Operation string
	Args      []string
	Err       error
	Output    string
}

// Error implements the error interface with a detailed, user-friendly error message.
func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() error {
	return e.Err
}

// NewGitError creates a new GitError with the given parameters.
func NewGitError(operation string, args []string, err error, output string) *GitError {
	return &GitError{
		Operation: operation,
		Args:      args,
		Err:       err,
		Output:    output,
	}
}

// ConfigError represents an error in the persisted tracking configuration.
// It includes the parameter name, its value if available, and the underlying error.
type ConfigError struct {
	Parameter string
	Value     interface{}
	Err       error
}

// Error implements the error interface with details about the invalid configuration.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("configuration error for %s = %v: %v", e.Parameter, e.Value, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError with the given parameters.
func NewConfigError(parameter string, value interface{}, err error) *ConfigError {
	return &ConfigError{
		Parameter: parameter,
		Value:     value,
		Err:       err,
	}
}

// LockError represents an error that occurred when interacting with the
// single-instance lock. It includes the lock file path, process ID if
// available, and underlying error.
type LockError struct {
	LockFile string
	PID      int
	Err      error
}

// Error implements the error interface with details about the lock file and process.
func (e *LockError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("lock error with file %s (PID: %d): %v", e.LockFile, e.PID, e.Err)
	}
	return fmt.Sprintf("lock error with file %s: %v", e.LockFile, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *LockError) Unwrap() error {
	return e.Err
}

// NewLockError creates a new LockError with the given parameters.
func NewLockError(lockFile string, pid int, err error) *LockError {
	return &LockError{
		LockFile: lockFile,
		PID:      pid,
		Err:      err,
	}
}

// BackupError represents a failure while snapshotting or restoring the
// encrypted configuration artifacts.
type BackupError struct {
	ID   string
	Path string
	Err  error
}

// Error implements the error interface with details about the affected snapshot.
func (e *BackupError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("backup %s failed at %s: %v", e.ID, e.Path, e.Err)
	}
	return fmt.Sprintf("backup failed at %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *BackupError) Unwrap() error {
	return e.Err
}

// NewBackupError creates a new BackupError with the given parameters.
func NewBackupError(id, path string, err error) *BackupError {
	return &BackupError{
		ID:   id,
		Path: path,
		Err:  err,
	}
}
