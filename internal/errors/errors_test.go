package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrap(t *testing.T) {
	originalErr := New("original error")
	wrappedErr := Wrap(originalErr, "wrapped message")

	if !Is(wrappedErr, originalErr) {
		t.Errorf("Expected wrapped error to match original, but it didn't")
	}

	expectedMsg := "wrapped message: original error"
	if wrappedErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, wrappedErr.Error())
	}
}

func TestWrapf(t *testing.T) {
	originalErr := New("original error")
	wrappedErr := Wrapf(originalErr, "wrapped message with %s", "format")

	if !Is(wrappedErr, originalErr) {
		t.Errorf("Expected wrapped error to match original, but it didn't")
	}

	expectedMsg := "wrapped message with format: original error"
	if wrappedErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, wrappedErr.Error())
	}
}

func TestGitError(t *testing.T) {
	err := errors.New("command failed")
	gitErr := NewGitError("push", []string{"origin", "main"}, err, "Permission denied")

	expectedMsg := "git push failed: Permission denied: command failed"
	if gitErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, gitErr.Error())
	}

	if !errors.Is(gitErr, err) {
		t.Errorf("Expected GitError.Unwrap() to return the original error")
	}
}

func TestLockError(t *testing.T) {
	err := errors.New("file not found")
	lockErr := NewLockError("/tmp/lock.file", 1234, err)

	expectedMsg := "lock error with file /tmp/lock.file (PID: 1234): file not found"
	if lockErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, lockErr.Error())
	}

	// Test with zero PID
	lockErr = NewLockError("/tmp/lock.file", 0, err)
	expectedMsg = "lock error with file /tmp/lock.file: file not found"
	if lockErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, lockErr.Error())
	}

	if !errors.Is(lockErr, err) {
		t.Errorf("Expected LockError.Unwrap() to return the original error")
	}
}

func TestConfigError(t *testing.T) {
	err := errors.New("invalid value")
	configErr := NewConfigError("commitInterval", 0, err)

	expectedMsg := "configuration error for commitInterval = 0: invalid value"
	if configErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, configErr.Error())
	}

	configErr = NewConfigError("remoteUrl", nil, err)
	expectedMsg = "configuration error for remoteUrl: invalid value"
	if configErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, configErr.Error())
	}

	if !errors.Is(configErr, err) {
		t.Errorf("Expected ConfigError.Unwrap() to return the original error")
	}
}

func TestBackupError(t *testing.T) {
	err := errors.New("copy failed")
	backupErr := NewBackupError("20240101-120000", "/data/backups", err)

	expectedMsg := "backup 20240101-120000 failed at /data/backups: copy failed"
	if backupErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, backupErr.Error())
	}

	backupErr = NewBackupError("", "/data/backups", err)
	expectedMsg = "backup failed at /data/backups: copy failed"
	if backupErr.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, backupErr.Error())
	}

	if !errors.Is(backupErr, err) {
		t.Errorf("Expected BackupError.Unwrap() to return the original error")
	}
}

func TestErrorMatching(t *testing.T) {
	gitErr := NewGitError("status", nil, ErrNotGitRepository, "")

	if !Is(gitErr, ErrNotGitRepository) {
		t.Errorf("Expected gitErr to match ErrNotGitRepository")
	}

	var ge *GitError
	if !As(gitErr, &ge) {
		t.Errorf("Expected gitErr to match GitError type")
	}

	wrappedErr := Wrap(gitErr, "operation failed")

	if !Is(wrappedErr, ErrNotGitRepository) {
		t.Errorf("Expected wrappedErr to match ErrNotGitRepository")
	}

	if !As(wrappedErr, &ge) {
		t.Errorf("Expected wrappedErr to match GitError type")
	}
}

func TestDivergenceDistinctFromGenericFailure(t *testing.T) {
	divergence := NewGitError("push", []string{"origin", "main"}, ErrDivergence, "! [rejected]")
	generic := NewGitError("push", []string{"origin", "main"}, ErrGitOperationFailed, "could not resolve host")

	if !Is(divergence, ErrDivergence) {
		t.Errorf("Expected divergence error to match ErrDivergence")
	}
	if Is(generic, ErrDivergence) {
		t.Errorf("Expected generic push failure not to match ErrDivergence")
	}
}

func TestErrorCases(t *testing.T) {
	t.Run("New creates errors", func(t *testing.T) {
		err := New("custom error")
		if err.Error() != "custom error" {
			t.Errorf("Expected error message 'custom error', got %s", err.Error())
		}
	})

	t.Run("Errorf formats errors", func(t *testing.T) {
		err := Errorf("formatted error: %d", 42)
		expected := "formatted error: 42"
		if err.Error() != expected {
			t.Errorf("Expected error message %q, got %q", expected, err.Error())
		}
	})
}

func ExampleWrap() {
	err := fmt.Errorf("original error")

	wrapped := Wrap(err, "context information")

	fmt.Println(wrapped)
	// Output: context information: original error
}

func ExampleNewGitError() {
	err := NewGitError("push", []string{"origin", "main"}, fmt.Errorf("connection failed"), "")

	fmt.Println(err)
	// Output: git push failed: connection failed
}

func ExampleNewBackupError() {
	err := NewBackupError("20240101-120000", "/data/backups", fmt.Errorf("disk full"))

	fmt.Println(err)
	// Output: backup 20240101-120000 failed at /data/backups: disk full
}
