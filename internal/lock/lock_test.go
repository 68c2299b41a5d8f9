package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gittrack/internal/errors"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.lock")
	l := New(path)

	require.NoError(t, l.Acquire())
	assert.True(t, l.Acquired())
	assert.FileExists(t, path)

	require.NoError(t, l.Release())
	assert.False(t, l.Acquired())
	assert.NoFileExists(t, path)
}

func TestLockFileRecordsPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.lock")
	l := New(path)

	require.NoError(t, l.Acquire())
	defer func() { _ = l.Release() }()

	assert.Equal(t, os.Getpid(), l.holderPID())
}

func TestSecondLockerIsRefused(t *testing.T) {
	// Each Locker opens its own descriptor, so two Lockers contend even
	// within one process.
	path := filepath.Join(t.TempDir(), "daemon.lock")
	first := New(path)
	require.NoError(t, first.Acquire())
	defer func() { _ = first.Release() }()

	second := New(path)
	err := second.Acquire()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAlreadyRunning))
	assert.False(t, second.Acquired())

	var lockErr *errors.LockError
	require.True(t, errors.As(err, &lockErr))
	assert.Equal(t, os.Getpid(), lockErr.PID)
}

func TestReleaseWithoutAcquireIsSafe(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "daemon.lock"))
	assert.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}

func TestStaleLockFileDoesNotBlock(t *testing.T) {
	// A lock file with no living flock holder, e.g. after a power loss,
	// must not prevent acquisition.
	path := filepath.Join(t.TempDir(), "daemon.lock")
	require.NoError(t, os.WriteFile(path, []byte("999999\n"), 0o644))

	l := New(path)
	require.NoError(t, l.Acquire())
	assert.True(t, l.Acquired())
	require.NoError(t, l.Release())
}

func TestReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.lock")
	first := New(path)
	require.NoError(t, first.Acquire())
	require.NoError(t, first.Release())

	second := New(path)
	require.NoError(t, second.Acquire())
	require.NoError(t, second.Release())
}
