package lock

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"gittrack/internal/errors"
)

// Locker enforces one daemon per repository. The lock file lives inside
// the repository's data directory, so locks for different repositories
// never collide, and it records the holder's PID for diagnostics.
type Locker struct {
	lockPath string
	flock    *flock.Flock
	pid      int
	acquired bool
}

// New creates a Locker for the given lock file path.
func New(lockPath string) *Locker {
	return &Locker{
		lockPath: lockPath,
		flock:    flock.New(lockPath),
		pid:      os.Getpid(),
	}
}

// Acquire takes the lock without blocking. If another live process
// holds it, the error wraps ErrAlreadyRunning and names the holder's
// PID. A lock file left behind by a dead process does not block
// acquisition: the OS releases its flock when the holder exits.
func (l *Locker) Acquire() error {
	locked, err := l.flock.TryLock()
	if err != nil {
		return errors.NewLockError(l.lockPath, 0,
			errors.Wrap(errors.ErrLockAcquisitionFailure, err.Error()))
	}
	if !locked {
		pid := l.holderPID()
		return errors.NewLockError(l.lockPath, pid,
			errors.Wrapf(errors.ErrAlreadyRunning,
				"another instance holds the lock (pid %d)", pid))
	}

	if err := l.writePID(); err != nil {
		_ = l.flock.Unlock()
		return errors.NewLockError(l.lockPath, 0, err)
	}

	l.acquired = true
	return nil
}

// Release drops the lock and removes the lock file. Safe to call when
// the lock was never acquired.
func (l *Locker) Release() error {
	if !l.acquired {
		return nil
	}
	l.acquired = false

	if err := l.flock.Unlock(); err != nil {
		return errors.NewLockError(l.lockPath, l.pid,
			errors.Wrap(err, "releasing lock"))
	}
	// Best effort: a leftover file without a flock holder is harmless.
	_ = os.Remove(l.lockPath)
	return nil
}

// Acquired reports whether this Locker currently holds the lock.
func (l *Locker) Acquired() bool {
	return l.acquired
}

// writePID records the holder's PID in the lock file body.
func (l *Locker) writePID() error {
	return os.WriteFile(l.lockPath, []byte(fmt.Sprintf("%d\n", l.pid)), 0o644)
}

// holderPID reads the PID recorded by the current holder, or 0 when it
// cannot be determined.
func (l *Locker) holderPID() int {
	data, err := os.ReadFile(l.lockPath)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
