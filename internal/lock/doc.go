// Package lock provides single-instance enforcement for the daemon.
//
// It wraps an advisory file lock held for the lifetime of the process.
// Because the OS drops the flock when its holder dies, a stale lock
// file never needs manual cleanup; the recorded PID exists only so the
// refusal message can name the running instance.
package lock
