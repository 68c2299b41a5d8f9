// Package daemon implements the periodic auto-commit cycle.
//
// Each tick moves through Scanning, Committing and Pushing and returns
// to Idle. A push rejected because the remote diverged parks the daemon
// in ConflictPending, where ticks are inert until the conflict package
// finalizes a resolution and ClearConflict is called. Transient push
// failures are retried a bounded number of times with growing delays,
// then deferred to the next tick; a failed cycle never stops the loop.
package daemon
