// Package gittrack keeps a working tree continuously committed and pushed.
//
// gittrack watches a configured set of files or glob patterns, commits
// changes on an interval, and pushes them to a remote. Its settings,
// including the remote URL and an optional hosting-API token, live in an
// encrypted store inside the repository so nothing sensitive is kept in
// plain text. When a push is rejected because the remote has diverged,
// the daemon pauses and a guided per-file conflict resolution takes over
// until the tree is clean again.
//
// # Quick Start
//
//	# Initialize the repository and settings
//	gittrack init --remote https://github.com/you/notes.git
//
//	# Choose what to track
//	gittrack track '*.md' notes.txt
//
//	# Run the auto-commit loop
//	gittrack set --daemon=true
//	gittrack daemon
//
// # Module Structure
//
//   - cmd/gittrack: command-line interface
//   - internal/config: encrypted settings store and key handling
//   - internal/scan: tracked-pattern expansion and change detection
//   - internal/daemon: the periodic commit/push cycle
//   - internal/git: git command execution and failure classification
//   - internal/conflict: per-file resolution of diverged histories
//   - internal/backup: snapshots of the settings store and its key
//   - internal/hub: remote repository creation
//   - internal/lock: single daemon instance per repository
//   - internal/logger: file and console logging
//   - internal/errors: sentinel errors and structured error types
//
// # Implementation Notes
//
// gittrack drives the command-line git executable rather than a Go git
// library, so it works with whatever git configuration the repository
// already has. Commands run through an abstracted executor that tests
// replace with a scripted one.
//
// Losing the encryption key makes the stored settings permanently
// unreadable. That is deliberate; 'gittrack backup create' snapshots
// the settings together with the key that opens them.
package gittrack
