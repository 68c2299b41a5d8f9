// Package git wraps the git command-line tool for repository operations.
//
// All commands run through a CommandExecutor so tests can substitute a
// scripted implementation. Push and pull failures are classified: a
// rejection caused by diverged histories surfaces as ErrDivergence and
// is never retried blindly, while network and authentication failures
// stay generic and retryable.
package git
