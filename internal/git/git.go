package git

import (
	"context"
	"strings"
	"time"

	"gittrack/internal/errors"
	"gittrack/internal/logger"
)

// DefaultNetworkTimeout caps how long a single push or pull attempt may
// block. A stuck network call stalls one tick only, never the daemon.
const DefaultNetworkTimeout = 60 * time.Second

// Client drives the git binary for one repository. All methods run
// synchronously to completion; network operations apply NetworkTimeout
// on top of the caller's context.
type Client struct {
	repoPath       string
	executor       CommandExecutor
	logger         logger.Logger
	networkTimeout time.Duration
}

// NewClient creates a Client with the default exec-based executor.
func NewClient(repoPath string, log logger.Logger) *Client {
	return NewClientWithExecutor(repoPath, log, NewExecExecutor())
}

// NewClientWithExecutor creates a Client with a custom executor,
// primarily for tests.
func NewClientWithExecutor(repoPath string, log logger.Logger, executor CommandExecutor) *Client {
	return &Client{
		repoPath:       repoPath,
		executor:       executor,
		logger:         log,
		networkTimeout: DefaultNetworkTimeout,
	}
}

// SetNetworkTimeout overrides the per-attempt deadline for push and pull.
func (c *Client) SetNetworkTimeout(d time.Duration) {
	c.networkTimeout = d
}

// IsRepository checks if the given path is a git repository.
func IsRepository(path string) (bool, error) {
	return isRepository(context.Background(), path, NewExecExecutor())
}

// IsRepository reports whether the client's repo path is inside a
// git work tree.
func (c *Client) IsRepository(ctx context.Context) (bool, error) {
	return isRepository(ctx, c.repoPath, c.executor)
}

func isRepository(ctx context.Context, path string, executor CommandExecutor) (bool, error) {
	_, err := executor.ExecuteWithContextAndOutput(ctx,
		"git", "-C", path, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		var gitErr *errors.GitError
		if errors.As(err, &gitErr) && strings.Contains(gitErr.Output, "not a git repository") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Init initializes a repository with the given default branch.
func (c *Client) Init(ctx context.Context, branch string) error {
	if err := c.run(ctx, "init"); err != nil {
		return err
	}
	return c.run(ctx, "branch", "-M", branch)
}

// SetRemote points origin at url, replacing any existing origin.
func (c *Client) SetRemote(ctx context.Context, url string) error {
	if err := c.run(ctx, "remote", "add", "origin", url); err == nil {
		return nil
	}
	return c.run(ctx, "remote", "set-url", "origin", url)
}

// RemoteURL returns the configured origin URL, or "" when unset.
func (c *Client) RemoteURL(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "remote", "get-url", "origin")
	if err != nil {
		var gitErr *errors.GitError
		if errors.As(err, &gitErr) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CurrentBranch returns the name of the checked-out branch.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.output(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Status returns the porcelain status output, optionally narrowed to paths.
func (c *Client) Status(ctx context.Context, paths ...string) (string, error) {
	args := []string{"status", "--porcelain"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}
	return c.output(ctx, args...)
}

// HasChanges reports whether the given paths (or the whole tree when none
// are given) contain uncommitted changes.
func (c *Client) HasChanges(ctx context.Context, paths ...string) (bool, error) {
	out, err := c.Status(ctx, paths...)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// HasStagedChanges reports whether the index differs from HEAD, i.e.
// whether a commit would record anything.
func (c *Client) HasStagedChanges(ctx context.Context) (bool, error) {
	out, err := c.output(ctx, "diff", "--cached", "--name-only")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Add stages the given paths. An empty list stages the whole tree.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	args := []string{"add"}
	if len(paths) == 0 {
		args = append(args, ".")
	} else {
		args = append(args, "--")
		args = append(args, paths...)
	}
	return c.run(ctx, args...)
}

// Commit records staged changes with the given message.
func (c *Client) Commit(ctx context.Context, message string) error {
	return c.run(ctx, "commit", "-m", message)
}

// Push sends the branch to the remote. A rejection caused by remote
// divergence surfaces as ErrDivergence; every other failure is generic
// and may be retried by the caller.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	ctx, cancel := context.WithTimeout(ctx, c.networkTimeout)
	defer cancel()

	err := c.run(ctx, "push", remote, branch)
	return c.classifySync(err)
}

// Pull merges the remote branch. Merge conflicts surface as
// ErrDivergence. The merge strategy is forced: with pull.rebase unset,
// git 2.33.1+ refuses a divergent pull outright instead of merging.
func (c *Client) Pull(ctx context.Context, remote, branch string) error {
	ctx, cancel := context.WithTimeout(ctx, c.networkTimeout)
	defer cancel()

	err := c.run(ctx, "pull", "--no-rebase", remote, branch)
	return c.classifySync(err)
}

// ListConflictedPaths enumerates files the index marks as unmerged.
func (c *Client) ListConflictedPaths(ctx context.Context) ([]string, error) {
	out, err := c.output(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// CheckoutOurs keeps the local side of a conflicted path.
func (c *Client) CheckoutOurs(ctx context.Context, path string) error {
	return c.run(ctx, "checkout", "--ours", "--", path)
}

// CheckoutTheirs takes the incoming side of a conflicted path.
func (c *Client) CheckoutTheirs(ctx context.Context, path string) error {
	return c.run(ctx, "checkout", "--theirs", "--", path)
}

// LsFiles lists paths git currently tracks.
func (c *Client) LsFiles(ctx context.Context) ([]string, error) {
	out, err := c.output(ctx, "ls-files")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// RemoveCached unstages a path without touching the working tree.
func (c *Client) RemoveCached(ctx context.Context, path string) error {
	return c.run(ctx, "rm", "--cached", "--", path)
}

// divergenceMarkers are the stderr fragments that distinguish a rejected
// push/pull from a transient failure. Exit codes cannot draw this line:
// git reports 1 and 128 for both kinds.
var divergenceMarkers = []string{
	"non-fast-forward",
	"fetch first",
	"[rejected]",
	"refusing to merge unrelated histories",
	"needs merge",
	"CONFLICT (",
	"Automatic merge failed",
	"would be overwritten by merge",
	"Need to specify how to reconcile divergent branches",
}

// classifySync decides whether a failed push/pull means the histories
// have diverged. Divergence is never blindly retried; everything else is.
func (c *Client) classifySync(err error) error {
	if err == nil {
		return nil
	}

	var gitErr *errors.GitError
	if errors.As(err, &gitErr) {
		for _, marker := range divergenceMarkers {
			if strings.Contains(gitErr.Output, marker) {
				return errors.NewGitError(gitErr.Operation, gitErr.Args,
					errors.Join(errors.ErrDivergence, gitErr.Err), gitErr.Output)
			}
		}
	}
	return err
}

// run executes a git command in the repository directory. Only the
// subcommand is logged; full argument lists can carry credential URLs.
func (c *Client) run(ctx context.Context, args ...string) error {
	c.logger.Info("running git %s", subcommand(args))
	allArgs := append([]string{"-C", c.repoPath}, args...)
	return c.executor.ExecuteWithContext(ctx, "git", allArgs...)
}

// output executes a git command and returns its stdout.
func (c *Client) output(ctx context.Context, args ...string) (string, error) {
	allArgs := append([]string{"-C", c.repoPath}, args...)
	return c.executor.ExecuteWithContextAndOutput(ctx, "git", allArgs...)
}
