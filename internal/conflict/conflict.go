package conflict

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gittrack/internal/errors"
	"gittrack/internal/git"
	"gittrack/internal/logger"
)

// Status describes where one conflicted path stands in the resolution.
type Status string

const (
	StatusUnresolved     Status = "unresolved"
	StatusTookLocal      Status = "took-local"
	StatusTookRemote     Status = "took-remote"
	StatusManuallyEdited Status = "manually-edited"
)

// Choice is the caller's decision for a single conflicted path.
type Choice string

const (
	ChoiceLocal  Choice = "local"
	ChoiceRemote Choice = "remote"
	ChoiceManual Choice = "manual"
)

// Record tracks the conflicted paths of one divergence and their
// resolution status. It lives in memory for the duration of a single
// resolution session.
type Record struct {
	statuses map[string]Status
	// manual choices need an explicit confirmation before the path
	// leaves unresolved; pending holds paths awaiting that confirmation.
	pending map[string]bool
}

// EmptyRecord returns a Record with no paths. It is already complete
// and exists for callers that finalize after resolution staged every
// path in an earlier process.
func EmptyRecord() *Record {
	return &Record{
		statuses: make(map[string]Status),
		pending:  make(map[string]bool),
	}
}

// Paths returns the conflicted paths in sorted order.
func (r *Record) Paths() []string {
	paths := make([]string, 0, len(r.statuses))
	for p := range r.statuses {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// StatusOf returns the status of a path and whether the path exists
// in the record.
func (r *Record) StatusOf(path string) (Status, bool) {
	s, ok := r.statuses[path]
	return s, ok
}

// IsComplete reports whether every path has left the unresolved state.
func (r *Record) IsComplete() bool {
	for _, s := range r.statuses {
		if s == StatusUnresolved {
			return false
		}
	}
	return true
}

// Unresolved returns the paths that still need a decision, sorted.
func (r *Record) Unresolved() []string {
	var paths []string
	for p, s := range r.statuses {
		if s == StatusUnresolved {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// gitClient is the subset of git operations the resolver needs.
type gitClient interface {
	ListConflictedPaths(ctx context.Context) ([]string, error)
	CheckoutOurs(ctx context.Context, path string) error
	CheckoutTheirs(ctx context.Context, path string) error
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, remote, branch string) error
}

var _ gitClient = (*git.Client)(nil)

// Resolver drives per-file resolution of a diverged repository until no
// unresolved path remains, then commits the result and re-attempts the
// push.
type Resolver struct {
	git    gitClient
	logger logger.Logger
	now    func() time.Time
}

// NewResolver creates a Resolver for the given repository.
func NewResolver(gitClient gitClient, log logger.Logger) *Resolver {
	return &Resolver{
		git:    gitClient,
		logger: log,
		now:    time.Now,
	}
}

// Detect enumerates the paths git marks as unmerged and returns a fresh
// Record with every path unresolved. A clean repository is a caller
// error, reported as ErrNoConflicts.
func (r *Resolver) Detect(ctx context.Context) (*Record, error) {
	paths, err := r.git.ListConflictedPaths(ctx)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.ErrNoConflicts
	}

	record := &Record{
		statuses: make(map[string]Status, len(paths)),
		pending:  make(map[string]bool),
	}
	for _, p := range paths {
		record.statuses[p] = StatusUnresolved
	}

	r.logger.Info("detected %d conflicted path(s)", len(paths))
	return record, nil
}

// Resolve applies a choice to one path. Local keeps the working-tree
// version and stages it; remote takes the incoming version and stages
// it; manual marks the path as awaiting an external edit, which must be
// confirmed via ConfirmManual before the path counts as resolved.
// Re-resolving a path overwrites the earlier choice.
func (r *Resolver) Resolve(ctx context.Context, record *Record, path string, choice Choice) error {
	if _, ok := record.statuses[path]; !ok {
		return errors.Wrapf(errors.ErrUnknownPath, "%s is not part of the current conflict", path)
	}

	switch choice {
	case ChoiceLocal:
		if err := r.git.CheckoutOurs(ctx, path); err != nil {
			return err
		}
		if err := r.git.Add(ctx, path); err != nil {
			return err
		}
		delete(record.pending, path)
		record.statuses[path] = StatusTookLocal
		r.logger.Info("kept local version of %s", path)

	case ChoiceRemote:
		if err := r.git.CheckoutTheirs(ctx, path); err != nil {
			return err
		}
		if err := r.git.Add(ctx, path); err != nil {
			return err
		}
		delete(record.pending, path)
		record.statuses[path] = StatusTookRemote
		r.logger.Info("took remote version of %s", path)

	case ChoiceManual:
		record.pending[path] = true
		record.statuses[path] = StatusUnresolved
		r.logger.Info("deferred %s to manual edit", path)

	default:
		return errors.Errorf("unknown resolution choice %q", choice)
	}

	return nil
}

// ConfirmManual marks a manually edited path as resolved and stages the
// edited file. The path must previously have been deferred with
// ChoiceManual.
func (r *Resolver) ConfirmManual(ctx context.Context, record *Record, path string) error {
	if _, ok := record.statuses[path]; !ok {
		return errors.Wrapf(errors.ErrUnknownPath, "%s is not part of the current conflict", path)
	}
	if !record.pending[path] {
		return errors.Errorf("%s was not deferred to manual edit", path)
	}

	if err := r.git.Add(ctx, path); err != nil {
		return err
	}
	delete(record.pending, path)
	record.statuses[path] = StatusManuallyEdited
	r.logger.Info("confirmed manual edit of %s", path)
	return nil
}

// Finalize commits the resolution and re-attempts the push. It is the
// only way out of a pending conflict: calling it while any path remains
// unresolved fails with ErrStillUnresolved and changes nothing.
func (r *Resolver) Finalize(ctx context.Context, record *Record, remote, branch string) error {
	if !record.IsComplete() {
		return errors.Wrapf(errors.ErrStillUnresolved,
			"%d path(s) still unresolved", len(record.Unresolved()))
	}

	message := fmt.Sprintf("gittrack: resolve merge conflicts [%s]",
		r.now().Format("2006-01-02 15:04:05"))
	if err := r.git.Commit(ctx, message); err != nil {
		return err
	}
	if err := r.git.Push(ctx, remote, branch); err != nil {
		return err
	}

	r.logger.Info("conflict resolution committed and pushed")
	return nil
}
