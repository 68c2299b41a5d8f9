package daemon

import (
	"context"
	"fmt"
	"time"

	"gittrack/internal/config"
	"gittrack/internal/errors"
	"gittrack/internal/git"
	"gittrack/internal/logger"
	"gittrack/internal/scan"
)

// State names the daemon's position in its commit cycle.
type State string

const (
	StateIdle            State = "idle"
	StateScanning        State = "scanning"
	StateCommitting      State = "committing"
	StatePushing         State = "pushing"
	StateConflictPending State = "conflict-pending"
)

// pushAttempts bounds how many times a transient push failure is retried
// within one tick before deferring to the next tick.
const pushAttempts = 3

// retryBackoff returns the delay before retry n (1-based).
func retryBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}

// gitClient is the subset of git operations one tick needs.
type gitClient interface {
	HasStagedChanges(ctx context.Context) (bool, error)
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, message string) error
	Push(ctx context.Context, remote, branch string) error
}

var _ gitClient = (*git.Client)(nil)

// scanner produces a snapshot of the tracked working-tree paths.
type scanner interface {
	Scan(patterns []string) (*scan.Snapshot, error)
}

var _ scanner = (*scan.Scanner)(nil)

// configStore supplies the current settings at the start of each tick,
// so edits made while the daemon runs take effect without a restart,
// and records the last commit time after a successful cycle.
type configStore interface {
	Load() (*config.TrackingConfig, error)
	Save(cfg *config.TrackingConfig) error
}

var _ configStore = (*config.Store)(nil)

// Daemon runs the periodic scan/commit/push cycle. It is single-threaded:
// one tick runs to completion before the next begins, and cancellation
// takes effect between ticks, never mid-commit.
type Daemon struct {
	store   configStore
	scanner scanner
	git     gitClient
	logger  logger.Logger

	state    State
	previous *scan.Snapshot

	// injectable for tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

// New creates a Daemon over the given collaborators.
func New(store configStore, sc scanner, gitClient gitClient, log logger.Logger) *Daemon {
	return &Daemon{
		store:   store,
		scanner: sc,
		git:     gitClient,
		logger:  log,
		state:   StateIdle,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// State returns the daemon's current state.
func (d *Daemon) State() State {
	return d.state
}

// ClearConflict returns the daemon to Idle after a conflict resolution
// has been finalized. It is the only exit from ConflictPending.
func (d *Daemon) ClearConflict() {
	if d.state == StateConflictPending {
		d.state = StateIdle
		d.previous = nil
		d.logger.Info("conflict cleared, resuming normal operation")
	}
}

// RunOnce executes a single tick: scan the tracked paths, and when
// something changed, commit and push. Errors are returned for the
// caller to log; none of them are fatal to a surrounding loop. A tick
// while a conflict is pending does nothing.
func (d *Daemon) RunOnce(ctx context.Context) error {
	if d.state == StateConflictPending {
		d.logger.Warning("skipping tick, conflict resolution pending")
		return nil
	}

	cfg, err := d.store.Load()
	if err != nil {
		return err
	}
	if !cfg.AutoCommitEnabled {
		d.logger.Info("auto-commit disabled, skipping tick")
		return nil
	}

	d.state = StateScanning
	defer func() {
		if d.state != StateConflictPending {
			d.state = StateIdle
		}
	}()

	current, err := d.scanner.Scan(cfg.TrackedPatterns)
	if err != nil {
		return err
	}

	if !scan.HasChanges(d.previous, current) {
		d.logger.Info("no changes detected")
		return nil
	}

	changed := scan.Diff(d.previous, current)
	d.state = StateCommitting
	committed, err := d.commit(ctx, cfg, changed)
	if err != nil {
		return err
	}
	if !committed {
		d.previous = current
		return nil
	}

	d.recordCommitTime(cfg)

	if cfg.RemoteURL == "" {
		d.logger.Info("no remote configured, commit kept local")
		d.previous = current
		return nil
	}

	d.state = StatePushing
	if err := d.push(ctx, cfg); err != nil {
		if errors.Is(err, errors.ErrDivergence) {
			d.state = StateConflictPending
			d.logger.Warning("remote has diverged, conflict resolution required")
			return err
		}
		// Transient failure after all retries: the commit is safe
		// locally, the push is re-attempted on the next tick.
		d.previous = current
		return err
	}

	d.previous = current
	d.logger.Info("tick complete, %d changed path(s) committed and pushed", len(changed))
	return nil
}

// recordCommitTime persists the commit timestamp for status views. A
// failure here is cosmetic and must not fail the tick.
func (d *Daemon) recordCommitTime(cfg *config.TrackingConfig) {
	cfg.LastCommitTime = d.now()
	if err := d.store.Save(cfg); err != nil {
		d.logger.Warning("could not record commit time: %v", err)
	}
}

// commit stages the changed paths and commits them. Staging a deleted
// path records its removal, so disappearances commit too. Returns false
// when git has nothing to record, e.g. a touch without an edit.
func (d *Daemon) commit(ctx context.Context, cfg *config.TrackingConfig, changed []string) (bool, error) {
	if cfg.TracksAll() {
		if err := d.git.Add(ctx); err != nil {
			return false, err
		}
	} else {
		if len(changed) == 0 {
			return false, nil
		}
		if err := d.git.Add(ctx, changed...); err != nil {
			return false, err
		}
	}

	staged, err := d.git.HasStagedChanges(ctx)
	if err != nil {
		return false, err
	}
	if !staged {
		return false, nil
	}

	message := fmt.Sprintf("gittrack: auto-commit %d file(s) [%s]",
		len(changed), d.now().Format("2006-01-02 15:04:05"))
	if err := d.git.Commit(ctx, message); err != nil {
		return false, err
	}
	return true, nil
}

// push attempts the push with bounded backoff. Divergence aborts the
// retry loop immediately: retrying would hit the same rejection.
func (d *Daemon) push(ctx context.Context, cfg *config.TrackingConfig) error {
	var lastErr error
	for attempt := 1; attempt <= pushAttempts; attempt++ {
		lastErr = d.git.Push(ctx, "origin", cfg.RemoteBranch)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, errors.ErrDivergence) {
			return lastErr
		}
		if attempt < pushAttempts {
			delay := retryBackoff(attempt)
			d.logger.Warning("push attempt %d/%d failed: %v, retrying in %s",
				attempt, pushAttempts, lastErr, delay)
			d.sleep(ctx, delay)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	d.logger.Error("push failed after %d attempts: %v", pushAttempts, lastErr)
	return lastErr
}

// Prime records the current working-tree state as the change baseline,
// so a clean tree does not look fully changed on the first tick. A scan
// failure leaves the baseline nil and the first tick falls back to the
// catch-up path.
func (d *Daemon) Prime() {
	cfg, err := d.store.Load()
	if err != nil || !cfg.AutoCommitEnabled {
		return
	}
	snapshot, err := d.scanner.Scan(cfg.TrackedPatterns)
	if err != nil {
		d.logger.Warning("baseline scan failed: %v", err)
		return
	}
	d.previous = snapshot
}

// Run ticks every commit interval until the context is canceled. Tick
// errors are logged and the loop continues; the daemon never exits on a
// failed cycle.
func (d *Daemon) Run(ctx context.Context) error {
	cfg, err := d.store.Load()
	if err != nil {
		return err
	}

	d.Prime()
	d.logger.StatusMessage("watching for changes every %s", cfg.Interval())
	d.logger.Event("daemon_started", "interval", cfg.Interval().String())

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("received cancellation signal, shutting down")
			d.logger.Event("daemon_stopped")
			return ctx.Err()

		case <-ticker.C:
			if err := d.RunOnce(ctx); err != nil {
				d.logger.Error("tick failed: %v", err)
				if errors.Is(err, errors.ErrDivergence) {
					d.logger.WarningToUser("remote has diverged, run 'gittrack conflicts list' to resolve")
				}
			}
			// Interval edits take effect on the following tick.
			if cfg2, err := d.store.Load(); err == nil && cfg2.Interval() != cfg.Interval() {
				cfg = cfg2
				ticker.Reset(cfg.Interval())
				d.logger.Info("commit interval changed to %s", cfg.Interval())
			}
		}
	}
}
