package config

import (
	"sort"
	"strings"
	"time"

	"gittrack/internal/errors"
)

const (
	// DefaultCommitInterval between auto-commit ticks, in seconds.
	DefaultCommitInterval = 1800

	// DefaultRemoteBranch pushed to when none is configured.
	DefaultRemoteBranch = "main"

	// AllFilesPattern tracks the entire working tree.
	AllFilesPattern = "*"
)

// TrackingConfig is the persisted, encrypted settings object. It is loaded
// once at startup and passed by reference; every mutation goes back through
// Store.Save so there is exactly one writer path.
type TrackingConfig struct {
	// TrackedPatterns holds exact filenames or glob patterns, kept sorted
	// and deduplicated. The single pattern "*" tracks all files.
	TrackedPatterns []string `json:"tracked_patterns"`

	// RemoteURL is the push target. Empty means not configured.
	RemoteURL string `json:"remote_url"`

	// RemoteBranch is the branch pushed to and pulled from.
	RemoteBranch string `json:"remote_branch"`

	// AutoCommitEnabled turns the scheduler on.
	AutoCommitEnabled bool `json:"auto_commit"`

	// CommitInterval is the tick cadence in seconds. Always > 0.
	CommitInterval int `json:"commit_interval"`

	// DaemonEnabled records whether the loop should run continuously
	// rather than once per manual invocation.
	DaemonEnabled bool `json:"daemon_mode"`

	// HubToken is a hosting-API token. Lives only inside the encrypted
	// blob and is never logged.
	HubToken string `json:"hub_token,omitempty"`

	// LastCommitTime records the most recent auto-commit, for status views.
	LastCommitTime time.Time `json:"last_commit_time,omitzero"`
}

// Default returns a TrackingConfig with first-run defaults.
func Default() *TrackingConfig {
	return &TrackingConfig{
		TrackedPatterns: nil,
		RemoteURL:       "",
		RemoteBranch:    DefaultRemoteBranch,
		CommitInterval:  DefaultCommitInterval,
	}
}

// Validate sanity-checks the config. Violations of hard invariants are
// errors; the auto-commit-without-remote case is a warning surfaced via
// the returned string, not a failure.
func (c *TrackingConfig) Validate() (warning string, err error) {
	if c.CommitInterval <= 0 {
		return "", errors.NewConfigError("commitInterval", c.CommitInterval,
			errors.Wrap(errors.ErrInvalidConfiguration, "must be greater than zero"))
	}
	for _, p := range c.TrackedPatterns {
		if strings.TrimSpace(p) == "" {
			return "", errors.NewConfigError("trackedPatterns", p,
				errors.Wrap(errors.ErrInvalidConfiguration, "pattern must not be empty"))
		}
	}
	if c.RemoteBranch == "" {
		return "", errors.NewConfigError("remoteBranch", c.RemoteBranch,
			errors.Wrap(errors.ErrInvalidConfiguration, "branch must not be empty"))
	}
	if c.AutoCommitEnabled && c.RemoteURL == "" {
		warning = "auto-commit is enabled but no remote URL is configured; commits will not be pushed"
	}
	return warning, nil
}

// AddPatterns merges patterns into the tracked set. Duplicates collapse,
// empty strings are rejected, and "all" is normalized to the all-files
// wildcard. Reports whether the set changed.
func (c *TrackingConfig) AddPatterns(patterns ...string) (bool, error) {
	changed := false
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			return changed, errors.NewConfigError("trackedPatterns", p,
				errors.Wrap(errors.ErrInvalidConfiguration, "pattern must not be empty"))
		}
		if strings.EqualFold(p, "all") {
			p = AllFilesPattern
		}
		if !c.IsTracked(p) {
			c.TrackedPatterns = append(c.TrackedPatterns, p)
			changed = true
		}
	}
	if changed {
		sort.Strings(c.TrackedPatterns)
	}
	return changed, nil
}

// RemovePattern drops a pattern from the tracked set.
// Reports whether it was present.
func (c *TrackingConfig) RemovePattern(pattern string) bool {
	for i, p := range c.TrackedPatterns {
		if p == pattern {
			c.TrackedPatterns = append(c.TrackedPatterns[:i], c.TrackedPatterns[i+1:]...)
			return true
		}
	}
	return false
}

// IsTracked reports whether the exact pattern is already in the set.
func (c *TrackingConfig) IsTracked(pattern string) bool {
	for _, p := range c.TrackedPatterns {
		if p == pattern {
			return true
		}
	}
	return false
}

// TracksAll reports whether the all-files wildcard is in the set.
func (c *TrackingConfig) TracksAll() bool {
	return c.IsTracked(AllFilesPattern)
}

// Interval returns the tick cadence as a duration.
func (c *TrackingConfig) Interval() time.Duration {
	return time.Duration(c.CommitInterval) * time.Second
}

// Clone returns a deep copy, used when a caller needs to stage edits
// before committing them through Store.Save.
func (c *TrackingConfig) Clone() *TrackingConfig {
	dup := *c
	dup.TrackedPatterns = append([]string(nil), c.TrackedPatterns...)
	return &dup
}
