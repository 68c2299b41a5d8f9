package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"gittrack/internal/config"
	"gittrack/internal/logger"
)

// Fingerprint identifies one version of a file cheaply. Modification
// time at nanosecond resolution plus size; git remains the content
// arbiter, so a spurious mtime bump costs at most one no-op status check.
type Fingerprint struct {
	Size    int64
	ModTime int64
}

// Snapshot is the in-memory record of the working-tree state of all
// tracked paths at one instant. It is rebuilt from the filesystem on
// every tick and never persisted.
type Snapshot struct {
	// Entries maps repository-relative paths to their fingerprints.
	Entries map[string]Fingerprint

	// Unscannable lists matched paths that could not be fingerprinted
	// (permission denied and similar). They are excluded from change
	// comparison rather than failing the scan.
	Unscannable []string
}

// Paths returns the fingerprinted paths in sorted order, for staging.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for p := range s.Entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ChangedFrom reports whether any path appeared, disappeared, or changed
// fingerprint relative to prev. Comparison is map-based, so scan order
// never affects the result.
func (s *Snapshot) ChangedFrom(prev *Snapshot) bool {
	return HasChanges(prev, s)
}

// HasChanges compares two snapshots as sets. A nil snapshot counts as empty.
func HasChanges(previous, current *Snapshot) bool {
	prev := map[string]Fingerprint{}
	cur := map[string]Fingerprint{}
	if previous != nil {
		prev = previous.Entries
	}
	if current != nil {
		cur = current.Entries
	}

	if len(prev) != len(cur) {
		return true
	}
	for path, fp := range cur {
		old, ok := prev[path]
		if !ok || old != fp {
			return true
		}
	}
	return false
}

// Diff returns the paths that appeared, disappeared, or changed
// fingerprint between the two snapshots, sorted. A nil snapshot counts
// as empty.
func Diff(previous, current *Snapshot) []string {
	prev := map[string]Fingerprint{}
	cur := map[string]Fingerprint{}
	if previous != nil {
		prev = previous.Entries
	}
	if current != nil {
		cur = current.Entries
	}

	var changed []string
	for path, fp := range cur {
		old, ok := prev[path]
		if !ok || old != fp {
			changed = append(changed, path)
		}
	}
	for path := range prev {
		if _, ok := cur[path]; !ok {
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed
}

// Scanner expands tracked patterns against a repository working tree and
// produces snapshots.
type Scanner struct {
	root     string
	excluded []string
	logger   logger.Logger
}

// NewScanner creates a Scanner rooted at repoPath. The git directory and
// everything the config store manages are always excluded; this is a hard
// invariant, not a convenience, because fingerprinting the encrypted blob
// the daemon itself rewrites would make every tick look dirty.
func NewScanner(repoPath string, log logger.Logger) *Scanner {
	excluded := []string{".git"}
	excluded = append(excluded, config.NewStore(repoPath).ManagedPaths()...)
	return &Scanner{
		root:     repoPath,
		excluded: excluded,
		logger:   log,
	}
}

// Scan expands patterns against the working tree. Exact names, glob
// wildcards (** included) and the all-files wildcard are supported. A
// pattern matching zero files is not an error.
func (sc *Scanner) Scan(patterns []string) (*Snapshot, error) {
	snap := &Snapshot{Entries: make(map[string]Fingerprint)}

	matched := make(map[string]struct{})
	for _, pattern := range patterns {
		if pattern == config.AllFilesPattern {
			if err := sc.matchAll(matched); err != nil {
				return nil, err
			}
			continue
		}
		if err := sc.matchPattern(pattern, matched); err != nil {
			return nil, err
		}
	}

	for path := range matched {
		info, err := os.Lstat(filepath.Join(sc.root, path))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			sc.logger.Warning("cannot fingerprint %s: %v", path, err)
			snap.Unscannable = append(snap.Unscannable, path)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		snap.Entries[path] = Fingerprint{
			Size:    info.Size(),
			ModTime: info.ModTime().UnixNano(),
		}
	}
	sort.Strings(snap.Unscannable)
	return snap, nil
}

// matchAll walks the whole working tree, honoring exclusions.
func (sc *Scanner) matchAll(matched map[string]struct{}) error {
	return filepath.WalkDir(sc.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are logged and skipped, not fatal.
			sc.logger.Warning("scan skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(sc.root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if sc.isExcluded(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			matched[rel] = struct{}{}
		}
		return nil
	})
}

// matchPattern expands a single pattern. A literal name (no glob meta)
// behaves as an exact match through the same code path.
func (sc *Scanner) matchPattern(pattern string, matched map[string]struct{}) error {
	pattern = filepath.ToSlash(pattern)
	if !doublestar.ValidatePattern(pattern) {
		sc.logger.Warning("invalid tracked pattern %q ignored", pattern)
		return nil
	}

	hits, err := doublestar.Glob(os.DirFS(sc.root), pattern)
	if err != nil {
		return err
	}
	for _, hit := range hits {
		if sc.isExcluded(hit) {
			continue
		}
		matched[hit] = struct{}{}
	}
	return nil
}

// isExcluded reports whether a repository-relative path is one of the
// self-managed artifacts or lives under one.
func (sc *Scanner) isExcluded(rel string) bool {
	for _, ex := range sc.excluded {
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return true
		}
	}
	return false
}
