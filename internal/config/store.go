package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gittrack/internal/errors"
)

const (
	// DataDirName is the per-repository directory holding everything
	// gittrack manages: config blob, key, backups, logs, lock.
	DataDirName = ".gittrack"

	// ConfigFileName is the encrypted settings blob.
	ConfigFileName = "config.enc"

	// KeyFileName is the raw master key, owner-readable only.
	KeyFileName = "config.key"

	// BackupDirName holds timestamped snapshots of blob and key.
	BackupDirName = "backups"

	// LogFileName is the append-only structured log.
	LogFileName = "gittrack.log"

	// LockFileName guards against a second daemon in the same directory.
	LockFileName = "daemon.lock"
)

// Store persists TrackingConfig as an encrypted blob plus a co-located
// key file. All writes are atomic: serialize, seal, write to a temp file
// in the same directory, then rename over the target.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the repository's data directory.
func NewStore(repoPath string) *Store {
	return &Store{dir: filepath.Join(repoPath, DataDirName)}
}

// Dir returns the data directory the store manages.
func (s *Store) Dir() string { return s.dir }

// ConfigPath returns the path of the encrypted config blob.
func (s *Store) ConfigPath() string { return filepath.Join(s.dir, ConfigFileName) }

// KeyPath returns the path of the master key file.
func (s *Store) KeyPath() string { return filepath.Join(s.dir, KeyFileName) }

// BackupDir returns the snapshot directory.
func (s *Store) BackupDir() string { return filepath.Join(s.dir, BackupDirName) }

// LogPath returns the structured log file path.
func (s *Store) LogPath() string { return filepath.Join(s.dir, LogFileName) }

// LockPath returns the daemon lock file path.
func (s *Store) LockPath() string { return filepath.Join(s.dir, LockFileName) }

// Exists reports whether a config blob has ever been written.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.ConfigPath())
	return err == nil
}

// Load reads, decrypts and decodes the persisted config.
//
// Error contract: ErrNotInitialized when no blob exists (caller should
// create defaults), ErrDecryptionFailed when the key is missing or does
// not match, ErrCorruptConfig when the decrypted payload is malformed.
func (s *Store) Load() (*TrackingConfig, error) {
	sealed, err := os.ReadFile(s.ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrNotInitialized
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	key, err := loadKey(s.KeyPath())
	if err != nil {
		return nil, err
	}

	plaintext, err := open(key, sealed)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(plaintext, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCorruptConfig, err.Error())
	}
	if cfg.CommitInterval <= 0 {
		cfg.CommitInterval = DefaultCommitInterval
	}
	if cfg.RemoteBranch == "" {
		cfg.RemoteBranch = DefaultRemoteBranch
	}
	return cfg, nil
}

// LoadOrInit loads the persisted config, creating the key and a default
// config on first run.
func (s *Store) LoadOrInit() (*TrackingConfig, error) {
	cfg, err := s.Load()
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, errors.ErrNotInitialized) {
		return nil, err
	}

	cfg = Default()
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save serializes, encrypts and atomically writes the config. The key is
// generated on first save. A reader can never observe a half-written blob:
// the temp file is renamed into place only after a full write and sync.
func (s *Store) Save(cfg *TrackingConfig) error {
	if _, err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}

	// A self-ignoring data dir keeps the key and blob out of git history
	// even under a blanket "git add .".
	ignorePath := filepath.Join(s.dir, ".gitignore")
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(ignorePath, []byte("*\n"), 0o644); err != nil {
			return errors.Wrap(err, "failed to write data directory gitignore")
		}
	}

	key, err := loadKey(s.KeyPath())
	if err != nil {
		if !errors.Is(err, errors.ErrDecryptionFailed) {
			return errors.Wrap(errors.ErrEncryptionFailed, err.Error())
		}
		// First run: no key yet.
		key, err = generateKey(s.KeyPath())
		if err != nil {
			return errors.Wrap(errors.ErrEncryptionFailed, err.Error())
		}
	}

	plaintext, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	sealed, err := seal(key, plaintext)
	if err != nil {
		return err
	}

	return atomicWrite(s.ConfigPath(), sealed, 0o600)
}

// Reset rotates the encryption key and writes fresh defaults. The old
// blob and key are removed; backups created earlier keep their own key
// copies and stay readable.
func (s *Store) Reset() (*TrackingConfig, error) {
	for _, p := range []string{s.ConfigPath(), s.KeyPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to remove old artifact")
		}
	}

	cfg := Default()
	if err := s.Save(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ManagedPaths lists everything the store owns, relative to the
// repository root. The change detector must never fingerprint these.
func (s *Store) ManagedPaths() []string {
	return []string{DataDirName}
}

// atomicWrite writes data to a temp file in the target's directory,
// syncs it, then renames it over the target.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return errors.Wrap(err, "failed to chmod temp file")
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return errors.Wrap(err, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "failed to close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "failed to replace config file")
	}
	return nil
}
