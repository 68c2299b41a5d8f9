package backup

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gittrack/internal/config"
	"gittrack/internal/errors"
	"gittrack/internal/logger"
)

// idFormat is the timestamp layout used as the backup identifier. It
// sorts lexicographically in creation order.
const idFormat = "20060102-150405"

const (
	configSuffix = "_config.enc"
	keySuffix    = "_key"
)

// Record describes one immutable snapshot of the encrypted config and
// its key.
type Record struct {
	ID         string
	CreatedAt  time.Time
	ConfigPath string
	KeyPath    string
}

// Manager snapshots and restores the config store's persisted artifacts.
// Backups carry their own key copy, so they stay readable after a reset
// rotates the active key.
type Manager struct {
	store  *config.Store
	logger logger.Logger
	now    func() time.Time
}

// NewManager creates a Manager over the given store.
func NewManager(store *config.Store, log logger.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: log,
		now:    time.Now,
	}
}

// Create snapshots the current encrypted config and key under a
// timestamped ID. Fails with ErrNothingToBackup when no config has been
// saved yet. If a backup already exists for the current second, the ID
// is advanced until it is unique.
func (m *Manager) Create() (*Record, error) {
	if !m.store.Exists() {
		return nil, errors.ErrNothingToBackup
	}

	if err := os.MkdirAll(m.store.BackupDir(), 0o700); err != nil {
		return nil, errors.Wrap(err, "creating backup directory")
	}

	ts := m.now()
	id := ts.Format(idFormat)
	for m.exists(id) {
		ts = ts.Add(time.Second)
		id = ts.Format(idFormat)
	}

	rec := m.record(id, ts)
	if err := copyFile(m.store.ConfigPath(), rec.ConfigPath, 0o600); err != nil {
		return nil, errors.NewBackupError(id, rec.ConfigPath, err)
	}
	if err := copyFile(m.store.KeyPath(), rec.KeyPath, 0o600); err != nil {
		os.Remove(rec.ConfigPath)
		return nil, errors.NewBackupError(id, rec.KeyPath, err)
	}

	m.logger.Info("created backup %s", id)
	m.logger.Event("backup_created", "id", id)
	return rec, nil
}

// List returns all backups newest first. Entries missing either half of
// the pair are skipped, they cannot be restored.
func (m *Manager) List() ([]*Record, error) {
	entries, err := os.ReadDir(m.store.BackupDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	var records []*Record
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, configSuffix) {
			continue
		}
		id := strings.TrimSuffix(name, configSuffix)
		ts, err := time.ParseInLocation(idFormat, id, time.Local)
		if err != nil {
			continue
		}
		rec := m.record(id, ts)
		if _, err := os.Stat(rec.KeyPath); err != nil {
			m.logger.Warning("backup %s has no key file, skipping", id)
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID > records[j].ID
	})
	return records, nil
}

// Find resolves an ID to its record. Fails with ErrBackupNotFound.
func (m *Manager) Find(id string) (*Record, error) {
	records, err := m.List()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrBackupNotFound, "no backup with id %s", id)
}

// Restore replaces the active config and key with the snapshot's. Both
// files are staged as temporaries and renamed only after both copies
// succeeded, so a failed restore leaves the active pair untouched.
func (m *Manager) Restore(id string) error {
	rec, err := m.Find(id)
	if err != nil {
		return err
	}

	cfgTmp, err := stageCopy(rec.ConfigPath, m.store.ConfigPath())
	if err != nil {
		return errors.NewBackupError(id, rec.ConfigPath, err)
	}
	keyTmp, err := stageCopy(rec.KeyPath, m.store.KeyPath())
	if err != nil {
		os.Remove(cfgTmp)
		return errors.NewBackupError(id, rec.KeyPath, err)
	}

	if err := os.Rename(cfgTmp, m.store.ConfigPath()); err != nil {
		os.Remove(cfgTmp)
		os.Remove(keyTmp)
		return errors.NewBackupError(id, m.store.ConfigPath(), err)
	}
	if err := os.Rename(keyTmp, m.store.KeyPath()); err != nil {
		os.Remove(keyTmp)
		return errors.NewBackupError(id, m.store.KeyPath(), err)
	}

	m.logger.Info("restored backup %s", id)
	m.logger.Event("backup_restored", "id", id)
	return nil
}

// Prune deletes all but the newest keep backups. A keep of zero removes
// everything.
func (m *Manager) Prune(keep int) (removed int, err error) {
	if keep < 0 {
		return 0, errors.Errorf("keep must be non-negative, got %d", keep)
	}
	records, err := m.List()
	if err != nil {
		return 0, err
	}
	for _, rec := range records[min(keep, len(records)):] {
		if err := os.Remove(rec.ConfigPath); err != nil {
			return removed, errors.NewBackupError(rec.ID, rec.ConfigPath, err)
		}
		if err := os.Remove(rec.KeyPath); err != nil {
			return removed, errors.NewBackupError(rec.ID, rec.KeyPath, err)
		}
		removed++
		m.logger.Info("pruned backup %s", rec.ID)
	}
	return removed, nil
}

func (m *Manager) record(id string, ts time.Time) *Record {
	return &Record{
		ID:         id,
		CreatedAt:  ts,
		ConfigPath: filepath.Join(m.store.BackupDir(), id+configSuffix),
		KeyPath:    filepath.Join(m.store.BackupDir(), id+keySuffix),
	}
}

func (m *Manager) exists(id string) bool {
	_, err := os.Stat(filepath.Join(m.store.BackupDir(), id+configSuffix))
	return err == nil
}

// stageCopy copies src next to dst under a temporary name and returns
// the temporary path; the caller renames it into place.
func stageCopy(src, dst string) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".restore-*")
	if err != nil {
		return "", err
	}
	in, err := os.Open(src)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	defer in.Close()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func copyFile(src, dst string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
