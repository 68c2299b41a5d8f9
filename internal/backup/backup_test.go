package backup

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gittrack/internal/config"
	"gittrack/internal/errors"
	"gittrack/internal/logger"
)

func newTestManager(t *testing.T) (*Manager, *config.Store) {
	t.Helper()
	log := logger.NewWithOutput(false, "", false, io.Discard, io.Discard)
	store := config.NewStore(t.TempDir())
	return NewManager(store, log), store
}

func saveConfig(t *testing.T, store *config.Store, patterns ...string) {
	t.Helper()
	cfg := config.Default()
	if len(patterns) > 0 {
		_, err := cfg.AddPatterns(patterns...)
		require.NoError(t, err)
	}
	require.NoError(t, store.Save(cfg))
}

func TestCreateWithoutConfig(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Create()
	assert.True(t, errors.Is(err, errors.ErrNothingToBackup))
}

func TestCreateAndList(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store, "*.txt")

	rec, err := m.Create()
	require.NoError(t, err)
	assert.FileExists(t, rec.ConfigPath)
	assert.FileExists(t, rec.KeyPath)

	records, err := m.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestListEmptyWithoutBackupDir(t *testing.T) {
	m, _ := newTestManager(t)

	records, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListNewestFirst(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		m.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := m.Create()
		require.NoError(t, err)
	}

	records, err := m.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].ID > records[1].ID)
	assert.True(t, records[1].ID > records[2].ID)
}

func TestCreateCollidingTimestampsGetDistinctIDs(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store)

	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	m.now = func() time.Time { return fixed }

	a, err := m.Create()
	require.NoError(t, err)
	b, err := m.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRestoreUnknownID(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store)

	err := m.Restore("19990101-000000")
	assert.True(t, errors.Is(err, errors.ErrBackupNotFound))
}

func TestRestoreBringsBackOldConfig(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store, "notes.txt")

	rec, err := m.Create()
	require.NoError(t, err)

	// Mutate the active config after the snapshot.
	cfg, err := store.Load()
	require.NoError(t, err)
	_, err = cfg.AddPatterns("extra.md")
	require.NoError(t, err)
	require.NoError(t, store.Save(cfg))

	require.NoError(t, m.Restore(rec.ID))

	restored, err := store.Load()
	require.NoError(t, err)
	assert.True(t, restored.IsTracked("notes.txt"))
	assert.False(t, restored.IsTracked("extra.md"))
}

func TestRestoreSurvivesKeyRotation(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store, "notes.txt")

	rec, err := m.Create()
	require.NoError(t, err)

	// Reset rotates the key; the active config becomes defaults under a
	// new key, but the backup carries its own key copy.
	_, err = store.Reset()
	require.NoError(t, err)

	fresh, err := store.Load()
	require.NoError(t, err)
	assert.False(t, fresh.IsTracked("notes.txt"))

	require.NoError(t, m.Restore(rec.ID))

	restored, err := store.Load()
	require.NoError(t, err)
	assert.True(t, restored.IsTracked("notes.txt"))
}

func TestRestoreLeavesNoTemporaries(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store)

	rec, err := m.Create()
	require.NoError(t, err)
	require.NoError(t, m.Restore(rec.ID))

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".restore-")
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)
	var ids []string
	for i := 0; i < 4; i++ {
		m.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		rec, err := m.Create()
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	removed, err := m.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	records, err := m.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, ids[3], records[0].ID)
	assert.Equal(t, ids[2], records[1].ID)
}

func TestPruneFewerThanKeep(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store)

	_, err := m.Create()
	require.NoError(t, err)

	removed, err := m.Prune(5)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestPruneNegativeKeep(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Prune(-1)
	assert.Error(t, err)
}

func TestBackupsAreUnderManagedDir(t *testing.T) {
	m, store := newTestManager(t)
	saveConfig(t, store)

	rec, err := m.Create()
	require.NoError(t, err)
	assert.Contains(t, rec.ConfigPath, config.DataDirName)
}
