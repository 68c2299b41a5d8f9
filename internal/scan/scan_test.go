package scan

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gittrack/internal/config"
	"gittrack/internal/logger"
)

func newTestLogger() logger.Logger {
	return logger.NewWithOutput(false, "", false, io.Discard, io.Discard)
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanExactAndGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "print('a')")
	writeFile(t, root, "b.txt", "b")
	writeFile(t, root, "src/c.py", "print('c')")

	sc := NewScanner(root, newTestLogger())

	snap, err := sc.Scan([]string{"*.py", "b.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "b.txt"}, snap.Paths())

	snap, err = sc.Scan([]string{"**/*.py"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py", "src/c.py"}, snap.Paths())
}

func TestScanAllFilesExcludesManagedArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	writeFile(t, root, config.DataDirName+"/config.enc", "sealed")
	writeFile(t, root, config.DataDirName+"/backups/20240101-000000_config.enc", "sealed")

	sc := NewScanner(root, newTestLogger())
	snap, err := sc.Scan([]string{config.AllFilesPattern})
	require.NoError(t, err)

	assert.Equal(t, []string{"main.go"}, snap.Paths())
}

func TestScanPatternNeverReachesManagedArtifacts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, config.DataDirName+"/config.enc", "sealed")

	sc := NewScanner(root, newTestLogger())

	// Even a pattern that names the artifact directly is refused.
	snap, err := sc.Scan([]string{config.DataDirName + "/config.enc", "**/*.enc"})
	require.NoError(t, err)
	assert.Empty(t, snap.Paths())
}

func TestScanZeroMatchesIsNotAnError(t *testing.T) {
	sc := NewScanner(t.TempDir(), newTestLogger())

	snap, err := sc.Scan([]string{"*.nothing"})
	require.NoError(t, err)
	assert.Empty(t, snap.Paths())
	assert.False(t, HasChanges(nil, snap))
}

func TestHasChanges(t *testing.T) {
	base := &Snapshot{Entries: map[string]Fingerprint{
		"a.py": {Size: 10, ModTime: 100},
		"b.py": {Size: 20, ModTime: 200},
	}}

	t.Run("identical snapshots", func(t *testing.T) {
		same := &Snapshot{Entries: map[string]Fingerprint{
			"b.py": {Size: 20, ModTime: 200},
			"a.py": {Size: 10, ModTime: 100},
		}}
		assert.False(t, HasChanges(base, same))
		assert.False(t, HasChanges(same, base))
	})

	t.Run("modified fingerprint", func(t *testing.T) {
		mod := &Snapshot{Entries: map[string]Fingerprint{
			"a.py": {Size: 10, ModTime: 150},
			"b.py": {Size: 20, ModTime: 200},
		}}
		assert.True(t, HasChanges(base, mod))
		assert.True(t, HasChanges(mod, base))
	})

	t.Run("appearing path", func(t *testing.T) {
		grown := &Snapshot{Entries: map[string]Fingerprint{
			"a.py": {Size: 10, ModTime: 100},
			"b.py": {Size: 20, ModTime: 200},
			"c.py": {Size: 5, ModTime: 300},
		}}
		assert.True(t, HasChanges(base, grown))
	})

	t.Run("disappearing path", func(t *testing.T) {
		shrunk := &Snapshot{Entries: map[string]Fingerprint{
			"a.py": {Size: 10, ModTime: 100},
		}}
		assert.True(t, HasChanges(base, shrunk))
	})

	t.Run("nil counts as empty", func(t *testing.T) {
		assert.False(t, HasChanges(nil, &Snapshot{Entries: map[string]Fingerprint{}}))
		assert.True(t, HasChanges(nil, base))
	})
}

func TestScanDetectsModification(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "one")

	sc := NewScanner(root, newTestLogger())

	before, err := sc.Scan([]string{"*.py"})
	require.NoError(t, err)

	// Rewrite with different content and a bumped mtime.
	writeFile(t, root, "a.py", "two two")
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(root, "a.py"), future, future))

	after, err := sc.Scan([]string{"*.py"})
	require.NoError(t, err)

	assert.True(t, after.ChangedFrom(before))
}

func TestScanIgnoresDirectoriesAndMissing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/a.go", "package a")

	sc := NewScanner(root, newTestLogger())

	// "pkg" matches a directory; only regular files are fingerprinted.
	snap, err := sc.Scan([]string{"pkg", "pkg/a.go", "gone.go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg/a.go"}, snap.Paths())
}
