package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFacingMessages(t *testing.T) {
	var stdout, stderr strings.Builder
	l := NewWithOutput(false, "", false, &stdout, &stderr)

	l.InfoToUser("tracking %d patterns", 3)
	l.Success("commit created")
	l.WarningToUser("remote not configured")
	l.StatusMessage("interval: %ds", 1800)

	out := stdout.String()
	assert.Contains(t, out, "tracking 3 patterns")
	assert.Contains(t, out, "ok: commit created")
	assert.Contains(t, out, "warning: remote not configured")
	assert.Contains(t, out, "interval: 1800s")
}

func TestFileLogging(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "gittrack.log")

	var stdout, stderr strings.Builder
	l := NewWithOutput(true, logFile, false, &stdout, &stderr)

	l.Info("scan found %d changes", 2)
	l.Event("push.attempt", "remote", "origin", "try", 1)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "scan found 2 changes")
	assert.Contains(t, content, "push.attempt")
	assert.Contains(t, content, "remote=origin")
}

func TestInfoSuppressedWhenDisabled(t *testing.T) {
	var stdout, stderr strings.Builder
	l := NewWithOutput(false, "", false, &stdout, &stderr)

	l.Info("internal detail")

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestWarningRespectsVerbosity(t *testing.T) {
	var quietOut, quietErr strings.Builder
	quiet := NewWithOutput(false, "", false, &quietOut, &quietErr)
	quiet.Warning("push failed, will retry")
	assert.Empty(t, quietErr.String())

	var verboseOut, verboseErr strings.Builder
	verbose := NewWithOutput(false, "", true, &verboseOut, &verboseErr)
	verbose.Warning("push failed, will retry")
	assert.Contains(t, verboseErr.String(), "push failed, will retry")
}

func TestLogFilePath(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "gittrack.log")

	var stdout, stderr strings.Builder
	l := NewWithOutput(true, logFile, false, &stdout, &stderr)
	defer func() { _ = l.Close() }()
	assert.Equal(t, logFile, l.LogFile())

	disabled := NewWithOutput(false, logFile, false, &stdout, &stderr)
	assert.Empty(t, disabled.LogFile())
}

func TestTail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gittrack.log")

	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\nfour\n"), 0o644))

	lines, err := Tail(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, lines)

	lines, err = Tail(path, 10)
	require.NoError(t, err)
	assert.Len(t, lines, 4)

	lines, err = Tail(filepath.Join(dir, "missing.log"), 5)
	require.NoError(t, err)
	assert.Empty(t, lines)
}
