package conflict

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gittrack/internal/errors"
	"gittrack/internal/logger"
)

// fakeGit records the resolution operations applied to each path.
type fakeGit struct {
	conflicted []string
	checkouts  map[string]string // path -> "ours" | "theirs"
	staged     []string
	committed  []string
	pushed     int
	pushErr    error
}

func newFakeGit(conflicted ...string) *fakeGit {
	return &fakeGit{
		conflicted: conflicted,
		checkouts:  make(map[string]string),
	}
}

func (f *fakeGit) ListConflictedPaths(ctx context.Context) ([]string, error) {
	return f.conflicted, nil
}

func (f *fakeGit) CheckoutOurs(ctx context.Context, path string) error {
	f.checkouts[path] = "ours"
	return nil
}

func (f *fakeGit) CheckoutTheirs(ctx context.Context, path string) error {
	f.checkouts[path] = "theirs"
	return nil
}

func (f *fakeGit) Add(ctx context.Context, paths ...string) error {
	f.staged = append(f.staged, paths...)
	return nil
}

func (f *fakeGit) Commit(ctx context.Context, message string) error {
	f.committed = append(f.committed, message)
	return nil
}

func (f *fakeGit) Push(ctx context.Context, remote, branch string) error {
	f.pushed++
	return f.pushErr
}

func newTestResolver(g *fakeGit) *Resolver {
	log := logger.NewWithOutput(false, "", false, io.Discard, io.Discard)
	return NewResolver(g, log)
}

func TestDetectCleanRepositoryIsCallerError(t *testing.T) {
	resolver := newTestResolver(newFakeGit())

	_, err := resolver.Detect(context.Background())
	assert.True(t, errors.Is(err, errors.ErrNoConflicts))
}

func TestDetectAllPathsStartUnresolved(t *testing.T) {
	resolver := newTestResolver(newFakeGit("b.txt", "a.txt"))

	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "b.txt"}, record.Paths())
	assert.False(t, record.IsComplete())
	for _, p := range record.Paths() {
		status, ok := record.StatusOf(p)
		require.True(t, ok)
		assert.Equal(t, StatusUnresolved, status)
	}
}

func TestResolveLocalKeepsOursAndStages(t *testing.T) {
	g := newFakeGit("notes.txt")
	resolver := newTestResolver(g)
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Resolve(context.Background(), record, "notes.txt", ChoiceLocal))

	assert.Equal(t, "ours", g.checkouts["notes.txt"])
	assert.Contains(t, g.staged, "notes.txt")
	status, _ := record.StatusOf("notes.txt")
	assert.Equal(t, StatusTookLocal, status)
	assert.True(t, record.IsComplete())
}

func TestResolveRemoteTakesTheirs(t *testing.T) {
	g := newFakeGit("notes.txt")
	resolver := newTestResolver(g)
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Resolve(context.Background(), record, "notes.txt", ChoiceRemote))

	assert.Equal(t, "theirs", g.checkouts["notes.txt"])
	status, _ := record.StatusOf("notes.txt")
	assert.Equal(t, StatusTookRemote, status)
}

func TestResolveUnknownPath(t *testing.T) {
	resolver := newTestResolver(newFakeGit("notes.txt"))
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	err = resolver.Resolve(context.Background(), record, "other.txt", ChoiceLocal)
	assert.True(t, errors.Is(err, errors.ErrUnknownPath))
}

func TestManualNeedsConfirmation(t *testing.T) {
	g := newFakeGit("notes.txt")
	resolver := newTestResolver(g)
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Resolve(context.Background(), record, "notes.txt", ChoiceManual))
	assert.False(t, record.IsComplete(), "manual choice alone must not resolve the path")

	require.NoError(t, resolver.ConfirmManual(context.Background(), record, "notes.txt"))
	assert.True(t, record.IsComplete())
	status, _ := record.StatusOf("notes.txt")
	assert.Equal(t, StatusManuallyEdited, status)
	assert.Contains(t, g.staged, "notes.txt")
}

func TestConfirmManualWithoutDeferral(t *testing.T) {
	resolver := newTestResolver(newFakeGit("notes.txt"))
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	assert.Error(t, resolver.ConfirmManual(context.Background(), record, "notes.txt"))
}

func TestResolveIsIdempotent(t *testing.T) {
	g := newFakeGit("notes.txt")
	resolver := newTestResolver(g)
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Resolve(context.Background(), record, "notes.txt", ChoiceLocal))
	require.NoError(t, resolver.Resolve(context.Background(), record, "notes.txt", ChoiceRemote))

	status, _ := record.StatusOf("notes.txt")
	assert.Equal(t, StatusTookRemote, status)
	assert.Equal(t, "theirs", g.checkouts["notes.txt"])
}

func TestManualDeferralOverwritesEarlierChoice(t *testing.T) {
	g := newFakeGit("notes.txt")
	resolver := newTestResolver(g)
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Resolve(context.Background(), record, "notes.txt", ChoiceLocal))
	require.NoError(t, resolver.Resolve(context.Background(), record, "notes.txt", ChoiceManual))

	assert.False(t, record.IsComplete())
}

func TestFinalizeEarlyFails(t *testing.T) {
	g := newFakeGit("a.txt", "b.txt")
	resolver := newTestResolver(g)
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Resolve(context.Background(), record, "a.txt", ChoiceLocal))

	err = resolver.Finalize(context.Background(), record, "origin", "main")
	assert.True(t, errors.Is(err, errors.ErrStillUnresolved))
	assert.Empty(t, g.committed, "early finalize must not commit")
	assert.Zero(t, g.pushed)
}

func TestFinalizeCommitsAndPushes(t *testing.T) {
	g := newFakeGit("a.txt", "b.txt")
	resolver := newTestResolver(g)
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Resolve(context.Background(), record, "a.txt", ChoiceLocal))
	require.NoError(t, resolver.Resolve(context.Background(), record, "b.txt", ChoiceRemote))

	require.NoError(t, resolver.Finalize(context.Background(), record, "origin", "main"))
	require.Len(t, g.committed, 1)
	assert.Contains(t, g.committed[0], "resolve merge conflicts")
	assert.Equal(t, 1, g.pushed)
}

func TestUnresolvedListsOnlyPending(t *testing.T) {
	resolver := newTestResolver(newFakeGit("a.txt", "b.txt", "c.txt"))
	record, err := resolver.Detect(context.Background())
	require.NoError(t, err)

	require.NoError(t, resolver.Resolve(context.Background(), record, "b.txt", ChoiceLocal))
	assert.Equal(t, []string{"a.txt", "c.txt"}, record.Unresolved())
}
