package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressmapapp/pressmap-server/internal/domain"
	"github.com/pressmapapp/pressmap-server/internal/store"
)

func testService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st, t.TempDir(), logger), st
}

func seed(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.Posts.Put(ctx, &domain.Post{PostID: 1, Title: "Alpha", PostName: "alpha"}))
	require.NoError(t, st.Posts.Put(ctx, &domain.Post{PostID: 2, Title: "Beta", PostName: "beta"}))
	require.NoError(t, st.Tags.Put(ctx, &domain.Tag{TermID: 10, Nicename: "go", Name: "Go"}))
	require.NoError(t, st.SiteInfo.Put(ctx, &domain.SiteInfo{Key: "link", Value: "https://example.com"}))
}

func TestCreateAndList(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	seed(t, st)

	res, err := svc.Create(ctx, "manual")
	require.NoError(t, err)

	assert.FileExists(t, res.Path)
	assert.Equal(t, 2, res.Counts.Posts)
	assert.Equal(t, 1, res.Counts.Tags)
	assert.Len(t, res.Checksum, 64)
	assert.Positive(t, res.Size)

	infos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, res.Path, infos[0].Path)
	assert.Equal(t, "manual", infos[0].Reason)
}

func TestRestoreRoundTrip(t *testing.T) {
	svc, st := testService(t)
	ctx := context.Background()
	seed(t, st)

	res, err := svc.Create(ctx, "pre-merge")
	require.NoError(t, err)

	// Wreck the dataset after the snapshot.
	require.NoError(t, st.Posts.Delete(ctx, store.NumKey(1)))
	require.NoError(t, st.Tags.Clear(ctx))
	require.NoError(t, st.Posts.Put(ctx, &domain.Post{PostID: 99, Title: "Intruder"}))

	before, err := st.ContentVersion(ctx)
	require.NoError(t, err)

	manifest, err := svc.Restore(ctx, res.Path)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, manifest.Version)
	assert.Equal(t, "pre-merge", manifest.Reason)
	assert.Equal(t, 2, manifest.Counts.Posts)

	// The dataset is back to the snapshot state, intruder gone.
	posts, err := st.Posts.All(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Alpha", posts[0].Title)

	got, err := st.Posts.GetByIndex(ctx, "slug", "alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, got.PostID)

	tags, err := st.Tags.All(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	assert.Equal(t, "https://example.com", st.SiteURL(ctx))

	// Restore invalidates derived data through the content version.
	after, err := st.ContentVersion(ctx)
	require.NoError(t, err)
	assert.Greater(t, after, before)

	// And leaves an audit trail.
	audit, err := st.AuditLog.All(ctx)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, domain.AuditActionRestore, audit[0].Action)
}

func TestRestoreMissingSnapshot(t *testing.T) {
	svc, _ := testService(t)

	_, err := svc.Restore(context.Background(), filepath.Join(t.TempDir(), "nope.zip"))
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestListEmptyDir(t *testing.T) {
	svc, _ := testService(t)

	infos, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}
