package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressmapapp/pressmap-server/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNumKeyOrdering(t *testing.T) {
	// Fixed-width keys keep numeric and lexicographic order aligned.
	assert.Equal(t, "0000000001", NumKey(1))
	assert.Equal(t, "0000000100", NumKey(100))
	assert.Less(t, NumKey(99), NumKey(100))

	id, err := ParseNumKey(NumKey(42))
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestEntityPutGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	post := &domain.Post{PostID: 7, Title: "Seven", PostName: "seven", Status: "publish"}
	require.NoError(t, s.Posts.Put(ctx, post))

	got, err := s.Posts.Get(ctx, NumKey(7))
	require.NoError(t, err)
	assert.Equal(t, "Seven", got.Title)

	_, err = s.Posts.Get(ctx, NumKey(8))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntitySlugIndex(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Posts.Put(ctx, &domain.Post{PostID: 1, Title: "One", PostName: "post-one"}))

	got, err := s.Posts.GetByIndex(ctx, "slug", "post-one")
	require.NoError(t, err)
	assert.Equal(t, 1, got.PostID)

	_, err = s.Posts.GetByIndex(ctx, "slug", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// Re-putting the record with a new slug drops the old index entry.
	require.NoError(t, s.Posts.Put(ctx, &domain.Post{PostID: 1, Title: "One", PostName: "renamed"}))

	_, err = s.Posts.GetByIndex(ctx, "slug", "post-one")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err = s.Posts.GetByIndex(ctx, "slug", "renamed")
	require.NoError(t, err)
	assert.Equal(t, 1, got.PostID)
}

func TestEntityDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.Tags.Put(ctx, &domain.Tag{TermID: 3, Nicename: "go", Name: "Go"}))
	require.NoError(t, s.Tags.Delete(ctx, NumKey(3)))

	_, err := s.Tags.Get(ctx, NumKey(3))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Tags.GetByIndex(ctx, "slug", "go")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is fine.
	assert.NoError(t, s.Tags.Delete(ctx, NumKey(3)))
}

func TestEntityListOrderAndCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// Inserted out of order; iteration comes back by numeric ID thanks
	// to the fixed-width keys.
	for _, id := range []int{30, 10, 20} {
		require.NoError(t, s.Posts.Put(ctx, &domain.Post{PostID: id, PostName: NumKey(id)}))
	}

	all, err := s.Posts.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{10, 20, 30}, []int{all[0].PostID, all[1].PostID, all[2].PostID})

	// Count must not include the slug index keys.
	n, err := s.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEntityPage(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for id := 1; id <= 7; id++ {
		require.NoError(t, s.Posts.Put(ctx, &domain.Post{PostID: id}))
	}

	page, err := s.Posts.Page(ctx, 2, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, 4, page[0].PostID)

	last, err := s.Posts.Page(ctx, 3, 3)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, 7, last[0].PostID)

	empty, err := s.Posts.Page(ctx, 4, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEntityBulkInsertAndClear(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	items := make([]*domain.Post, 0, 25)
	for id := 1; id <= 25; id++ {
		items = append(items, &domain.Post{PostID: id, PostName: NumKey(id)})
	}
	require.NoError(t, s.Posts.BulkInsert(ctx, items))

	n, err := s.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	// Indexes are written through the batch too.
	got, err := s.Posts.GetByIndex(ctx, "slug", NumKey(13))
	require.NoError(t, err)
	assert.Equal(t, 13, got.PostID)

	require.NoError(t, s.Posts.Clear(ctx))
	n, err = s.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = s.Posts.GetByIndex(ctx, "slug", NumKey(13))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVersionCounters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	v, err := s.ContentVersion(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = s.BumpContentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	dv, err := s.DerivedVersion(ctx, DerivedLinks)
	require.NoError(t, err)
	assert.Zero(t, dv)

	require.NoError(t, s.SetDerivedVersion(ctx, DerivedLinks, v))
	dv, err = s.DerivedVersion(ctx, DerivedLinks)
	require.NoError(t, err)
	assert.Equal(t, v, dv)

	// Other derived datasets keep their own counter.
	dv, err = s.DerivedVersion(ctx, DerivedMarkdown)
	require.NoError(t, err)
	assert.Zero(t, dv)
}

func TestSiteURL(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	assert.Equal(t, "", s.SiteURL(ctx))

	require.NoError(t, s.SiteInfo.Put(ctx, &domain.SiteInfo{Key: "link", Value: "https://example.com"}))
	assert.Equal(t, "https://example.com", s.SiteURL(ctx))
}

func TestContextCancellation(t *testing.T) {
	s := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Posts.Put(ctx, &domain.Post{PostID: 1})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.Posts.Get(ctx, NumKey(1))
	assert.ErrorIs(t, err, context.Canceled)
}
