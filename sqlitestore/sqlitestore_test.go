package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/blogcore"
	"github.com/hypergopher/blogcore/sqlitestore"
)

func setupTestEnvironment(t *testing.T) *sqlitestore.Store {
	t.Helper()

	db, err := sqlitestore.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to open SQLite db")

	store := sqlitestore.New(db, "posts")
	require.NoError(t, store.Init(), "Failed to init store")

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func createTestPost(t *testing.T, store *sqlitestore.Store, id string, published time.Time, tags ...string) *blogcore.Post {
	t.Helper()

	post, err := store.Create(context.Background(), &blogcore.Post{
		ID:        id,
		Slug:      id,
		Title:     "Post " + id,
		Body:      "Body of " + id,
		Author:    "Admin",
		Published: published,
		Tags:      tags,
	})
	require.NoError(t, err)
	return post
}

func TestStore_InitIsIdempotent(t *testing.T) {
	store := setupTestEnvironment(t)
	assert.NoError(t, store.Init())
}

func TestStore_CreateAndGet(t *testing.T) {
	store := setupTestEnvironment(t)
	ctx := context.Background()
	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	created := createTestPost(t, store, "first", published, "action", "featured", "action")
	assert.Equal(t, []string{"action", "featured"}, created.Tags)

	got, err := store.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "Post first", got.Title)
	assert.Equal(t, "Body of first", got.Body)
	assert.True(t, published.Equal(got.Published))
	assert.Equal(t, []string{"action", "featured"}, got.Tags)
	assert.Empty(t, got.Likes)

	_, err = store.Create(ctx, &blogcore.Post{ID: "first", Title: "again", Body: "again"})
	assert.ErrorIs(t, err, blogcore.ErrPostExists)
}

func TestStore_CreateAssignsIDAndPublished(t *testing.T) {
	store := setupTestEnvironment(t)

	post, err := store.Create(context.Background(), &blogcore.Post{Title: "No ID", Body: "body"})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.False(t, post.Published.IsZero())
}

func TestStore_GetNotFound(t *testing.T) {
	store := setupTestEnvironment(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, blogcore.ErrPostNotFound)
}

func TestStore_Update(t *testing.T) {
	store := setupTestEnvironment(t)
	ctx := context.Background()
	published := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	post := createTestPost(t, store, "first", published, "action")
	require.NoError(t, store.AddLike(ctx, "first", "viewer-1"))

	post.Title = "Updated"
	post.Tags = []string{"drama", "latest"}
	post.Published = time.Time{}
	post.Likes = nil
	require.NoError(t, store.Update(ctx, post))

	got, err := store.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
	assert.Equal(t, []string{"drama", "latest"}, got.Tags)
	assert.True(t, published.Equal(got.Published), "published date is kept")
	assert.Equal(t, []string{"viewer-1"}, got.Likes, "likes are kept")

	err = store.Update(ctx, &blogcore.Post{ID: "missing", Title: "x", Body: "x"})
	assert.ErrorIs(t, err, blogcore.ErrPostNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := setupTestEnvironment(t)
	ctx := context.Background()

	createTestPost(t, store, "first", time.Now(), "action")
	require.NoError(t, store.AddLike(ctx, "first", "viewer-1"))

	require.NoError(t, store.Delete(ctx, "first"))

	_, err := store.Get(ctx, "first")
	assert.ErrorIs(t, err, blogcore.ErrPostNotFound)

	counts, err := store.TagCounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	assert.ErrorIs(t, store.Delete(ctx, "first"), blogcore.ErrPostNotFound)
}

func TestStore_Recent(t *testing.T) {
	store := setupTestEnvironment(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	createTestPost(t, store, "oldest", base, "action")
	createTestPost(t, store, "newest", base.Add(48*time.Hour), "featured")
	createTestPost(t, store, "middle-a", base.Add(24*time.Hour), "action", "featured")
	createTestPost(t, store, "middle-b", base.Add(24*time.Hour))

	tests := []struct {
		name string
		opts blogcore.RecentOptions
		want []string
	}{
		{"all newest first", blogcore.RecentOptions{}, []string{"newest", "middle-a", "middle-b", "oldest"}},
		{"limited", blogcore.RecentOptions{Limit: 2}, []string{"newest", "middle-a"}},
		{"by tag", blogcore.RecentOptions{Tag: "featured"}, []string{"newest", "middle-a"}},
		{"by tag limited", blogcore.RecentOptions{Tag: "action", Limit: 1}, []string{"middle-a"}},
		{"unknown tag", blogcore.RecentOptions{Tag: "latest"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := store.Recent(ctx, tt.opts)
			require.NoError(t, err)

			var ids []string
			for _, p := range posts {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestStore_Likes(t *testing.T) {
	store := setupTestEnvironment(t)
	ctx := context.Background()

	createTestPost(t, store, "first", time.Now())

	require.NoError(t, store.AddLike(ctx, "first", "viewer-1"))
	require.NoError(t, store.AddLike(ctx, "first", "viewer-1"))
	require.NoError(t, store.AddLike(ctx, "first", "viewer-2"))

	got, err := store.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer-1", "viewer-2"}, got.Likes)

	require.NoError(t, store.RemoveLike(ctx, "first", "viewer-1"))
	require.NoError(t, store.RemoveLike(ctx, "first", "viewer-3"))

	got, err = store.Get(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer-2"}, got.Likes)

	assert.ErrorIs(t, store.AddLike(ctx, "missing", "viewer-1"), blogcore.ErrPostNotFound)
	assert.ErrorIs(t, store.RemoveLike(ctx, "missing", "viewer-1"), blogcore.ErrPostNotFound)
}

func TestStore_TagCounts(t *testing.T) {
	store := setupTestEnvironment(t)
	ctx := context.Background()

	createTestPost(t, store, "one", time.Now(), "action", "featured")
	createTestPost(t, store, "two", time.Now(), "action")

	counts, err := store.TagCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"action": 2, "featured": 1}, counts)
}
