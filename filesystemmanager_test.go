package blogcore_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/blogcore"
)

func TestLocalFileSystemManager_Walk(t *testing.T) {
	fsm := blogcore.NewLocalFileSystemManager(filepath.Join("testdata", "content"), nil, blogcore.FrontmatterYAML)

	posts, errs := fsm.Walk(context.Background())

	received := make(map[string]*blogcore.Post)
	for post := range posts {
		received[post.Slug] = post
	}

	for err := range errs {
		require.NoError(t, err)
	}

	require.Len(t, received, 3)

	first := received["2024-01-01-first-post"]
	require.NotNil(t, first)
	assert.Equal(t, "2024-01-01-first-post", first.ID)
	assert.Equal(t, "First Blog Post", first.Title)
	assert.Equal(t, "John Doe", first.Author)
	assert.Equal(t, "/images/first.jpg", first.CoverImage)
	assert.Equal(t, []string{"action", "adventure", "featured"}, first.Tags)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.Published, "published falls back to the file name date")
	assert.Contains(t, first.Body, "![Hero shot](/images/hero.jpg)")
	assert.NotContains(t, first.Body, "title:")

	guide := received["guides/getting-started"]
	require.NotNil(t, guide)
	assert.Equal(t, "guides-getting-started", guide.ID)
	assert.Equal(t, []string{"guide", "latest"}, guide.Tags)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), guide.Published.UTC())

	note := received["notes/quick-note"]
	require.NotNil(t, note)
	assert.Equal(t, "Quick Note", note.Title)
	assert.Equal(t, []string{"drama"}, note.Tags)
	assert.Equal(t, "A short note.\n", note.Body)
}

func TestLocalFileSystemManager_WalkCancelled(t *testing.T) {
	fsm := blogcore.NewLocalFileSystemManager(filepath.Join("testdata", "content"), nil, blogcore.FrontmatterYAML)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	posts, errs := fsm.Walk(ctx)

	var received int
	for range posts {
		received++
	}
	assert.Zero(t, received)

	var walkErr error
	for err := range errs {
		walkErr = err
	}
	assert.ErrorIs(t, walkErr, context.Canceled)
}

func TestLocalFileSystemManager_ReadWriteDelete(t *testing.T) {
	formats := []blogcore.FrontmatterFormat{blogcore.FrontmatterYAML, blogcore.FrontmatterTOML}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			ctx := context.Background()
			fsm := blogcore.NewLocalFileSystemManager(t.TempDir(), nil, format)

			post := &blogcore.Post{
				ID:        "abc",
				Slug:      "nested/my-post",
				Title:     "My Post",
				Author:    "Test Author",
				Body:      "Foo bar is baz\n\n![](/a.png)",
				Published: time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
				Tags:      []string{"action", "featured"},
			}
			require.NoError(t, fsm.Write(ctx, post))

			readPost, err := fsm.Read(ctx, "nested/my-post")
			require.NoError(t, err)
			assert.Equal(t, "abc", readPost.ID)
			assert.Equal(t, "nested/my-post", readPost.Slug)
			assert.Equal(t, "My Post", readPost.Title)
			assert.Equal(t, "Test Author", readPost.Author)
			assert.Equal(t, []string{"action", "featured"}, readPost.Tags)
			assert.True(t, post.Published.Equal(readPost.Published))
			assert.Equal(t, "Foo bar is baz\n\n![](/a.png)\n", readPost.Body)

			require.NoError(t, fsm.Delete(ctx, "nested/my-post"))

			_, err = fsm.Read(ctx, "nested/my-post")
			assert.ErrorIs(t, err, blogcore.ErrPostNotFound)
		})
	}
}

func TestLocalFileSystemManager_WriteSlugFromTitle(t *testing.T) {
	dir := t.TempDir()
	fsm := blogcore.NewLocalFileSystemManager(dir, nil, blogcore.FrontmatterYAML)

	post := &blogcore.Post{Title: "Hello World", Body: "body"}
	require.NoError(t, fsm.Write(context.Background(), post))

	assert.Equal(t, "hello-world", post.Slug)
	_, err := os.Stat(filepath.Join(dir, "hello-world.md"))
	assert.NoError(t, err)

	assert.ErrorIs(t, fsm.Write(context.Background(), &blogcore.Post{}), blogcore.ErrInvalidPostID)
}

func TestLocalFileSystemManager_Concurrency(t *testing.T) {
	fsm := blogcore.NewLocalFileSystemManager(t.TempDir(), nil, blogcore.FrontmatterYAML)

	concurrentOps := 50
	errChan := make(chan error, concurrentOps)

	for i := 0; i < concurrentOps; i++ {
		go func(i int) {
			post := &blogcore.Post{
				Slug:  fmt.Sprintf("concurrent-post-%d", i),
				Title: fmt.Sprintf("Concurrent Post %d", i),
				Body:  fmt.Sprintf("This is concurrent post %d.", i),
			}

			if err := fsm.Write(context.Background(), post); err != nil {
				errChan <- err
				return
			}

			if _, err := fsm.Read(context.Background(), post.Slug); err != nil {
				errChan <- err
				return
			}

			errChan <- fsm.Delete(context.Background(), post.Slug)
		}(i)
	}

	for i := 0; i < concurrentOps; i++ {
		assert.NoError(t, <-errChan)
	}
}
