package blogcore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/blogcore"
)

var errFetch = errors.New("fetch failed")

// failingFetcher fails every Recent call after the first okCalls.
type failingFetcher struct {
	inner   blogcore.PostFetcher
	okCalls int
	calls   int
}

func (f *failingFetcher) Recent(ctx context.Context, opts blogcore.RecentOptions) ([]*blogcore.Post, error) {
	f.calls++
	if f.calls > f.okCalls {
		return nil, errFetch
	}
	return f.inner.Recent(ctx, opts)
}

type seedPost struct {
	id   string
	tags []string
}

// seedStore creates posts in order, each one hour newer than the previous.
func seedStore(t *testing.T, posts ...seedPost) *blogcore.MemoryPostStore {
	t.Helper()

	store := blogcore.NewMemoryPostStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range posts {
		_, err := store.Create(context.Background(), &blogcore.Post{
			ID:        p.id,
			Title:     fmt.Sprintf("Post %s", p.id),
			Body:      "body",
			Published: base.Add(time.Duration(i) * time.Hour),
			Tags:      p.tags,
		})
		require.NoError(t, err)
	}
	return store
}

func postIDs(posts []*blogcore.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestCurator_Featured(t *testing.T) {
	tests := []struct {
		name  string
		posts []seedPost
		n     int
		want  []string
	}{
		{
			name:  "tagged posts newest first",
			posts: []seedPost{{"a", []string{"featured"}}, {"b", nil}, {"c", []string{"featured"}}},
			n:     3,
			want:  []string{"c", "a"},
		},
		{
			name:  "capped at n",
			posts: []seedPost{{"a", []string{"featured"}}, {"b", []string{"featured"}}, {"c", []string{"featured"}}, {"d", []string{"featured"}}},
			n:     3,
			want:  []string{"d", "c", "b"},
		},
		{
			name:  "no featured falls back to newest",
			posts: []seedPost{{"a", nil}, {"b", []string{"latest"}}, {"c", nil}, {"d", nil}, {"e", nil}},
			n:     3,
			want:  []string{"e", "d", "c"},
		},
		{
			name:  "empty store",
			posts: nil,
			n:     3,
			want:  []string{},
		},
		{
			name:  "zero n",
			posts: []seedPost{{"a", []string{"featured"}}},
			n:     0,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curator := blogcore.NewCurator(seedStore(t, tt.posts...))

			got, err := curator.Featured(context.Background(), tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, postIDs(got))
		})
	}
}

func TestCurator_Latest(t *testing.T) {
	tests := []struct {
		name     string
		posts    []seedPost
		featured []string
		n        int
		want     []string
	}{
		{
			name:  "enough tagged posts",
			posts: []seedPost{{"a", []string{"latest"}}, {"b", []string{"latest"}}, {"c", []string{"latest"}}},
			n:     2,
			want:  []string{"c", "b"},
		},
		{
			name:     "top up skips featured and already selected",
			posts:    []seedPost{{"a", nil}, {"b", nil}, {"c", []string{"latest"}}, {"d", []string{"featured"}}, {"e", nil}},
			featured: []string{"d"},
			n:        4,
			want:     []string{"c", "e", "b", "a"},
		},
		{
			name:     "tagged post that is also featured is kept",
			posts:    []seedPost{{"a", nil}, {"b", []string{"featured", "latest"}}},
			featured: []string{"b"},
			n:        2,
			want:     []string{"b", "a"},
		},
		{
			name:     "pool exhausted",
			posts:    []seedPost{{"a", nil}, {"b", []string{"featured"}}},
			featured: []string{"b"},
			n:        4,
			want:     []string{"a"},
		},
		{
			name:     "exclusions do not starve the top up",
			posts:    []seedPost{{"a", nil}, {"b", nil}, {"c", []string{"featured"}}, {"d", []string{"featured"}}, {"e", []string{"featured"}}, {"f", []string{"featured"}}},
			featured: []string{"f", "e", "d", "c"},
			n:        2,
			want:     []string{"b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seedStore(t, tt.posts...)
			curator := blogcore.NewCurator(store)

			var featured []*blogcore.Post
			for _, id := range tt.featured {
				post, err := store.Get(context.Background(), id)
				require.NoError(t, err)
				featured = append(featured, post)
			}

			got, err := curator.Latest(context.Background(), featured, tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, postIDs(got))
		})
	}
}

func TestCurator_Home(t *testing.T) {
	store := seedStore(t,
		seedPost{"a", nil},
		seedPost{"b", nil},
		seedPost{"c", nil},
		seedPost{"d", nil},
		seedPost{"e", nil},
		seedPost{"f", nil},
		seedPost{"g", nil},
	)
	curator := blogcore.NewCurator(store)

	curation, err := curator.Home(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "f", "e"}, postIDs(curation.Featured))
	assert.Equal(t, []string{"d", "c", "b", "a"}, postIDs(curation.Latest))

	again, err := curator.Home(context.Background(), 3, 4)
	require.NoError(t, err)
	assert.Equal(t, postIDs(curation.Latest), postIDs(again.Latest), "deterministic")
}

func TestCurator_FetchErrors(t *testing.T) {
	store := seedStore(t, seedPost{"a", []string{"featured"}}, seedPost{"b", nil})

	tests := []struct {
		name         string
		okCalls      int
		wantFeatured []string
	}{
		{"featured fetch fails", 0, []string{}},
		{"latest fetch fails", 1, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			curator := blogcore.NewCurator(&failingFetcher{inner: store, okCalls: tt.okCalls})

			curation, err := curator.Home(context.Background(), 3, 4)
			assert.ErrorIs(t, err, errFetch)
			assert.Equal(t, tt.wantFeatured, postIDs(curation.Featured))
			assert.NotNil(t, curation.Latest)
			assert.Empty(t, curation.Latest)
		})
	}
}
