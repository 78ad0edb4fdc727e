package blogcore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/blogcore"
)

// fakeLikes records like mutations and can be told to fail.
type fakeLikes struct {
	likes map[string]bool
	err   error
	calls []string
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{likes: make(map[string]bool)}
}

func (f *fakeLikes) AddLike(_ context.Context, postID, viewerID string) error {
	f.calls = append(f.calls, "add:"+postID+":"+viewerID)
	if f.err != nil {
		return f.err
	}
	f.likes[viewerID] = true
	return nil
}

func (f *fakeLikes) RemoveLike(_ context.Context, postID, viewerID string) error {
	f.calls = append(f.calls, "remove:"+postID+":"+viewerID)
	if f.err != nil {
		return f.err
	}
	delete(f.likes, viewerID)
	return nil
}

func TestLikeToggle_InitialState(t *testing.T) {
	post := &blogcore.Post{ID: "p1", Likes: []string{"alice"}}

	assert.Equal(t, blogcore.LikeLiked, blogcore.NewLikeToggle(post, "alice").State())
	assert.Equal(t, blogcore.LikeUnliked, blogcore.NewLikeToggle(post, "bob").State())
	assert.Equal(t, blogcore.LikeUnliked, blogcore.NewLikeToggle(post, "").State())
}

func TestLikeToggle_ToggleTwiceRestores(t *testing.T) {
	ctx := context.Background()
	store := newFakeLikes()
	post := &blogcore.Post{ID: "p1", Likes: []string{"alice"}}
	toggle := blogcore.NewLikeToggle(post, "bob")

	require.NoError(t, toggle.Toggle(ctx, store))
	assert.Equal(t, blogcore.LikeLiked, toggle.State())
	assert.True(t, toggle.Liked())
	assert.Equal(t, []string{"alice", "bob"}, toggle.Likes())
	assert.Equal(t, 2, toggle.Count())

	require.NoError(t, toggle.Toggle(ctx, store))
	assert.Equal(t, blogcore.LikeUnliked, toggle.State())
	assert.Equal(t, []string{"alice"}, toggle.Likes())

	assert.Equal(t, []string{"add:p1:bob", "remove:p1:bob"}, store.calls)
	assert.Equal(t, []string{"alice"}, post.Likes, "the post is not modified")
}

func TestLikeToggle_FailureRollsBack(t *testing.T) {
	tests := []struct {
		name      string
		likes     []string
		wantState blogcore.LikeState
	}{
		{"failed like", []string{"alice"}, blogcore.LikeUnliked},
		{"failed unlike", []string{"alice", "bob"}, blogcore.LikeLiked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storeErr := errors.New("store unavailable")
			store := newFakeLikes()
			store.err = storeErr

			toggle := blogcore.NewLikeToggle(&blogcore.Post{ID: "p1", Likes: tt.likes}, "bob")

			err := toggle.Toggle(context.Background(), store)
			assert.ErrorIs(t, err, storeErr)
			assert.Equal(t, tt.wantState, toggle.State())
			assert.Equal(t, tt.likes, toggle.Likes())
		})
	}
}

func TestLikeToggle_Unauthenticated(t *testing.T) {
	store := newFakeLikes()
	toggle := blogcore.NewLikeToggle(&blogcore.Post{ID: "p1"}, "")

	err := toggle.Toggle(context.Background(), store)
	assert.ErrorIs(t, err, blogcore.ErrUnauthenticated)
	assert.Empty(t, store.calls)
	assert.Equal(t, blogcore.LikeUnliked, toggle.State())
	assert.Empty(t, toggle.Likes())
}

func TestLikeToggle_BeginWhilePending(t *testing.T) {
	toggle := blogcore.NewLikeToggle(&blogcore.Post{ID: "p1"}, "bob")

	mutation, err := toggle.Begin()
	require.NoError(t, err)
	assert.Equal(t, blogcore.LikeMutation{Op: blogcore.LikeOpAdd, PostID: "p1", ViewerID: "bob"}, mutation)
	assert.Equal(t, blogcore.LikePendingLike, toggle.State())
	assert.True(t, toggle.State().IsPending())
	assert.Equal(t, 1, toggle.Count(), "optimistic count")

	_, err = toggle.Begin()
	assert.ErrorIs(t, err, blogcore.ErrToggleInFlight)

	toggle.Settle(nil)
	assert.Equal(t, blogcore.LikeLiked, toggle.State())

	mutation, err = toggle.Begin()
	require.NoError(t, err)
	assert.Equal(t, blogcore.LikeOpRemove, mutation.Op)
	assert.Equal(t, blogcore.LikePendingUnlike, toggle.State())
	assert.Equal(t, 0, toggle.Count())
}

func TestLikeToggle_SettleWithoutPendingIsNoop(t *testing.T) {
	toggle := blogcore.NewLikeToggle(&blogcore.Post{ID: "p1", Likes: []string{"bob"}}, "bob")

	toggle.Settle(errors.New("late failure"))
	assert.Equal(t, blogcore.LikeLiked, toggle.State())
	assert.Equal(t, []string{"bob"}, toggle.Likes())
}

func TestLikeState_String(t *testing.T) {
	assert.Equal(t, "unliked", blogcore.LikeUnliked.String())
	assert.Equal(t, "pending-like", blogcore.LikePendingLike.String())
	assert.Equal(t, "liked", blogcore.LikeLiked.String())
	assert.Equal(t, "pending-unlike", blogcore.LikePendingUnlike.String())
}
