package blogcore

import (
	"context"
	"fmt"
	"slices"
)

// LikeState is the state of one (post, viewer) pair.
type LikeState int

const (
	LikeUnliked LikeState = iota
	LikePendingLike
	LikeLiked
	LikePendingUnlike
)

// String returns the name of the state.
func (s LikeState) String() string {
	switch s {
	case LikeUnliked:
		return "unliked"
	case LikePendingLike:
		return "pending-like"
	case LikeLiked:
		return "liked"
	case LikePendingUnlike:
		return "pending-unlike"
	default:
		return fmt.Sprintf("LikeState(%d)", int(s))
	}
}

// IsPending returns true while a remote mutation is outstanding.
func (s LikeState) IsPending() bool {
	return s == LikePendingLike || s == LikePendingUnlike
}

// LikeOp is the remote set operation a toggle issues.
type LikeOp string

const (
	LikeOpAdd    LikeOp = "add"
	LikeOpRemove LikeOp = "remove"
)

// LikeMutation describes the remote mutation issued by LikeToggle.Begin.
type LikeMutation struct {
	Op       LikeOp
	PostID   string
	ViewerID string
}

// Apply sends the mutation to the store.
func (m LikeMutation) Apply(ctx context.Context, store LikeMutator) error {
	if m.Op == LikeOpAdd {
		return store.AddLike(ctx, m.PostID, m.ViewerID)
	}
	return store.RemoveLike(ctx, m.PostID, m.ViewerID)
}

// LikeToggle tracks the like state of one viewer on one post together with the local like set
// used for rendering. Transitions for a pair are serialized: Begin refuses to start while a
// previous mutation has not been settled.
type LikeToggle struct {
	postID    string
	viewerID  string
	state     LikeState
	likes     []string
	confirmed []string
}

// NewLikeToggle builds the toggle for viewerID from the post's current like set.
// An empty viewerID is anonymous and can never toggle.
func NewLikeToggle(post *Post, viewerID string) *LikeToggle {
	likes := slices.Clone(post.Likes)
	state := LikeUnliked
	if viewerID != "" && slices.Contains(likes, viewerID) {
		state = LikeLiked
	}

	return &LikeToggle{
		postID:    post.ID,
		viewerID:  viewerID,
		state:     state,
		likes:     likes,
		confirmed: slices.Clone(likes),
	}
}

// State returns the current state.
func (lt *LikeToggle) State() LikeState {
	return lt.state
}

// Liked returns the optimistic answer to "has this viewer liked the post".
func (lt *LikeToggle) Liked() bool {
	return lt.state == LikeLiked || lt.state == LikePendingLike
}

// Likes returns a copy of the local like set.
func (lt *LikeToggle) Likes() []string {
	return slices.Clone(lt.likes)
}

// Count returns the size of the local like set.
func (lt *LikeToggle) Count() int {
	return len(lt.likes)
}

// Begin starts a transition. It updates the local like set optimistically, moves to the pending
// state and returns the mutation the caller must apply remotely before calling Settle.
func (lt *LikeToggle) Begin() (LikeMutation, error) {
	if lt.viewerID == "" {
		return LikeMutation{}, ErrUnauthenticated
	}

	if lt.state.IsPending() {
		return LikeMutation{}, fmt.Errorf("%w: post %s", ErrToggleInFlight, lt.postID)
	}

	mutation := LikeMutation{PostID: lt.postID, ViewerID: lt.viewerID}
	switch lt.state {
	case LikeUnliked:
		mutation.Op = LikeOpAdd
		if !slices.Contains(lt.likes, lt.viewerID) {
			lt.likes = append(lt.likes, lt.viewerID)
		}
		lt.state = LikePendingLike
	case LikeLiked:
		mutation.Op = LikeOpRemove
		lt.likes = slices.DeleteFunc(lt.likes, func(id string) bool { return id == lt.viewerID })
		lt.state = LikePendingUnlike
	}

	return mutation, nil
}

// Settle finishes a pending transition. A nil error confirms it; otherwise the local like set
// and state go back to the last confirmed values. Settle does nothing when no transition is pending.
func (lt *LikeToggle) Settle(err error) {
	if !lt.state.IsPending() {
		return
	}

	if err != nil {
		lt.likes = slices.Clone(lt.confirmed)
		if lt.state == LikePendingLike {
			lt.state = LikeUnliked
		} else {
			lt.state = LikeLiked
		}
		return
	}

	lt.confirmed = slices.Clone(lt.likes)
	if lt.state == LikePendingLike {
		lt.state = LikeLiked
	} else {
		lt.state = LikeUnliked
	}
}

// Toggle flips the viewer's like: Begin, apply the mutation through store, then Settle.
// A store failure is returned after the local view has been rolled back.
func (lt *LikeToggle) Toggle(ctx context.Context, store LikeMutator) error {
	mutation, err := lt.Begin()
	if err != nil {
		return err
	}

	err = mutation.Apply(ctx, store)
	lt.Settle(err)
	if err != nil {
		return fmt.Errorf("error applying %s like on post %s: %w", mutation.Op, mutation.PostID, err)
	}

	return nil
}
