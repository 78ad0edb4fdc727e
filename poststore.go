package blogcore

import "context"

// RecentOptions contains the options for fetching posts newest first.
type RecentOptions struct {
	Tag   string // Only return posts carrying this tag. Empty means any post.
	Limit int    // Maximum number of posts to return. Zero or less means no limit.
}

// PostFetcher returns posts ordered by published date, newest first. Ties keep the store's natural order.
type PostFetcher interface {
	Recent(ctx context.Context, opts RecentOptions) ([]*Post, error)
}

// LikeMutator applies atomic set operations to a post's like set.
// Adding a present viewer or removing an absent one is a no-op.
type LikeMutator interface {
	AddLike(ctx context.Context, postID, viewerID string) error
	RemoveLike(ctx context.Context, postID, viewerID string) error
}

// PostStore is the document store backing the blog.
type PostStore interface {
	PostFetcher
	LikeMutator
	// Init initializes the post store, such as creating the necessary tables or indexes.
	Init() error
	// Close closes the post store.
	Close() error
	// Create creates a new post, assigning the ID and published date when they are empty.
	Create(ctx context.Context, post *Post) (*Post, error)
	// Get retrieves a post by its ID.
	Get(ctx context.Context, id string) (*Post, error)
	// Update replaces an existing post.
	Update(ctx context.Context, post *Post) error
	// Delete deletes a post.
	Delete(ctx context.Context, id string) error
	// TagCounts returns the number of posts per tag.
	TagCounts(ctx context.Context) (map[string]int, error)
}

// IdentityProvider returns the current viewer id, or false when nobody is signed in.
type IdentityProvider interface {
	CurrentViewer(ctx context.Context) (string, bool)
}

// StaticIdentity is an IdentityProvider that always returns the same viewer. The empty value is anonymous.
type StaticIdentity string

// CurrentViewer returns the viewer id, or false when it is empty.
func (s StaticIdentity) CurrentViewer(_ context.Context) (string, bool) {
	return string(s), s != ""
}
