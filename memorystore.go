package blogcore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryPostStore implements PostStore using in-memory storage.
// Posts with the same published date are returned in insertion order.
type MemoryPostStore struct {
	posts map[string]*Post
	order []string
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryPostStore creates a new MemoryPostStore
func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{
		posts: make(map[string]*Post),
		now:   time.Now,
	}
}

// Init initializes the post store
func (m *MemoryPostStore) Init() error {
	return nil
}

// Clear clears all data from the post store
func (m *MemoryPostStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.posts = make(map[string]*Post)
	m.order = nil
	return nil
}

// Close closes the post store
func (m *MemoryPostStore) Close() error {
	return nil
}

// Create adds a new post to the store
func (m *MemoryPostStore) Create(_ context.Context, post *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := post.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	if _, exists := m.posts[stored.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrPostExists, stored.ID)
	}

	if stored.Published.IsZero() {
		stored.Published = m.now()
	}
	stored.Tags = NormalizeTags(stored.Tags)
	if stored.Likes == nil {
		stored.Likes = []string{}
	}

	m.posts[stored.ID] = stored
	m.order = append(m.order, stored.ID)
	return stored.Clone(), nil
}

// Update replaces an existing post in the store
func (m *MemoryPostStore) Update(_ context.Context, post *Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.posts[post.ID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrPostNotFound, post.ID)
	}

	stored := post.Clone()
	stored.Tags = NormalizeTags(stored.Tags)
	if stored.Published.IsZero() {
		stored.Published = current.Published
	}
	// Likes are only changed through AddLike and RemoveLike.
	stored.Likes = slices.Clone(current.Likes)

	m.posts[post.ID] = stored
	return nil
}

// Delete removes a post from the store
func (m *MemoryPostStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.posts[id]; !exists {
		return fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}

	delete(m.posts, id)
	m.order = slices.DeleteFunc(m.order, func(key string) bool { return key == id })
	return nil
}

// Get retrieves a post from the store
func (m *MemoryPostStore) Get(_ context.Context, id string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	post, exists := m.posts[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, id)
	}

	return post.Clone(), nil
}

// Recent returns posts newest first, optionally filtered by tag and limited.
func (m *MemoryPostStore) Recent(_ context.Context, opts RecentOptions) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var filtered []*Post
	for _, id := range m.order {
		post := m.posts[id]
		if opts.Tag != "" && !slices.Contains(post.Tags, opts.Tag) {
			continue
		}
		filtered = append(filtered, post.Clone())
	}

	sortNewestFirst(filtered)

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}

	return filtered, nil
}

// AddLike adds the viewer to the post's like set. Adding a present viewer is a no-op.
func (m *MemoryPostStore) AddLike(_ context.Context, postID, viewerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, exists := m.posts[postID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}

	if !slices.Contains(post.Likes, viewerID) {
		post.Likes = append(post.Likes, viewerID)
	}
	return nil
}

// RemoveLike removes the viewer from the post's like set. Removing an absent viewer is a no-op.
func (m *MemoryPostStore) RemoveLike(_ context.Context, postID, viewerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	post, exists := m.posts[postID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrPostNotFound, postID)
	}

	post.Likes = slices.DeleteFunc(post.Likes, func(id string) bool { return id == viewerID })
	return nil
}

// TagCounts returns the number of posts per tag.
func (m *MemoryPostStore) TagCounts(_ context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int)
	for _, post := range m.posts {
		for _, tag := range unique(post.Tags) {
			counts[tag]++
		}
	}

	return counts, nil
}

// sortNewestFirst stable-sorts posts by published date, newest first
func sortNewestFirst(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return compareTime(posts[i].Published, posts[j].Published) > 0
	})
}

// compareTime compares two time.Time values
func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func unique(slice []string) []string {
	result := make([]string, 0, len(slice))
	inResult := map[string]bool{}
	for _, item := range slice {
		if _, ok := inResult[item]; !ok {
			inResult[item] = true
			result = append(result, item)
		}
	}
	return result
}
