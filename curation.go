package blogcore

import (
	"context"
	"fmt"
)

// Curation holds the posts selected for the home page sections.
type Curation struct {
	Featured []*Post
	Latest   []*Post
}

// Curator selects the featured and latest posts for the home page.
type Curator struct {
	posts PostFetcher
}

// NewCurator returns a Curator reading from the given fetcher.
func NewCurator(posts PostFetcher) *Curator {
	return &Curator{posts: posts}
}

// Featured returns up to n posts tagged featured, newest first. When none are tagged it falls back
// to the n newest posts overall.
func (c *Curator) Featured(ctx context.Context, n int) ([]*Post, error) {
	if n <= 0 {
		return []*Post{}, nil
	}

	featured, err := c.posts.Recent(ctx, RecentOptions{Tag: CategoryFeatured.String(), Limit: n})
	if err != nil {
		return []*Post{}, fmt.Errorf("error fetching featured posts: %w", err)
	}

	if len(featured) > 0 {
		return capPosts(featured, n), nil
	}

	recent, err := c.posts.Recent(ctx, RecentOptions{Limit: n})
	if err != nil {
		return []*Post{}, fmt.Errorf("error fetching recent posts: %w", err)
	}

	return capPosts(recent, n), nil
}

// Latest returns up to n posts tagged latest, newest first. When fewer than n are tagged the result
// is topped up with the newest posts overall, skipping anything already in featured or in the result.
func (c *Curator) Latest(ctx context.Context, featured []*Post, n int) ([]*Post, error) {
	if n <= 0 {
		return []*Post{}, nil
	}

	tagged, err := c.posts.Recent(ctx, RecentOptions{Tag: CategoryLatest.String(), Limit: n})
	if err != nil {
		return []*Post{}, fmt.Errorf("error fetching latest posts: %w", err)
	}

	latest := make([]*Post, 0, n)
	seen := make(map[string]bool, len(featured)+n)
	for _, post := range featured {
		seen[post.ID] = true
	}

	// Tagged posts are kept even when they are also featured; only the top up skips them.
	tagged = capPosts(tagged, n)
	for _, post := range tagged {
		latest = append(latest, post)
		seen[post.ID] = true
	}

	if len(latest) >= n {
		return latest, nil
	}

	// The whole pool is fetched so exclusions cannot starve the top up.
	pool, err := c.posts.Recent(ctx, RecentOptions{})
	if err != nil {
		return []*Post{}, fmt.Errorf("error fetching recent posts: %w", err)
	}

	for _, post := range pool {
		if len(latest) >= n {
			break
		}
		if seen[post.ID] {
			continue
		}
		seen[post.ID] = true
		latest = append(latest, post)
	}

	return latest, nil
}

// Home selects both home page sections. On error the failing section is empty and the error is returned.
func (c *Curator) Home(ctx context.Context, featuredN, latestN int) (Curation, error) {
	featured, err := c.Featured(ctx, featuredN)
	if err != nil {
		return Curation{Featured: []*Post{}, Latest: []*Post{}}, err
	}

	latest, err := c.Latest(ctx, featured, latestN)
	if err != nil {
		return Curation{Featured: featured, Latest: []*Post{}}, err
	}

	return Curation{Featured: featured, Latest: latest}, nil
}

func capPosts(posts []*Post, n int) []*Post {
	if len(posts) > n {
		return posts[:n]
	}
	return posts
}
