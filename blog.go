package blogcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"
)

const (
	DefaultFeaturedCount = 3
	DefaultLatestCount   = 4
	DefaultRelatedCount  = 3
)

// Blog is the main entry point: it ties the post store, the optional markdown directory,
// the viewer identity and the curation, search and like logic together.
type Blog struct {
	authors       map[string]Author
	curator       *Curator
	defaultAlt    string
	featuredCount int
	fs            FileSystemManager
	identity      IdentityProvider
	latestCount   int
	logger        *slog.Logger
	placeholder   string
	renderer      *Renderer
	store         PostStore
}

// Options is a struct for configuring a new Blog instance.
type Options struct {
	Authors          map[string]Author // Authors maps author names to profiles shown next to their posts.
	DefaultAlt       string            // DefaultAlt is the alt text of images without one. Default is the post title.
	FeaturedCount    int               // FeaturedCount is the number of featured posts on the home page. Default is 3.
	FileSystem       FileSystemManager // FileSystem mirrors posts to markdown files. Optional.
	Identity         IdentityProvider  // Identity returns the current viewer. Default is anonymous.
	LatestCount      int               // LatestCount is the number of latest posts on the home page. Default is 4.
	Logger           *slog.Logger      // Logger is the logger used by Blog. Default is a debug logger to stderr.
	PlaceholderCover string            // PlaceholderCover replaces missing cover images.
	Store            PostStore         // Store is the document store. Required.
}

// NewBlog creates a new Blog instance with the provided options.
func NewBlog(opts Options) (*Blog, error) {
	if opts.Store == nil {
		return nil, errors.New("Store is required")
	}

	if opts.Logger == nil {
		opts.Logger = defaultLogger()
	}

	if opts.Identity == nil {
		opts.Identity = StaticIdentity("")
	}

	if opts.FeaturedCount <= 0 {
		opts.FeaturedCount = DefaultFeaturedCount
	}

	if opts.LatestCount <= 0 {
		opts.LatestCount = DefaultLatestCount
	}

	if opts.PlaceholderCover == "" {
		opts.PlaceholderCover = DefaultCoverImage
	}

	return &Blog{
		authors:       opts.Authors,
		curator:       NewCurator(opts.Store),
		defaultAlt:    opts.DefaultAlt,
		featuredCount: opts.FeaturedCount,
		fs:            opts.FileSystem,
		identity:      opts.Identity,
		latestCount:   opts.LatestCount,
		logger:        opts.Logger,
		placeholder:   opts.PlaceholderCover,
		renderer:      NewRenderer(),
		store:         opts.Store,
	}, nil
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelDebug,
		}))
}

// Import reads every markdown file from the file system and creates or updates the matching posts.
// It returns the number of posts imported.
func (b *Blog) Import(ctx context.Context) (int, error) {
	if b.fs == nil {
		return 0, errors.New("no file system configured")
	}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	count := 0
	posts, errs := b.fs.Walk(walkCtx)

	for post := range posts {
		if err := b.importPost(ctx, post); err != nil {
			// Stop the walker and drain it so its goroutine can exit.
			cancel()
			for range posts {
			}
			return count, err
		}
		count++
	}

	// Check for any errors from Walk
	for err := range errs {
		return count, fmt.Errorf("error walking filesystem: %w", err)
	}

	b.logger.Info("Import complete", slog.Int("posts", count))
	return count, nil
}

func (b *Blog) importPost(ctx context.Context, post *Post) error {
	if err := b.prepare(post); err != nil {
		return fmt.Errorf("invalid post %s: %w", post.Slug, err)
	}

	current, err := b.store.Get(ctx, post.ID)
	if errors.Is(err, ErrPostNotFound) {
		if _, err := b.store.Create(ctx, post); err != nil {
			return fmt.Errorf("error creating post %s: %w", post.ID, err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("error getting post %s: %w", post.ID, err)
	}

	// If the post already exists, update it
	if !post.HasPublished() {
		post.Published = current.Published
	}
	if err := b.store.Update(ctx, post); err != nil {
		return fmt.Errorf("error updating existing post %s: %w", post.ID, err)
	}
	return nil
}

// CreatePost validates and stores a new post. The store assigns the ID and the published date
// when they are empty, and the like set always starts empty.
func (b *Blog) CreatePost(ctx context.Context, post *Post) (*Post, error) {
	if err := b.prepare(post); err != nil {
		return nil, err
	}
	post.Likes = []string{}

	newPost, err := b.store.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error adding to store: %w", err)
	}

	if b.fs != nil {
		if err := b.fs.Write(ctx, newPost); err != nil {
			// Rollback: delete from store if the file write fails
			if delErr := b.store.Delete(ctx, newPost.ID); delErr != nil {
				return nil, fmt.Errorf("failed to write file and rollback failed: %v, %w", delErr, err)
			}
			return nil, fmt.Errorf("error writing to filesystem: %w", err)
		}
	}

	b.logger.Debug("post created", slog.String("id", newPost.ID), slog.String("slug", newPost.Slug))
	return newPost, nil
}

// UpdatePost replaces the editable fields of an existing post. Likes are left untouched.
func (b *Blog) UpdatePost(ctx context.Context, post *Post) error {
	if post.ID == "" {
		return ErrInvalidPostID
	}

	if err := b.prepare(post); err != nil {
		return err
	}

	current, err := b.store.Get(ctx, post.ID)
	if err != nil {
		return fmt.Errorf("error getting post %s: %w", post.ID, err)
	}

	post.Updated = time.Now().UTC()
	if err := b.store.Update(ctx, post); err != nil {
		return fmt.Errorf("error updating in store: %w", err)
	}

	if b.fs != nil {
		if err := b.fs.Write(ctx, post); err != nil {
			// Rollback: restore the previous version in the store
			if rbErr := b.store.Update(ctx, current); rbErr != nil {
				return fmt.Errorf("failed to write file and rollback failed: %v, %w", rbErr, err)
			}
			return fmt.Errorf("error writing to filesystem: %w", err)
		}
		if current.Slug != post.Slug && current.Slug != "" {
			if err := b.fs.Delete(ctx, current.Slug); err != nil && !errors.Is(err, os.ErrNotExist) {
				b.logger.Error("failed to remove renamed post file",
					slog.String("slug", current.Slug),
					slog.String("error", err.Error()))
			}
		}
	}

	return nil
}

// DeletePost removes the post record.
func (b *Blog) DeletePost(ctx context.Context, id string) error {
	post, err := b.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting post %s: %w", id, err)
	}

	if err := b.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting from store: %w", err)
	}

	if b.fs != nil && post.Slug != "" {
		// Note: the store is the source of truth, so a stale file is only logged
		if err := b.fs.Delete(ctx, post.Slug); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.logger.Error("failed to delete post file",
				slog.String("slug", post.Slug),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// GetPost returns the post with the given ID.
func (b *Blog) GetPost(ctx context.Context, id string) (*Post, error) {
	return b.store.Get(ctx, id)
}

// Home selects the featured and latest sections of the home page. When the store fails, the
// sections are empty and the error is returned so the page can still render.
func (b *Blog) Home(ctx context.Context) (Curation, error) {
	curation, err := b.curator.Home(ctx, b.featuredCount, b.latestCount)
	if err != nil {
		b.logger.Error("failed to curate home page", slog.String("error", err.Error()))
	}
	return curation, err
}

// Search returns every post matching term, newest first. On a fetch failure the result is empty.
func (b *Blog) Search(ctx context.Context, term string) ([]*Post, error) {
	posts, err := b.store.Recent(ctx, RecentOptions{})
	if err != nil {
		b.logger.Error("failed to fetch posts for search", slog.String("error", err.Error()))
		return []*Post{}, fmt.Errorf("error fetching posts: %w", err)
	}

	return FilterPosts(posts, term), nil
}

// List returns one page of the listing page.
func (b *Blog) List(ctx context.Context, opts ListOptions) (Paginator, error) {
	posts, err := b.store.Recent(ctx, RecentOptions{Tag: opts.FilterTag})
	if err != nil {
		b.logger.Error("failed to fetch posts for listing", slog.String("error", err.Error()))
		return NewPaginator(nil, 1, opts.PageSize, false), fmt.Errorf("error fetching posts: %w", err)
	}

	posts = FilterPosts(posts, opts.FilterSearch)
	return NewPaginator(posts, opts.PageNum, opts.PageSize, opts.SplitFeatured), nil
}

// ToggleLike flips the current viewer's like on the post and returns the post as the viewer should
// see it. Anonymous viewers get ErrUnauthenticated and nothing is changed. When the store rejects
// the mutation the returned post carries the like set from before the toggle, along with the error.
func (b *Blog) ToggleLike(ctx context.Context, postID string) (*Post, error) {
	viewerID, ok := b.identity.CurrentViewer(ctx)
	if !ok {
		b.logger.Warn("like rejected for anonymous viewer", slog.String("post", postID))
		return nil, ErrUnauthenticated
	}

	post, err := b.store.Get(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error getting post %s: %w", postID, err)
	}

	toggle := NewLikeToggle(post, viewerID)
	err = toggle.Toggle(ctx, b.store)
	post.Likes = toggle.Likes()
	if err != nil {
		b.logger.Error("like toggle rolled back",
			slog.String("post", postID),
			slog.String("viewer", viewerID),
			slog.String("error", err.Error()))
		return post, err
	}

	return post, nil
}

// RelatedPosts returns up to n other posts sharing at least one free tag with the post, newest first.
func (b *Blog) RelatedPosts(ctx context.Context, post *Post, n int) ([]*Post, error) {
	if n <= 0 {
		n = DefaultRelatedCount
	}

	tags := post.FreeTags()
	if len(tags) == 0 {
		return []*Post{}, nil
	}

	posts, err := b.store.Recent(ctx, RecentOptions{})
	if err != nil {
		return []*Post{}, fmt.Errorf("error fetching posts: %w", err)
	}

	related := make([]*Post, 0, n)
	for _, candidate := range posts {
		if len(related) >= n {
			break
		}
		if candidate.ID == post.ID {
			continue
		}
		if slices.ContainsFunc(candidate.FreeTags(), func(tag string) bool { return slices.Contains(tags, tag) }) {
			related = append(related, candidate)
		}
	}

	return related, nil
}

// TagCounts returns the number of posts per free tag.
func (b *Blog) TagCounts(ctx context.Context) (map[string]int, error) {
	counts, err := b.store.TagCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting tag counts: %w", err)
	}

	for _, category := range AllCategories() {
		delete(counts, category.String())
	}
	return counts, nil
}

// Render returns the HTML body of the post.
func (b *Blog) Render(post *Post) (string, error) {
	if b.defaultAlt != "" {
		return b.renderer.RenderSegments(SegmentBody(post.Body, b.defaultAlt))
	}
	return b.renderer.RenderPost(post)
}

// CoverImage returns the cover image of the post or the configured placeholder.
func (b *Blog) CoverImage(post *Post) string {
	return post.CoverImageURL(b.placeholder)
}

// AuthorProfile returns the configured profile for the author, or a generic one.
func (b *Blog) AuthorProfile(name string) Author {
	if author, ok := b.authors[name]; ok {
		if author.Name == "" {
			author.Name = name
		}
		return author
	}
	return defaultAuthor(name)
}

// prepare validates the post and fills the defaults shared by create, update and import.
func (b *Blog) prepare(post *Post) error {
	if err := post.Validate(); err != nil {
		return err
	}

	if strings.TrimSpace(post.Author) == "" {
		post.Author = DefaultAuthor
	}

	if post.Slug == "" {
		post.Slug = MakeSlug(post.Title)
	}

	post.Tags = NormalizeTags(post.Tags)
	return nil
}
