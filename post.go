package blogcore

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultAuthor is used when a post is created without an author.
const DefaultAuthor = "Admin"

// DefaultCoverImage is the placeholder used when a post has no cover image.
const DefaultCoverImage = "/placeholder.svg"

// Post represents a blog post
type Post struct {
	ID          string    `json:"id"`          // ID is the opaque identifier assigned by the store
	Slug        string    `json:"slug"`        // Slug is the URL-friendly version of the title
	Title       string    `json:"title"`       // Title is the title of the post
	Description string    `json:"description"` // Description is the short summary used for cards and meta tags
	Body        string    `json:"body"`        // Body is plain text interleaved with ![alt](url) image markers
	CoverImage  string    `json:"coverImage"`  // CoverImage is the URL of the cover image
	Author      string    `json:"author"`      // Author is the display name of the author
	Published   time.Time `json:"published"`   // Published is the publish timestamp, filled by the store on create
	Updated     time.Time `json:"updated"`     // Updated is the last modified date
	Tags        []string  `json:"tags"`        // Tags is the ordered tag list, including category tags
	Likes       []string  `json:"likes"`       // Likes is the set of viewer ids who liked the post
}

// Clone returns a deep copy of the post so callers can hold a local view without sharing slices.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.Likes = slices.Clone(p.Likes)
	return &c
}

// Categories returns the category flags derived from the tag list.
func (p *Post) Categories() Categories {
	return ClassifyTags(p.Tags).Categories
}

// IsFeatured returns true if the post carries the featured tag
func (p *Post) IsFeatured() bool {
	return slices.Contains(p.Tags, CategoryFeatured.String())
}

// IsLatest returns true if the post carries the latest tag
func (p *Post) IsLatest() bool {
	return slices.Contains(p.Tags, CategoryLatest.String())
}

// SetCategory keeps the category flag and the tag list in sync. It is what an editor checkbox should call.
func (p *Post) SetCategory(category Category, enabled bool) {
	p.Tags = WithCategory(p.Tags, category, enabled)
}

// FreeTags returns the tags that are not categories, in display order.
func (p *Post) FreeTags() []string {
	return FreeTags(p.Tags)
}

// AddTag appends a tag unless it is already present.
func (p *Post) AddTag(tag string) {
	p.Tags = AddTag(p.Tags, tag)
}

// LikeCount returns the number of viewers who liked the post.
func (p *Post) LikeCount() int {
	return len(p.Likes)
}

// IsLikedBy returns true if the viewer is in the like set.
func (p *Post) IsLikedBy(viewerID string) bool {
	return viewerID != "" && slices.Contains(p.Likes, viewerID)
}

// HasCoverImage returns true if the post has a cover image
func (p *Post) HasCoverImage() bool {
	return p.CoverImage != ""
}

// CoverImageURL returns the cover image or the placeholder.
func (p *Post) CoverImageURL(placeholder string) string {
	if p.HasCoverImage() {
		return p.CoverImage
	}
	if placeholder == "" {
		return DefaultCoverImage
	}
	return placeholder
}

// HasPublished returns true if the post has a published date
func (p *Post) HasPublished() bool {
	return !p.Published.IsZero()
}

// PublishedDate returns the published date in the format Jan 2, 2006
func (p *Post) PublishedDate() string {
	if !p.HasPublished() {
		return ""
	}

	return p.Published.Format("Jan 2, 2006")
}

// PublishedAgo returns the published date relative to now, e.g. "3 days ago".
func (p *Post) PublishedAgo() string {
	if !p.HasPublished() {
		return ""
	}

	return humanize.Time(p.Published)
}

// HasUpdated returns true if the post has a last modified date
func (p *Post) HasUpdated() bool {
	return !p.Updated.IsZero()
}

// AuthorInitial returns the first letter of the author for avatar placeholders.
func (p *Post) AuthorInitial() string {
	for _, r := range strings.TrimSpace(p.Author) {
		return strings.ToUpper(string(r))
	}
	return ""
}

// EstimatedReadTime returns the estimated reading time of the body.
func (p *Post) EstimatedReadTime() string {
	return EstimateReadingTime(p.Body)
}

// ETag returns the entity tag of the body.
func (p *Post) ETag() string {
	return GenerateETag(p.Title + "\n" + p.Body)
}

// Validate checks the fields required to save a post.
func (p *Post) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrMissingPostTitle
	}

	if strings.TrimSpace(p.Body) == "" {
		return fmt.Errorf("%w: post %q has an empty body", ErrMissingPostContent, p.Title)
	}

	return nil
}

// Serialize serializes the post to a byte slice
func (p *Post) Serialize() ([]byte, error) {
	return json.Marshal(p)
}

// Deserialize deserializes the byte slice to a post
func Deserialize(data []byte) (*Post, error) {
	var post Post
	err := json.Unmarshal(data, &post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
