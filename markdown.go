package blogcore

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/frontmatter"
	"gopkg.in/yaml.v3"
)

type FrontmatterFormat string

const (
	FrontmatterTOML FrontmatterFormat = "toml"
	FrontmatterYAML FrontmatterFormat = "yaml"
)

// PostMeta represents the frontmatter of a post file
type PostMeta struct {
	ID          string    `yaml:"id,omitempty" toml:"id,omitempty"`
	Title       string    `yaml:"title,omitempty" toml:"title,omitempty"`
	Description string    `yaml:"description,omitempty" toml:"description,omitempty"`
	CoverImage  string    `yaml:"coverImage,omitempty" toml:"coverImage,omitempty"`
	Author      string    `yaml:"author,omitempty" toml:"author,omitempty"`
	Published   time.Time `yaml:"published,omitempty" toml:"published,omitempty"`
	Tags        []string  `yaml:"tags,omitempty" toml:"tags,omitempty"`
	Featured    bool      `yaml:"featured,omitempty" toml:"featured,omitempty"`
	Latest      bool      `yaml:"latest,omitempty" toml:"latest,omitempty"`
}

// Meta returns the frontmatter for the post. Category tags are reported as flags, not tags.
func (p *Post) Meta() *PostMeta {
	set := ClassifyTags(p.Tags)
	return &PostMeta{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CoverImage:  p.CoverImage,
		Author:      p.Author,
		Published:   p.Published,
		Tags:        set.Free,
		Featured:    set.Categories.Featured,
		Latest:      set.Categories.Latest,
	}
}

// Apply copies the frontmatter onto the post. The featured and latest flags are merged into the tags.
func (pm *PostMeta) Apply(post *Post) {
	post.ID = pm.ID
	post.Title = pm.Title
	post.Description = pm.Description
	post.CoverImage = pm.CoverImage
	post.Author = pm.Author
	post.Published = pm.Published

	tags := NormalizeTags(pm.Tags)
	if pm.Featured {
		tags = WithCategory(tags, CategoryFeatured, true)
	}
	if pm.Latest {
		tags = WithCategory(tags, CategoryLatest, true)
	}
	post.Tags = tags
}

type MarkdownParserFunc func(input []byte) (*Post, error)

// DefaultMarkdownParser returns a MarkdownParserFunc that reads YAML (---) or TOML (+++) frontmatter
// with the goldmark frontmatter extension. The remaining text becomes the raw post body.
func DefaultMarkdownParser() MarkdownParserFunc {
	md := goldmark.New(
		goldmark.WithExtensions(
			&frontmatter.Extender{},
		),
	)

	return func(input []byte) (*Post, error) {
		return MarkdownToPost(md, input)
	}
}

// MarkdownToPost converts a markdown file with optional frontmatter to a Post.
func MarkdownToPost(md goldmark.Markdown, content []byte) (*Post, error) {
	ctx := parser.NewContext()
	md.Parser().Parse(text.NewReader(content), parser.WithContext(ctx))

	post := &Post{Body: string(stripFrontmatter(content))}

	data := frontmatter.Get(ctx)
	if data == nil {
		// No frontmatter found
		return post, nil
	}

	meta := PostMeta{}
	if err := data.Decode(&meta); err != nil {
		return post, fmt.Errorf("failed to decode frontmatter: %w", err)
	}

	meta.Apply(post)
	return post, nil
}

// GenerateFrontmatter encodes the post metadata in the given format, without delimiters.
func GenerateFrontmatter(meta *PostMeta, format FrontmatterFormat) (string, error) {
	var fm strings.Builder

	if meta == nil {
		return "", nil
	}

	switch format {
	case FrontmatterYAML:
		yamlData, err := yaml.Marshal(meta)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML frontmatter: %w", err)
		}
		fm.Write(yamlData)

	case FrontmatterTOML:
		encoder := toml.NewEncoder(&fm)
		if err := encoder.Encode(meta); err != nil {
			return "", fmt.Errorf("failed to marshal TOML frontmatter: %w", err)
		}

	default:
		return "", fmt.Errorf("unsupported frontmatter format: %s", format)
	}

	return fm.String(), nil
}

// PostToMarkdown renders the post as a markdown file with frontmatter.
func PostToMarkdown(post *Post, format FrontmatterFormat) ([]byte, error) {
	fm, err := GenerateFrontmatter(post.Meta(), format)
	if err != nil {
		return nil, err
	}

	switch format {
	case FrontmatterYAML:
		return []byte(fmt.Sprintf("---\n%s---\n\n%s\n", fm, post.Body)), nil
	default:
		return []byte(fmt.Sprintf("+++\n%s+++\n\n%s\n", fm, post.Body)), nil
	}
}

// stripFrontmatter returns the content after a leading --- or +++ block.
func stripFrontmatter(content []byte) []byte {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	var delim []byte
	switch {
	case bytes.HasPrefix(content, []byte("---\n")):
		delim = []byte("---")
	case bytes.HasPrefix(content, []byte("+++\n")):
		delim = []byte("+++")
	default:
		return content
	}

	rest := content[len(delim)+1:]
	for offset := 0; offset < len(rest); {
		end := bytes.IndexByte(rest[offset:], '\n')
		line := rest[offset:]
		if end >= 0 {
			line = rest[offset : offset+end]
		}

		if bytes.Equal(bytes.TrimSpace(line), delim) {
			if end < 0 {
				return []byte{}
			}
			return bytes.TrimLeft(rest[offset+end+1:], "\n")
		}

		if end < 0 {
			break
		}
		offset += end + 1
	}

	// Unterminated block: treat everything as body.
	return content
}

// GenerateETag generates an ETag for the content.
func GenerateETag(content string) string {
	hash := sha256.New()
	hash.Write([]byte(content))
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// EstimateReadingTime estimates the reading time of the content.
func EstimateReadingTime(content string) string {
	// Define reading speed in words per minute
	const wordsPerMinute = 200

	// Image markers are not read
	words := len(strings.Fields(imageMarker.ReplaceAllString(content, " ")))
	minutes := words / wordsPerMinute

	switch {
	case minutes < 1:
		return "< 1 min"
	case minutes < 60:
		return fmt.Sprintf("%d min", minutes)
	default:
		return fmt.Sprintf("%d hr %d min", minutes/60, minutes%60)
	}
}
