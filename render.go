package blogcore

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer turns segments into HTML. Text segments go through goldmark with hard wraps so that
// line breaks in the body survive; image segments become figures.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a Renderer using goldmark with the following extensions:
// - GFM
// - Typographer
// It also enables hard wraps. Raw HTML in the body is not rendered.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
			),
		),
	}
}

// RenderSegments renders the segments in order. Images with an empty URL are skipped.
func (r *Renderer) RenderSegments(segments []Segment) (string, error) {
	var buf bytes.Buffer

	for _, seg := range segments {
		switch s := seg.(type) {
		case TextSegment:
			if err := r.md.Convert([]byte(s.Text), &buf); err != nil {
				return "", fmt.Errorf("failed to convert text segment: %w", err)
			}
		case ImageSegment:
			if s.URL == "" {
				continue
			}
			fmt.Fprintf(&buf, "<figure><img src=\"%s\" alt=\"%s\" loading=\"lazy\"></figure>\n",
				html.EscapeString(s.URL), html.EscapeString(s.Alt))
		}
	}

	return buf.String(), nil
}

// RenderPost segments and renders the body of the post.
func (r *Renderer) RenderPost(post *Post) (string, error) {
	return r.RenderSegments(post.Segments())
}
