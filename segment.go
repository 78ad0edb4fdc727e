package blogcore

import (
	"regexp"
	"strings"
)

// DefaultImageAlt is the alt text used when neither the marker nor the caller provide one.
const DefaultImageAlt = "image"

// imageMarker matches ![alt](url). Alt cannot contain ']' and url cannot contain ')'.
var imageMarker = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)

// SegmentKind identifies the concrete type of a Segment.
type SegmentKind string

const (
	SegmentKindText  SegmentKind = "text"
	SegmentKindImage SegmentKind = "image"
)

// Segment is one contiguous unit of rendered content, either TextSegment or ImageSegment.
type Segment interface {
	Kind() SegmentKind
	segment()
}

// TextSegment is literal text. Line breaks inside Text are significant.
type TextSegment struct {
	Text string `json:"text"`
}

func (TextSegment) Kind() SegmentKind { return SegmentKindText }
func (TextSegment) segment()          {}

// ImageSegment is an embedded image reference.
type ImageSegment struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

func (ImageSegment) Kind() SegmentKind { return SegmentKindImage }
func (ImageSegment) segment()          {}

// SegmentBody splits a post body into text and image segments in order of appearance.
//
// Whitespace-only text between markers is dropped and surviving text is trimmed. An image
// marker with empty alt text gets defaultAlt, or DefaultImageAlt when defaultAlt is empty.
// Unterminated markers are left in the text. The URL is returned verbatim and may be empty.
func SegmentBody(body, defaultAlt string) []Segment {
	if defaultAlt == "" {
		defaultAlt = DefaultImageAlt
	}

	segments := make([]Segment, 0)
	last := 0

	for _, m := range imageMarker.FindAllStringSubmatchIndex(body, -1) {
		segments = appendText(segments, body[last:m[0]])

		alt := body[m[2]:m[3]]
		if alt == "" {
			alt = defaultAlt
		}
		segments = append(segments, ImageSegment{URL: body[m[4]:m[5]], Alt: alt})

		last = m[1]
	}

	return appendText(segments, body[last:])
}

// Segments splits the post body, using the post title as the fallback alt text.
func (p *Post) Segments() []Segment {
	return SegmentBody(p.Body, p.Title)
}

func appendText(segments []Segment, text string) []Segment {
	text = strings.TrimSpace(text)
	if text == "" {
		return segments
	}
	return append(segments, TextSegment{Text: text})
}
