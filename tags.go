package blogcore

import "slices"

// Category is one of the reserved tags that double as a home page curation flag.
type Category string

const (
	CategoryFeatured Category = "featured"
	CategoryLatest   Category = "latest"
)

// String returns the string representation of the Category.
func (c Category) String() string {
	return string(c)
}

// AllCategories lists the reserved category tags in display order.
func AllCategories() []Category {
	return []Category{CategoryFeatured, CategoryLatest}
}

// IsCategoryTag returns true if the tag is exactly one of the reserved category tags.
func IsCategoryTag(tag string) bool {
	return tag == CategoryFeatured.String() || tag == CategoryLatest.String()
}

// Categories holds the category flags of a post.
type Categories struct {
	Featured bool `json:"featured"`
	Latest   bool `json:"latest"`
}

// Has returns the flag for the given category.
func (c Categories) Has(category Category) bool {
	switch category {
	case CategoryFeatured:
		return c.Featured
	case CategoryLatest:
		return c.Latest
	}
	return false
}

// TagSet splits a flat tag list into category flags and free-form tags.
type TagSet struct {
	Categories Categories
	Free       []string
}

// ClassifyTags builds a TagSet from a flat tag list. Duplicates are dropped.
func ClassifyTags(tags []string) TagSet {
	set := TagSet{Free: make([]string, 0, len(tags))}
	for _, tag := range NormalizeTags(tags) {
		switch tag {
		case CategoryFeatured.String():
			set.Categories.Featured = true
		case CategoryLatest.String():
			set.Categories.Latest = true
		default:
			set.Free = append(set.Free, tag)
		}
	}
	return set
}

// Tags flattens the set back into a tag list: free tags in order, then the enabled categories.
func (ts TagSet) Tags() []string {
	tags := slices.Clone(ts.Free)
	for _, category := range AllCategories() {
		tags = WithCategory(tags, category, ts.Categories.Has(category))
	}
	return tags
}

// FreeTags returns the tags that are not categories, preserving order.
func FreeTags(tags []string) []string {
	free := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !IsCategoryTag(tag) {
			free = append(free, tag)
		}
	}
	return free
}

// WithCategory returns a new tag list with the category added (appended) or removed.
// Other tags keep their order and calling it twice with the same flag is a no-op.
func WithCategory(tags []string, category Category, enabled bool) []string {
	has := slices.Contains(tags, category.String())

	switch {
	case enabled && !has:
		return append(slices.Clone(tags), category.String())
	case !enabled && has:
		out := make([]string, 0, len(tags))
		for _, tag := range tags {
			if tag != category.String() {
				out = append(out, tag)
			}
		}
		return out
	default:
		return slices.Clone(tags)
	}
}

// AddTag appends a tag unless it is already present or blank.
func AddTag(tags []string, tag string) []string {
	if tag == "" || slices.Contains(tags, tag) {
		return tags
	}
	return append(tags, tag)
}

// NormalizeTags drops blank and repeated tags, keeping the first occurrence.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = AddTag(out, tag)
	}
	return out
}
