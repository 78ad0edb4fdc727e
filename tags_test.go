package blogcore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hypergopher/blogcore"
)

func TestIsCategoryTag(t *testing.T) {
	assert.True(t, blogcore.IsCategoryTag("featured"))
	assert.True(t, blogcore.IsCategoryTag("latest"))
	assert.False(t, blogcore.IsCategoryTag("Featured"))
	assert.False(t, blogcore.IsCategoryTag("action"))
	assert.False(t, blogcore.IsCategoryTag(""))
}

func TestFreeTags(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{"mixed", []string{"featured", "action", "latest", "drama"}, []string{"action", "drama"}},
		{"only categories", []string{"featured", "latest"}, []string{}},
		{"none", nil, []string{}},
		{"case sensitive", []string{"Featured", "action"}, []string{"Featured", "action"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, blogcore.FreeTags(tt.tags))
		})
	}
}

func TestWithCategory(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		category blogcore.Category
		enabled  bool
		want     []string
	}{
		{"enable absent", []string{"action"}, blogcore.CategoryFeatured, true, []string{"action", "featured"}},
		{"enable present", []string{"featured", "action"}, blogcore.CategoryFeatured, true, []string{"featured", "action"}},
		{"disable present", []string{"action", "latest", "drama"}, blogcore.CategoryLatest, false, []string{"action", "drama"}},
		{"disable absent", []string{"action"}, blogcore.CategoryLatest, false, []string{"action"}},
		{"other category untouched", []string{"latest"}, blogcore.CategoryFeatured, true, []string{"latest", "featured"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := append([]string(nil), tt.tags...)

			got := blogcore.WithCategory(tt.tags, tt.category, tt.enabled)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, original, tt.tags, "input is not modified")

			again := blogcore.WithCategory(got, tt.category, tt.enabled)
			assert.Equal(t, got, again, "idempotent")
		})
	}
}

func TestClassifyTags(t *testing.T) {
	set := blogcore.ClassifyTags([]string{"action", "latest", "drama"})

	assert.False(t, set.Categories.Featured)
	assert.True(t, set.Categories.Latest)
	assert.True(t, set.Categories.Has(blogcore.CategoryLatest))
	assert.Equal(t, []string{"action", "drama"}, set.Free)
	assert.Equal(t, []string{"action", "drama", "latest"}, set.Tags())
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, blogcore.NormalizeTags([]string{"a", "", "b", "a"}))
	assert.Equal(t, []string{}, blogcore.NormalizeTags(nil))
}

func TestPost_SetCategory(t *testing.T) {
	post := &blogcore.Post{Tags: []string{"action"}}

	post.SetCategory(blogcore.CategoryFeatured, true)
	assert.True(t, post.IsFeatured())
	assert.True(t, post.Categories().Featured)
	assert.Equal(t, []string{"action"}, post.FreeTags())

	post.SetCategory(blogcore.CategoryFeatured, false)
	assert.False(t, post.IsFeatured())
	assert.Equal(t, []string{"action"}, post.Tags)

	post.AddTag("action")
	assert.Equal(t, []string{"action"}, post.Tags)
}
