package blogcore

import "strings"

// FilterPosts returns the posts whose title, description, body, author or any tag contains term,
// ignoring case. Order is preserved and an empty term keeps every post.
func FilterPosts(posts []*Post, term string) []*Post {
	if term == "" {
		return posts
	}

	needle := strings.ToLower(term)
	filtered := make([]*Post, 0, len(posts))
	for _, post := range posts {
		if postContains(post, needle) {
			filtered = append(filtered, post)
		}
	}
	return filtered
}

func postContains(post *Post, needle string) bool {
	fields := []string{post.Title, post.Description, post.Body, post.Author}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}

	for _, tag := range post.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}

	return false
}
