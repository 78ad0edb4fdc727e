package blogcore

// Paginator is a struct that holds information about pagination of the listing page, such as the
// total number of pages, the current page, the next and previous pages, the page size, the posts on
// the current page and the featured and non-featured posts of that page.
type Paginator struct {
	TotalPages       int
	CurrentPage      int
	NextPage         int
	PrevPage         int
	PageSize         int
	HasNext          bool
	HasPrev          bool
	HasPosts         bool
	TotalPosts       int
	Posts            []*Post
	FeaturedPosts    []*Post
	NonFeaturedPosts []*Post
}

// NewPaginator returns the page currentPage (1-based) of posts. Out of range pages are clamped.
func NewPaginator(posts []*Post, currentPage, pageSize int, splitFeatured bool) Paginator {
	if pageSize < 1 {
		pageSize = 10
	}

	total := len(posts)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	nextPage := currentPage + 1
	prevPage := currentPage - 1
	if nextPage > totalPages {
		nextPage = totalPages
	}
	if prevPage < 1 {
		prevPage = 1
	}

	start, end := paginationBounds(currentPage, pageSize, total)
	page := posts[start:end]

	// Split posts into featured and non-featured
	featured := make([]*Post, 0)
	nonFeatured := make([]*Post, 0, len(page))

	if splitFeatured {
		for _, post := range page {
			if post.IsFeatured() {
				featured = append(featured, post)
			} else {
				nonFeatured = append(nonFeatured, post)
			}
		}
	} else {
		nonFeatured = append(nonFeatured, page...)
	}

	return Paginator{
		TotalPages:       totalPages,
		CurrentPage:      currentPage,
		NextPage:         nextPage,
		PrevPage:         prevPage,
		PageSize:         pageSize,
		HasNext:          currentPage < totalPages,
		HasPrev:          currentPage > 1,
		HasPosts:         len(page) > 0,
		TotalPosts:       total,
		Posts:            page,
		FeaturedPosts:    featured,
		NonFeaturedPosts: nonFeatured,
	}
}

// paginationBounds calculates the start and end indices for pagination
func paginationBounds(pageNum, pageSize, totalItems int) (start, end int) {
	start = (pageNum - 1) * pageSize
	if start > totalItems {
		start = totalItems
	}
	end = start + pageSize
	if end > totalItems {
		end = totalItems
	}
	return start, end
}
