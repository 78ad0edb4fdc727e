package blogcore

// ListOptions contains the options for the listing page.
type ListOptions struct {
	PageNum       int    // The page number to retrieve
	PageSize      int    // The number of items per page. Default is 10.
	FilterSearch  string // A search string matched against title, description, body, author and tags.
	FilterTag     string // Only list posts carrying this tag.
	SplitFeatured bool   // Whether to split featured items from the main list
}
