package blogcore

import "errors"

var (
	ErrPostExists         = errors.New("post already exists")
	ErrPostNotFound       = errors.New("post not found")
	ErrInvalidPostID      = errors.New("invalid post id")
	ErrMissingPostTitle   = errors.New("missing post title")
	ErrMissingPostContent = errors.New("missing post content")
	ErrUnauthenticated    = errors.New("you must be signed in to like posts")
	ErrToggleInFlight     = errors.New("like toggle already in flight")
)
