package blogcore

import (
	"os"
	"path"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// datePrefixLayout is the layout of the optional publish date at the start of a post file name.
const datePrefixLayout = "2006-01-02"

// SlugPath is the slug derived from a post file, with the date embedded in its file name if any.
type SlugPath struct {
	Slug         string
	FileTimePath string
	FileTime     *time.Time
}

// MakeSlug returns the URL-friendly form of a post title.
func MakeSlug(title string) string {
	return slug.Make(title)
}

// SlugifyPath turns the path of a post file below rootPath into its slug.
//
// The extension is dropped, a trailing "index" file collapses into its directory, and every
// path segment is slugified on its own. A file name starting with a 2006-01-02 date keeps the
// date in the slug and reports it through FileTime.
func SlugifyPath(rootPath, fullPath string) SlugPath {
	if fullPath == "" {
		return SlugPath{}
	}

	rel := strings.ReplaceAll(strings.TrimPrefix(fullPath, rootPath), string(os.PathSeparator), "/")
	rel = strings.TrimSpace(strings.Trim(rel, "/"))
	rel = strings.TrimSuffix(rel, path.Ext(rel))

	var result SlugPath
	if t, prefix, ok := fileDate(path.Base(rel)); ok {
		result.FileTime = &t
		result.FileTimePath = prefix
	}

	segments := strings.Split(strings.TrimSuffix(rel, "/index"), "/")
	for i := range segments {
		segments[i] = slug.Make(segments[i])
	}
	result.Slug = strings.Join(segments, "/")

	return result
}

// fileDate parses the date prefix of a file name like "2024-01-01-hello".
func fileDate(name string) (time.Time, string, bool) {
	if len(name) <= len(datePrefixLayout)+1 || name[len(datePrefixLayout)] != '-' {
		return time.Time{}, "", false
	}

	prefix := name[:len(datePrefixLayout)]
	t, err := time.Parse(datePrefixLayout, prefix)
	if err != nil {
		return time.Time{}, "", false
	}
	return t, prefix, true
}
