package blogcore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemManager handles file system operations for markdown post files
type FileSystemManager interface {
	Walk(ctx context.Context) (<-chan *Post, <-chan error)
	Read(ctx context.Context, slug string) (*Post, error)
	Write(ctx context.Context, post *Post) error
	Delete(ctx context.Context, slug string) error
}

// LocalFileSystemManager implements FileSystemManager for the local file system
type LocalFileSystemManager struct {
	rootDir string
	parse   MarkdownParserFunc
	format  FrontmatterFormat
}

func NewLocalFileSystemManager(rootDir string, parse MarkdownParserFunc, format FrontmatterFormat) *LocalFileSystemManager {
	if parse == nil {
		parse = DefaultMarkdownParser()
	}
	if format == "" {
		format = FrontmatterYAML
	}
	return &LocalFileSystemManager{rootDir: rootDir, parse: parse, format: format}
}

// Walk reads every markdown file under the root directory. Both channels are closed when the walk ends.
func (fs *LocalFileSystemManager) Walk(ctx context.Context) (<-chan *Post, <-chan error) {
	posts := make(chan *Post)
	errs := make(chan error, 1)

	go func() {
		defer close(posts)
		defer close(errs)

		err := filepath.Walk(fs.rootDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if info.IsDir() || filepath.Ext(path) != ".md" {
				return nil
			}

			post, err := fs.readFile(path, info)
			if err != nil {
				return err
			}

			select {
			case posts <- post:
			case <-ctx.Done():
				return ctx.Err()
			}

			return nil
		})

		if err != nil {
			errs <- err
		}
	}()

	return posts, errs
}

func (fs *LocalFileSystemManager) Read(_ context.Context, slug string) (*Post, error) {
	path := fs.buildPath(slug)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}

	return fs.readFile(path, info)
}

// Write stores the post as <root>/<slug>.md with frontmatter in the configured format.
func (fs *LocalFileSystemManager) Write(_ context.Context, post *Post) error {
	if post.Slug == "" {
		post.Slug = MakeSlug(post.Title)
	}
	if post.Slug == "" {
		return ErrInvalidPostID
	}

	path := fs.buildPath(post.Slug)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	content, err := PostToMarkdown(post, fs.format)
	if err != nil {
		return err
	}

	return os.WriteFile(path, content, 0644)
}

func (fs *LocalFileSystemManager) Delete(_ context.Context, slug string) error {
	return os.Remove(fs.buildPath(slug))
}

func (fs *LocalFileSystemManager) readFile(path string, info os.FileInfo) (*Post, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	post, err := fs.parse(content)
	if err != nil {
		return nil, fmt.Errorf("error processing markdown file %s: %w", path, err)
	}

	slugPath := SlugifyPath(fs.rootDir, path)
	post.Slug = slugPath.Slug
	if post.ID == "" {
		post.ID = strings.ReplaceAll(slugPath.Slug, "/", "-")
	}

	// If the file name has a date and the frontmatter has no published date, use the file's date.
	if slugPath.FileTime != nil && !post.HasPublished() {
		post.Published = *slugPath.FileTime
	}
	post.Updated = info.ModTime()

	return post, nil
}

func (fs *LocalFileSystemManager) buildPath(slug string) string {
	return filepath.Join(fs.rootDir, filepath.FromSlash(slug)+".md")
}
