package bboltstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/hypergopher/blogcore"
)

const (
	bboltFile   = "blogcore.db"
	bleveFile   = "blogcore.bleve"
	bucketPosts = "posts"
	bucketTags  = "tags"
)

// indexDoc is the part of a post indexed by bleve.
type indexDoc struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	Published   time.Time `json:"published"`
}

func (indexDoc) BleveType() string {
	return "post"
}

// Store keeps posts in a bbolt database and a bleve full-text index.
// Posts with the same published date are returned in key order.
type Store struct {
	bleveIndex bleve.Index
	boltIndex  *bbolt.DB
	dataDir    string // dataDir is the directory where the bolt and bleve files are stored.
	logger     *slog.Logger
	mu         sync.Mutex
	now        func() time.Time
}

var _ blogcore.PostStore = (*Store)(nil)

// New creates a new Store. Call Init before using it.
func New(dataDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = defaultLogger()
	}
	return &Store{
		dataDir: dataDir,
		logger:  logger,
		now:     time.Now,
	}
}

// Init opens (or creates) the bbolt and bleve indexes
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	boltIndex, err := s.initBolt()
	if err != nil {
		return fmt.Errorf("failed to initialize bbolt: %w", err)
	}
	s.boltIndex = boltIndex

	bleveIndex, err := s.initBleve()
	if err != nil {
		return fmt.Errorf("failed to initialize bleve: %w", err)
	}
	s.bleveIndex = bleveIndex

	return nil
}

// Clear removes all posts by deleting and recreating both indexes.
func (s *Store) Clear() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close indexes: %w", err)
	}

	// Remove the bolt and bleve files
	if err := os.Remove(filepath.Join(s.dataDir, bboltFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove bolt file: %w", err)
	}

	if err := os.RemoveAll(filepath.Join(s.dataDir, bleveFile)); err != nil {
		return fmt.Errorf("failed to remove bleve file: %w", err)
	}

	return s.Init()
}

// Close closes the bolt and bleve indexes.
func (s *Store) Close() error {
	if s.boltIndex != nil {
		if err := s.boltIndex.Close(); err != nil {
			return err
		}
		s.boltIndex = nil
	}

	if s.bleveIndex != nil {
		err := s.bleveIndex.Close()
		s.bleveIndex = nil
		return err
	}

	return nil
}

// Create stores a new post. An empty ID is replaced with a UUID and an empty published date with now.
func (s *Store) Create(_ context.Context, post *blogcore.Post) (*blogcore.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := post.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Published.IsZero() {
		stored.Published = s.now()
	}
	stored.Tags = blogcore.NormalizeTags(stored.Tags)
	if stored.Likes == nil {
		stored.Likes = []string{}
	}

	err := s.boltIndex.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		if b.Get([]byte(stored.ID)) != nil {
			return fmt.Errorf("%w: %s", blogcore.ErrPostExists, stored.ID)
		}

		if err := putPost(b, stored); err != nil {
			return err
		}

		return s.updateTagCounts(tx, stored.Tags, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post in bolt: %w", err)
	}

	s.reindex(stored)

	return stored, nil
}

// Update replaces an existing post. The like set and, when empty, the published date are kept.
func (s *Store) Update(_ context.Context, post *blogcore.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := post.Clone()
	stored.Tags = blogcore.NormalizeTags(stored.Tags)

	err := s.boltIndex.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		current, err := getPost(b, stored.ID)
		if err != nil {
			return err
		}

		if stored.Published.IsZero() {
			stored.Published = current.Published
		}
		stored.Likes = current.Likes

		// Only the tags that changed move the counters
		removed := slices.DeleteFunc(slices.Clone(current.Tags), func(tag string) bool { return slices.Contains(stored.Tags, tag) })
		added := slices.DeleteFunc(slices.Clone(stored.Tags), func(tag string) bool { return slices.Contains(current.Tags, tag) })
		if err := s.updateTagCounts(tx, removed, -1); err != nil {
			return err
		}
		if err := s.updateTagCounts(tx, added, 1); err != nil {
			return err
		}

		return putPost(b, stored)
	})
	if err != nil {
		return fmt.Errorf("failed to update post in bolt: %w", err)
	}

	s.reindex(stored)
	return nil
}

// Delete removes a post from both indexes.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.boltIndex.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		post, err := getPost(b, id)
		if err != nil {
			return err
		}

		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		return s.updateTagCounts(tx, post.Tags, -1)
	}); err != nil {
		return fmt.Errorf("failed to update bolt: %w", err)
	}

	if err := s.bleveIndex.Delete(id); err != nil {
		return fmt.Errorf("failed to delete post from bleve: %w", err)
	}

	return nil
}

// Get retrieves a post by its ID.
func (s *Store) Get(_ context.Context, id string) (*blogcore.Post, error) {
	var post *blogcore.Post
	err := s.boltIndex.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		var err error
		post, err = getPost(b, id)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("error getting post %s: %w", id, err)
	}
	return post, nil
}

// Recent returns posts newest first, optionally filtered by tag and limited.
func (s *Store) Recent(_ context.Context, opts blogcore.RecentOptions) ([]*blogcore.Post, error) {
	var posts []*blogcore.Post
	err := s.boltIndex.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			post, err := blogcore.Deserialize(v)
			if err != nil {
				return fmt.Errorf("error deserializing post %s: %w", k, err)
			}
			if opts.Tag == "" || slices.Contains(post.Tags, opts.Tag) {
				posts = append(posts, post)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Published.After(posts[j].Published)
	})

	if opts.Limit > 0 && len(posts) > opts.Limit {
		posts = posts[:opts.Limit]
	}

	return posts, nil
}

// AddLike adds the viewer to the like set inside one bolt transaction.
func (s *Store) AddLike(_ context.Context, postID, viewerID string) error {
	return s.mutateLikes(postID, func(likes []string) []string {
		if slices.Contains(likes, viewerID) {
			return likes
		}
		return append(likes, viewerID)
	})
}

// RemoveLike removes the viewer from the like set inside one bolt transaction.
func (s *Store) RemoveLike(_ context.Context, postID, viewerID string) error {
	return s.mutateLikes(postID, func(likes []string) []string {
		return slices.DeleteFunc(likes, func(id string) bool { return id == viewerID })
	})
}

func (s *Store) mutateLikes(postID string, mutate func([]string) []string) error {
	err := s.boltIndex.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketPosts))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		post, err := getPost(b, postID)
		if err != nil {
			return err
		}

		post.Likes = mutate(post.Likes)
		if post.Likes == nil {
			post.Likes = []string{}
		}
		return putPost(b, post)
	})
	if err != nil {
		return fmt.Errorf("failed to update likes of post %s: %w", postID, err)
	}
	return nil
}

// TagCounts returns the number of posts per tag.
func (s *Store) TagCounts(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := s.boltIndex.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketTags))
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			counts[string(k)] = int(binary.BigEndian.Uint64(v))
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("error getting tag counts: %w", err)
	}

	return counts, nil
}

// FullTextSearch runs a bleve query string search (e.g. "shinkai +tags:anime") and returns the
// matching posts by relevance. An empty query returns the newest posts.
func (s *Store) FullTextSearch(ctx context.Context, queryString string, limit int) ([]*blogcore.Post, error) {
	if limit < 1 {
		limit = 10
	}

	queryString = strings.TrimSpace(queryString)
	if queryString == "" {
		return s.Recent(ctx, blogcore.RecentOptions{Limit: limit})
	}

	request := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(queryString), limit, 0, false)
	result, err := s.bleveIndex.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("error searching for posts: %w", err)
	}

	posts := make([]*blogcore.Post, 0, len(result.Hits))
	for _, hit := range result.Hits {
		post, err := s.Get(ctx, hit.ID)
		if err != nil {
			return nil, fmt.Errorf("error getting post %s: %w", hit.ID, err)
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// reindex refreshes the full-text entry of a committed post. Bolt stays the source of truth, so a
// failure only leaves the search index stale and is logged.
func (s *Store) reindex(post *blogcore.Post) {
	if err := s.index(post); err != nil {
		s.logger.Error("failed to index post",
			slog.String("id", post.ID),
			slog.String("error", err.Error()))
	}
}

func (s *Store) index(post *blogcore.Post) error {
	doc := indexDoc{
		Title:       post.Title,
		Description: post.Description,
		Body:        post.Body,
		Author:      post.Author,
		Tags:        post.Tags,
		Published:   post.Published,
	}
	if err := s.bleveIndex.Index(post.ID, doc); err != nil {
		return fmt.Errorf("failed to index post in bleve: %w", err)
	}
	return nil
}

func (s *Store) initBolt() (*bbolt.DB, error) {
	boltPath := filepath.Join(s.dataDir, bboltFile)
	boltIndex, err := bbolt.Open(boltPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt index: %w", err)
	}

	err = boltIndex.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketPosts)); err != nil {
			return fmt.Errorf("failed to create posts bucket: %w", err)
		}

		if _, err := tx.CreateBucketIfNotExists([]byte(bucketTags)); err != nil {
			return fmt.Errorf("failed to create tags bucket: %w", err)
		}

		return nil
	})

	if err != nil {
		_ = boltIndex.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return boltIndex, nil
}

func (s *Store) initBleve() (bleve.Index, error) {
	index, err := bleve.Open(filepath.Join(s.dataDir, bleveFile))
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		s.logger.Debug("Creating new bleve index")
		index, err = bleve.NewUsing(filepath.Join(s.dataDir, bleveFile), defineBleveMapping(), bleve.Config.DefaultIndexType, bleve.Config.DefaultKVStore, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create bleve index: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to open bleve index: %w", err)
	}

	return index, nil
}

func defineBleveMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	docMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("description", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("body", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("author", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("tags", bleve.NewKeywordFieldMapping())
	docMapping.AddFieldMappingsAt("published", bleve.NewDateTimeFieldMapping())

	indexMapping.AddDocumentMapping("post", docMapping)

	return indexMapping
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelDebug,
		}))
}

func (s *Store) updateTagCounts(tx *bbolt.Tx, tags []string, delta int) error {
	b := tx.Bucket([]byte(bucketTags))
	if b == nil {
		return fmt.Errorf("bucket not found")
	}

	for _, tag := range tags {
		if tag == "" {
			continue
		}

		count := 0
		key := []byte(tag)
		if countBytes := b.Get(key); countBytes != nil {
			count = int(binary.BigEndian.Uint64(countBytes))
		}

		count += delta
		if count <= 0 {
			if err := b.Delete(key); err != nil {
				return err
			}
			continue
		}

		newCount := make([]byte, 8)
		binary.BigEndian.PutUint64(newCount, uint64(count))
		if err := b.Put(key, newCount); err != nil {
			s.logger.Error("failed to update tag count",
				slog.String("tag", tag),
				slog.String("error", err.Error()))
			return err
		}
	}

	return nil
}

func getPost(b *bbolt.Bucket, id string) (*blogcore.Post, error) {
	postBytes := b.Get([]byte(id))
	if postBytes == nil {
		return nil, fmt.Errorf("%w: %s", blogcore.ErrPostNotFound, id)
	}

	post, err := blogcore.Deserialize(postBytes)
	if err != nil {
		return nil, fmt.Errorf("error deserializing post: %w", err)
	}
	return post, nil
}

func putPost(b *bbolt.Bucket, post *blogcore.Post) error {
	postBytes, err := post.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize post: %w", err)
	}

	if err := b.Put([]byte(post.ID), postBytes); err != nil {
		return fmt.Errorf("failed to put post in bucket: %w", err)
	}
	return nil
}
