package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hypergopher/blogcore"
)

// Store keeps posts in SQLite. Tags and likes live in their own tables so that like set
// operations are single statements. Posts with the same published date are returned in
// insertion order.
type Store struct {
	db        *sql.DB
	tableName string
	now       func() time.Time
}

var _ blogcore.PostStore = (*Store)(nil)

func New(db *sql.DB, tableName string) *Store {
	if tableName == "" {
		tableName = "posts"
	}
	return &Store{db: db, tableName: tableName, now: time.Now}
}

// Init creates the necessary tables and indexes if they do not exist.
func (s *Store) Init() error {
	query := `
		-- Table for holding posts
		CREATE TABLE IF NOT EXISTS ` + s.tableName + ` (
			id TEXT PRIMARY KEY,
			slug TEXT,
			title TEXT,
			description TEXT,
			body TEXT,
			cover_image TEXT,
			author TEXT,
			published INTEGER,
			updated INTEGER
		);

		-- Index on published date
		CREATE INDEX IF NOT EXISTS ` + s.tableName + `_published_idx ON ` + s.tableName + `(published);

		-- Table for tags, position keeps the display order
		CREATE TABLE IF NOT EXISTS ` + s.tableName + `_tags (
			post_id TEXT,
			tag TEXT,
			position INTEGER,
			PRIMARY KEY(post_id, tag),
			FOREIGN KEY(post_id) REFERENCES ` + s.tableName + `(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS ` + s.tableName + `_tags_tag_idx ON ` + s.tableName + `_tags(tag);

		-- Table for likes, one row per viewer
		CREATE TABLE IF NOT EXISTS ` + s.tableName + `_likes (
			post_id TEXT,
			viewer_id TEXT,
			PRIMARY KEY(post_id, viewer_id),
			FOREIGN KEY(post_id) REFERENCES ` + s.tableName + `(id) ON DELETE CASCADE
		);
	`
	_, err := s.db.Exec(query)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new post. An empty ID is replaced with a UUID and an empty published date with now.
func (s *Store) Create(ctx context.Context, post *blogcore.Post) (*blogcore.Post, error) {
	stored := post.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Published.IsZero() {
		stored.Published = s.now()
	}
	stored.Tags = blogcore.NormalizeTags(stored.Tags)
	stored.Likes = uniqueStrings(stored.Likes)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	exists, err := s.exists(ctx, tx, stored.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", blogcore.ErrPostExists, stored.ID)
	}

	query := `
		INSERT INTO ` + s.tableName + ` (
			id, slug, title, description, body,
			cover_image, author, published, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query,
		stored.ID, stored.Slug, stored.Title, stored.Description, stored.Body,
		stored.CoverImage, stored.Author, toUnix(stored.Published), toUnix(stored.Updated)); err != nil {
		return nil, err
	}

	if err := s.insertTags(ctx, tx, stored); err != nil {
		return nil, err
	}

	for _, viewerID := range stored.Likes {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO `+s.tableName+`_likes (post_id, viewer_id) VALUES (?, ?)`, stored.ID, viewerID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return stored, nil
}

// Update replaces the fields and tags of an existing post. Likes are untouched and an empty
// published date keeps the stored one.
func (s *Store) Update(ctx context.Context, post *blogcore.Post) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	query := `
		UPDATE ` + s.tableName + ` SET
			slug = ?, title = ?, description = ?, body = ?,
			cover_image = ?, author = ?, updated = ?,
			published = CASE WHEN ? = 0 THEN published ELSE ? END
		WHERE id = ?
	`
	published := toUnix(post.Published)
	result, err := tx.ExecContext(ctx, query,
		post.Slug, post.Title, post.Description, post.Body,
		post.CoverImage, post.Author, toUnix(post.Updated),
		published, published,
		post.ID)
	if err != nil {
		return err
	}

	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", blogcore.ErrPostNotFound, post.ID)
	}

	// Delete existing tags
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.tableName+`_tags WHERE post_id = ?`, post.ID); err != nil {
		return err
	}

	stored := post.Clone()
	stored.Tags = blogcore.NormalizeTags(stored.Tags)
	if err := s.insertTags(ctx, tx, stored); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes a post together with its tags and likes.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	for _, query := range []string{
		`DELETE FROM ` + s.tableName + `_tags WHERE post_id = ?`,
		`DELETE FROM ` + s.tableName + `_likes WHERE post_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return err
		}
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM `+s.tableName+` WHERE id = ?`, id)
	if err != nil {
		return err
	}

	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", blogcore.ErrPostNotFound, id)
	}

	return tx.Commit()
}

// Get retrieves a post by its ID.
func (s *Store) Get(ctx context.Context, id string) (*blogcore.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM `+s.tableName+` WHERE id = ?`, id)

	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", blogcore.ErrPostNotFound, id)
	} else if err != nil {
		return nil, fmt.Errorf("error getting post %s: %w", id, err)
	}

	if err := s.loadSets(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Recent returns posts newest first, optionally filtered by tag and limited.
func (s *Store) Recent(ctx context.Context, opts blogcore.RecentOptions) ([]*blogcore.Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT ` + postColumns + ` FROM ` + s.tableName + ` p
		WHERE ? = '' OR EXISTS (
			SELECT 1 FROM ` + s.tableName + `_tags t WHERE t.post_id = p.id AND t.tag = ?
		)
		ORDER BY p.published DESC, p.rowid ASC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, opts.Tag, opts.Tag, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	var posts []*blogcore.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("error scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for _, post := range posts {
		if err := s.loadSets(ctx, post); err != nil {
			return nil, err
		}
	}

	return posts, nil
}

// AddLike adds the viewer to the like set. Adding a present viewer is a no-op.
func (s *Store) AddLike(ctx context.Context, postID, viewerID string) error {
	return s.mutateLikes(ctx, postID, `INSERT OR IGNORE INTO `+s.tableName+`_likes (post_id, viewer_id) VALUES (?, ?)`, viewerID)
}

// RemoveLike removes the viewer from the like set. Removing an absent viewer is a no-op.
func (s *Store) RemoveLike(ctx context.Context, postID, viewerID string) error {
	return s.mutateLikes(ctx, postID, `DELETE FROM `+s.tableName+`_likes WHERE post_id = ? AND viewer_id = ?`, viewerID)
}

func (s *Store) mutateLikes(ctx context.Context, postID, query, viewerID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	exists, err := s.exists(ctx, tx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", blogcore.ErrPostNotFound, postID)
	}

	if _, err := tx.ExecContext(ctx, query, postID, viewerID); err != nil {
		return fmt.Errorf("failed to update likes of post %s: %w", postID, err)
	}

	return tx.Commit()
}

// TagCounts returns the number of posts per tag.
func (s *Store) TagCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tag, COUNT(*) FROM `+s.tableName+`_tags GROUP BY tag`)
	if err != nil {
		return nil, fmt.Errorf("error getting tag counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var tag string
		var count int
		if err := rows.Scan(&tag, &count); err != nil {
			return nil, err
		}
		counts[tag] = count
	}

	return counts, rows.Err()
}

const postColumns = `id, slug, title, description, body, cover_image, author, published, updated`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*blogcore.Post, error) {
	var post blogcore.Post
	var published, updated int64
	if err := row.Scan(&post.ID, &post.Slug, &post.Title, &post.Description, &post.Body,
		&post.CoverImage, &post.Author, &published, &updated); err != nil {
		return nil, err
	}

	post.Published = fromUnix(published)
	post.Updated = fromUnix(updated)
	return &post, nil
}

func (s *Store) loadSets(ctx context.Context, post *blogcore.Post) error {
	tags, err := s.queryStrings(ctx, `SELECT tag FROM `+s.tableName+`_tags WHERE post_id = ? ORDER BY position`, post.ID)
	if err != nil {
		return fmt.Errorf("error loading tags of post %s: %w", post.ID, err)
	}

	likes, err := s.queryStrings(ctx, `SELECT viewer_id FROM `+s.tableName+`_likes WHERE post_id = ? ORDER BY rowid`, post.ID)
	if err != nil {
		return fmt.Errorf("error loading likes of post %s: %w", post.ID, err)
	}

	post.Tags = tags
	post.Likes = likes
	return nil
}

func (s *Store) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	values := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

func (s *Store) exists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+s.tableName+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) insertTags(ctx context.Context, tx *sql.Tx, post *blogcore.Post) error {
	for position, tag := range post.Tags {
		query := `INSERT INTO ` + s.tableName + `_tags (post_id, tag, position) VALUES (?, ?, ?)`
		if _, err := tx.ExecContext(ctx, query, post.ID, tag, position); err != nil {
			return err
		}
	}
	return nil
}

// toUnix stores times as UTC nanoseconds so that ORDER BY compares them correctly. Zero stays zero.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromUnix(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
