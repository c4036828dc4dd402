// ABOUTME: Post database operations for contacts, clients and proposals
// ABOUTME: Handles post lookups, upserts with meta, taxonomy terms and ordered links
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/whitefoxstudios/onboarding/models"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidPost  = errors.New("invalid post")
)

// PostsRepository stores typed posts with meta, terms and links.
type PostsRepository struct {
	db *sql.DB
}

// NewPostsRepository creates a new posts repository.
func NewPostsRepository(db *sql.DB) *PostsRepository {
	return &PostsRepository{db: db}
}

// Find returns the ids of published posts matching the query, oldest first.
func (r *PostsRepository) Find(ctx context.Context, q models.PostQuery) ([]int64, error) {
	if q.Type == "" {
		return nil, fmt.Errorf("%w: query type is required", ErrInvalidPost)
	}

	var sb strings.Builder
	args := []any{}

	sb.WriteString(`SELECT p.id FROM posts p`)
	if q.MetaKey != "" {
		sb.WriteString(` JOIN postmeta m ON m.post_id = p.id AND m.meta_key = ? AND m.meta_value = ?`)
		args = append(args, q.MetaKey, q.MetaValue)
	}
	sb.WriteString(` WHERE p.post_type = ? AND p.post_status = ?`)
	args = append(args, q.Type, models.PostStatusPublish)
	if q.Title != "" {
		sb.WriteString(` AND p.post_title = ?`)
		args = append(args, q.Title)
	}
	sb.WriteString(` ORDER BY p.id`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Get returns a post with its meta, or nil when there is none.
func (r *PostsRepository) Get(ctx context.Context, id int64) (*models.Post, error) {
	p := &models.Post{}
	var author sql.NullInt64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, guid, post_type, post_title, post_author, post_status, post_content, created_at, updated_at
		FROM posts WHERE id = ?
	`, id).Scan(&p.ID, &p.GUID, &p.Type, &p.Title, &author, &p.Status, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	if author.Valid {
		p.AuthorID = author.Int64
	}

	p.Meta, err = r.meta(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostsRepository) meta(ctx context.Context, id int64) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT meta_key, meta_value FROM postmeta WHERE post_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post meta: %w", err)
	}
	defer func() { _ = rows.Close() }()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	return meta, rows.Err()
}

// Upsert inserts a post when id is 0, otherwise updates the existing post in place.
// Meta keys in attrs overwrite stored values; other stored keys are kept.
func (r *PostsRepository) Upsert(ctx context.Context, id int64, attrs models.PostAttrs) (*models.Post, error) {
	if id == 0 && attrs.Type == "" {
		return nil, fmt.Errorf("%w: type is required", ErrInvalidPost)
	}
	status := attrs.Status
	if status == "" {
		status = models.PostStatusPublish
	}
	var author *int64
	if attrs.AuthorID != 0 {
		author = &attrs.AuthorID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	now := time.Now().UTC()
	if id == 0 {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO posts (guid, post_type, post_title, post_author, post_status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), attrs.Type, attrs.Title, author, status, now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert post: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, err
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			UPDATE posts SET post_title = ?, post_author = ?, post_status = ?, updated_at = ?
			WHERE id = ?
		`, attrs.Title, author, status, now, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update post: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("%w: %d", ErrPostNotFound, id)
		}
	}

	for k, v := range attrs.Meta {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO postmeta (post_id, meta_key, meta_value) VALUES (?, ?, ?)
			ON CONFLICT(post_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value
		`, id, k, v)
		if err != nil {
			return nil, fmt.Errorf("failed to write post meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit post: %w", err)
	}

	return r.Get(ctx, id)
}

// AddTerm attaches a term in a taxonomy to a post. Adding an attached term is a no-op.
func (r *PostsRepository) AddTerm(ctx context.Context, id int64, taxonomy, term string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO post_terms (post_id, taxonomy, term, created_at) VALUES (?, ?, ?, ?)
	`, id, taxonomy, term, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add term %q: %w", term, err)
	}
	return nil
}

// Terms lists the terms of a post. An empty taxonomy lists every taxonomy.
func (r *PostsRepository) Terms(ctx context.Context, id int64, taxonomy string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT term FROM post_terms
		WHERE post_id = ? AND (? = '' OR taxonomy = ?)
		ORDER BY created_at, taxonomy, term
	`, id, taxonomy, taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to list terms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}
	return terms, rows.Err()
}

// Link appends children to a post's ordered relation. Children already linked keep their position.
func (r *PostsRepository) Link(ctx context.Context, id int64, relation string, childIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Safe even after commit
	}()

	var next int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(position), -1) + 1 FROM post_links WHERE post_id = ? AND relation = ?
	`, id, relation).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to read link position: %w", err)
	}

	for _, child := range childIDs {
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO post_links (post_id, relation, child_id, position) VALUES (?, ?, ?, ?)
		`, id, relation, child, next)
		if err != nil {
			return fmt.Errorf("failed to link %d: %w", child, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			next++
		}
	}

	return tx.Commit()
}

// Links returns the ordered children of a post's relation.
func (r *PostsRepository) Links(ctx context.Context, id int64, relation string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT child_id FROM post_links WHERE post_id = ? AND relation = ? ORDER BY position
	`, id, relation)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var child int64
		if err := rows.Scan(&child); err != nil {
			return nil, err
		}
		ids = append(ids, child)
	}
	return ids, rows.Err()
}
