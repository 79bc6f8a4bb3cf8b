package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/model"
	"github.com/sakif/blogit/internal/repository"
)

// compile-time check that *PostStore implements repository.PostRepository
var _ repository.PostRepository = (*PostStore)(nil)

// dateFormat renders a publish date like "December 5, 2023" — a display
// string, not a sortable timestamp. Ordering uses insertion order, not
// this field.
const dateFormat = "January 2, 2006"

// Create inserts a new post, generating its ID and stamping the current
// formatted publish date.
//
// xid IDs are 20 chars, URL-safe, and sortable by creation time — a
// good fit for a value that ends up in delete forms. The author binding
// (ID + display name) must already be set by the caller; author_id has
// a foreign key to users, so a dangling author fails the insert.
func (db *PostStore) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	if post.Date == "" {
		post.Date = time.Now().Format(dateFormat)
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, body, author_id, author_name, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Body,
		post.Author.ID,
		post.Author.Name,
		post.Date,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// List returns every post in insertion order (rowid), matching the
// storage-default ordering of the document store this replaces.
func (db *PostStore) List(ctx context.Context) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, body, author_id, author_name, date
		 FROM posts
		 ORDER BY rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Body,
			&p.Author.ID, &p.Author.Name, &p.Date,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// GetByID retrieves a single post by its generated ID.
// Returns apperror.ErrNotFound if the post doesn't exist.
func (db *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, body, author_id, author_name, date
		 FROM posts WHERE id = ?`,
		id,
	).Scan(
		&p.ID, &p.Title, &p.Body,
		&p.Author.ID, &p.Author.Name, &p.Date,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &p, nil
}

// GetByTitle finds a post by case-insensitive exact title match.
//
// This is deliberately a linear scan over all posts, not a SQL WHERE:
// it reproduces the lookup the app has always done, including its quirk
// that when several posts share a case-folded title, the LAST one in
// insertion order wins. strings.EqualFold does full Unicode case
// folding, which SQLite's ASCII-only LOWER() would get wrong.
func (db *PostStore) GetByTitle(ctx context.Context, title string) (*model.Post, error) {
	posts, err := db.List(ctx)
	if err != nil {
		return nil, err
	}

	var match *model.Post
	for i := range posts {
		if strings.EqualFold(posts[i].Title, title) {
			match = &posts[i] // keep scanning: last match wins
		}
	}
	if match == nil {
		return nil, apperror.NotFound("post", title)
	}

	return match, nil
}

// ListByAuthor returns every post stamped with the given author ID, in
// insertion order.
func (db *PostStore) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, body, author_id, author_name, date
		 FROM posts
		 WHERE author_id = ?
		 ORDER BY rowid ASC`,
		authorID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts by author %d: %w", authorID, err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Body,
			&p.Author.ID, &p.Author.Name, &p.Date,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// Update rewrites a post's title and body. The author binding and the
// publish date are immutable after creation and are not touched.
func (db *PostStore) Update(ctx context.Context, post *model.Post) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, body = ? WHERE id = ?`,
		post.Title,
		post.Body,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// Delete removes a post by its ID.
// Same pattern as Update — RowsAffected detects "not found".
func (db *PostStore) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}
