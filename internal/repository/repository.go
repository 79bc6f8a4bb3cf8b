// Package repository defines the storage interfaces the rest of the
// application programs against. The service layer depends on these
// interfaces, never on a concrete store — tests inject in-memory fakes
// and production wires the sqlite implementation.
package repository

import (
	"context"

	"github.com/sakif/blogit/internal/model"
)

// UserRepository persists account records.
//
// There is deliberately no Update or Delete: user rows are written once
// at registration (or first Google login) and only read after that.
type UserRepository interface {
	// Create inserts the user and fills in the store-assigned ID and
	// CreatedAt. ID assignment is delegated to the store's native key
	// generation so it is monotonic and never reused.
	Create(ctx context.Context, user *model.User) error
	// GetByEmail looks up a user by their login key. Returns
	// apperror.ErrNotFound when no account has that email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// PostRepository persists blog posts.
type PostRepository interface {
	// Create inserts the post, filling in its generated ID.
	Create(ctx context.Context, post *model.Post) error
	// List returns every post, oldest first.
	List(ctx context.Context) ([]model.Post, error)
	// GetByID fetches a single post by its generated identifier.
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// GetByTitle finds a post by case-insensitive exact title match.
	// When several posts share a case-folded title, the most recently
	// created one wins. Returns apperror.ErrNotFound on no match.
	GetByTitle(ctx context.Context, title string) (*model.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error)
	// Update rewrites the post's title and body. Author and date are
	// immutable after creation and are never touched.
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}
