package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/model"
	"github.com/sakif/blogit/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// Create inserts a new user and fills in the store-assigned ID.
//
// The id column is AUTOINCREMENT, so the store hands out identifiers —
// monotonic, never reused — and we read the assigned value back via
// LastInsertId. The caller (AuthService.Register) has already checked
// the email is unused; this method does not re-check.
func (db *UserStore) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Password,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading assigned user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetByEmail retrieves a user by their login key.
//
// Email has no UNIQUE constraint (uniqueness lives in the service's
// lookup-before-insert), so if duplicates ever slip in we return the
// oldest row — the account that registered first.
func (db *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, password, created_at
		 FROM users WHERE email = ?
		 ORDER BY id ASC LIMIT 1`,
		email,
	).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}

	return &u, nil
}

// GetByID retrieves a user by their numeric ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, email, password, created_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	return &u, nil
}
