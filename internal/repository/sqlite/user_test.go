package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/model"
)

// newTestDB creates an in-memory database with the full schema. Each
// test gets a fresh one, so there is no cross-test state.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// =========================================================================
// USER REPOSITORY TESTS
// =========================================================================

func TestUserCreate_AssignsIncreasingIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{FirstName: "Ada", Email: "ada@example.com", Password: "hash1"}
	second := &model.User{FirstName: "Grace", Email: "grace@example.com", Password: "hash2"}

	if err := db.Users.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := db.Users.Create(ctx, second); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if first.ID == 0 {
		t.Error("Create() did not fill in the assigned ID")
	}
	if second.ID <= first.ID {
		t.Errorf("IDs not increasing: first=%d second=%d", first.ID, second.ID)
	}
}

func TestUserGetByEmail_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &model.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "$2a$04$somehash",
	}
	if err := db.Users.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Users.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("ID = %d, want %d", got.ID, user.ID)
	}
	if got.FirstName != "Ada" || got.LastName != "Lovelace" {
		t.Errorf("name = %q %q, want Ada Lovelace", got.FirstName, got.LastName)
	}
	if got.Password != "$2a$04$somehash" {
		t.Errorf("Password = %q, want stored hash", got.Password)
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users.GetByEmail(context.Background(), "nobody@example.com")
	if err == nil {
		t.Fatal("GetByEmail() should fail for an unknown email")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail_DuplicateEmailsReturnOldest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// The schema has no UNIQUE constraint on email, so two rows with the
	// same address are possible. Logins must resolve to the older one.
	older := &model.User{FirstName: "First", Email: "dup@example.com", Password: "h1"}
	newer := &model.User{FirstName: "Second", Email: "dup@example.com", Password: "h2"}
	if err := db.Users.Create(ctx, older); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := db.Users.Create(ctx, newer); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Users.GetByEmail(ctx, "dup@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != older.ID {
		t.Errorf("GetByEmail() returned ID %d, want oldest row %d", got.ID, older.ID)
	}
}

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &model.User{FirstName: "Ada", Email: "ada@example.com", Password: "hash"}
	if err := db.Users.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != "ada@example.com" {
		t.Errorf("Email = %q, want ada@example.com", got.Email)
	}

	if _, err := db.Users.GetByID(ctx, 99999); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}
