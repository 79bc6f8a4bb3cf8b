package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/model"
)

// createTestAuthor inserts a user and returns the author binding posts
// need. posts.author_id has a foreign key, so every post test starts
// here.
func createTestAuthor(t *testing.T, db *DB) model.Author {
	t.Helper()

	user := &model.User{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "hash",
	}
	if err := db.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating test author: %v", err)
	}

	return model.Author{ID: user.ID, Name: "Ada Lovelace"}
}

func createTestPost(t *testing.T, db *DB, author model.Author, title string) *model.Post {
	t.Helper()

	post := &model.Post{Title: title, Body: "<p>body of " + title + "</p>", Author: author}
	if err := db.Posts.Create(context.Background(), post); err != nil {
		t.Fatalf("creating test post %q: %v", title, err)
	}
	return post
}

// =========================================================================
// POST REPOSITORY TESTS
// =========================================================================

func TestPostCreate_GeneratesIDAndDate(t *testing.T) {
	db := newTestDB(t)
	author := createTestAuthor(t, db)

	post := createTestPost(t, db, author, "Hello World")

	if post.ID == "" {
		t.Error("Create() did not generate an ID")
	}
	if post.Date == "" {
		t.Error("Create() did not stamp a publish date")
	}
}

func TestPostCreate_RejectsUnknownAuthor(t *testing.T) {
	db := newTestDB(t)

	post := &model.Post{
		Title:  "Orphan",
		Author: model.Author{ID: 12345, Name: "Nobody"},
	}
	if err := db.Posts.Create(context.Background(), post); err == nil {
		t.Fatal("Create() should fail the foreign key check for a nonexistent author")
	}
}

func TestPostList_InsertionOrder(t *testing.T) {
	db := newTestDB(t)
	author := createTestAuthor(t, db)

	createTestPost(t, db, author, "First")
	createTestPost(t, db, author, "Second")
	createTestPost(t, db, author, "Third")

	posts, err := db.Posts.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("List() returned %d posts, want 3", len(posts))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if posts[i].Title != want {
			t.Errorf("posts[%d].Title = %q, want %q", i, posts[i].Title, want)
		}
	}
}

func TestPostGetByTitle_CaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	author := createTestAuthor(t, db)

	created := createTestPost(t, db, author, "Hello World")

	for _, lookup := range []string{"Hello World", "hello world", "HELLO WORLD", "hElLo WoRlD"} {
		got, err := db.Posts.GetByTitle(context.Background(), lookup)
		if err != nil {
			t.Fatalf("GetByTitle(%q) error = %v", lookup, err)
		}
		if got.ID != created.ID {
			t.Errorf("GetByTitle(%q) = post %s, want %s", lookup, got.ID, created.ID)
		}
	}
}

func TestPostGetByTitle_DuplicateTitlesLastMatchWins(t *testing.T) {
	db := newTestDB(t)
	author := createTestAuthor(t, db)

	createTestPost(t, db, author, "Duplicate")
	newer := createTestPost(t, db, author, "duplicate")

	got, err := db.Posts.GetByTitle(context.Background(), "DUPLICATE")
	if err != nil {
		t.Fatalf("GetByTitle() error = %v", err)
	}
	if got.ID != newer.ID {
		t.Errorf("GetByTitle() = post %s, want the later post %s", got.ID, newer.ID)
	}
}

func TestPostGetByTitle_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Posts.GetByTitle(context.Background(), "No Such Post")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostGetByID(t *testing.T) {
	db := newTestDB(t)
	author := createTestAuthor(t, db)

	created := createTestPost(t, db, author, "Findable")

	got, err := db.Posts.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Findable" {
		t.Errorf("Title = %q, want Findable", got.Title)
	}
	if got.Author.ID != author.ID || got.Author.Name != "Ada Lovelace" {
		t.Errorf("author binding = %+v, want %+v", got.Author, author)
	}

	if _, err := db.Posts.GetByID(context.Background(), "missing-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPostListByAuthor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ada := createTestAuthor(t, db)

	other := &model.User{FirstName: "Grace", Email: "grace@example.com", Password: "hash"}
	if err := db.Users.Create(ctx, other); err != nil {
		t.Fatalf("creating second author: %v", err)
	}
	grace := model.Author{ID: other.ID, Name: "Grace Hopper"}

	createTestPost(t, db, ada, "Ada One")
	createTestPost(t, db, grace, "Grace One")
	createTestPost(t, db, ada, "Ada Two")

	posts, err := db.Posts.ListByAuthor(ctx, ada.ID)
	if err != nil {
		t.Fatalf("ListByAuthor() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ListByAuthor() returned %d posts, want 2", len(posts))
	}
	if posts[0].Title != "Ada One" || posts[1].Title != "Ada Two" {
		t.Errorf("titles = %q, %q; want Ada One, Ada Two", posts[0].Title, posts[1].Title)
	}

	empty, err := db.Posts.ListByAuthor(ctx, 99999)
	if err != nil {
		t.Fatalf("ListByAuthor(unknown) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListByAuthor(unknown) returned %d posts, want 0", len(empty))
	}
}

func TestPostUpdate_RewritesTitleAndBodyOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestAuthor(t, db)

	post := createTestPost(t, db, author, "Original Title")
	originalDate := post.Date

	post.Title = "New Title"
	post.Body = "<p>rewritten</p>"
	if err := db.Posts.Update(ctx, post); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.Posts.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "New Title" || got.Body != "<p>rewritten</p>" {
		t.Errorf("post = %q / %q after update", got.Title, got.Body)
	}
	if got.Date != originalDate {
		t.Errorf("Date changed on update: %q -> %q", originalDate, got.Date)
	}
	if got.Author.ID != author.ID {
		t.Errorf("author binding changed on update: %d -> %d", author.ID, got.Author.ID)
	}
}

func TestPostUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Posts.Update(context.Background(), &model.Post{ID: "missing", Title: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestPostDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	author := createTestAuthor(t, db)

	post := createTestPost(t, db, author, "Doomed")

	if err := db.Posts.Delete(ctx, post.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.Posts.GetByTitle(ctx, "Doomed"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("post still findable after delete: %v", err)
	}

	if err := db.Posts.Delete(ctx, post.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
