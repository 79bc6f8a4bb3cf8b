// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and render templates; services enforce the rules;
// repositories talk to the database. Services receive repository
// INTERFACES, not concrete types, so tests can hand them in-memory
// fakes and production can swap the storage backend without touching
// this package.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/auth"
	"github.com/sakif/blogit/internal/model"
	"github.com/sakif/blogit/internal/repository"
)

const MaxTitleLength = 200

// PostService handles business logic for blog posts.
//
// sanitizer is a bluemonday UGC policy applied to post bodies before
// they are stored: authors may paste formatted text, but scripts, event
// handlers and the like never reach the database.
//
// strictOwnership is an opt-in switch. Historically ANY authenticated
// user could edit or delete ANY post, and that remains the default so
// existing deployments keep their behaviour. With strict ownership on,
// edit and delete require the actor to be the post's author.
type PostService struct {
	posts           repository.PostRepository
	sanitizer       *bluemonday.Policy
	strictOwnership bool
	logger          *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, strictOwnership bool, logger *slog.Logger) *PostService {
	return &PostService{
		posts:           posts,
		sanitizer:       bluemonday.UGCPolicy(),
		strictOwnership: strictOwnership,
		logger:          logger,
	}
}

// Compose validates and saves a new post on behalf of the actor.
//
// The author binding — the actor's ID and "<first> <last>" display
// name — is stamped here and never refreshed afterwards. The publish
// date is stamped by the repository at insert time.
func (s *PostService) Compose(ctx context.Context, actor *auth.Session, title, body string) (*model.Post, error) {
	if actor == nil {
		return nil, apperror.Forbidden("authentication required to compose")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "post title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("post title must be %d characters or less", MaxTitleLength))
	}

	post := &model.Post{
		Title: title,
		Body:  s.sanitizer.Sanitize(body),
		Author: model.Author{
			ID:   actor.UserID,
			Name: actor.DisplayName(),
		},
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("title", post.Title),
		slog.Int64("authorID", post.Author.ID),
	)

	return post, nil
}

// ListAll returns every post for the home page.
func (s *PostService) ListAll(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// FindByTitle resolves the title slug from a /blogs/{title} URL.
// Returns apperror.ErrNotFound when nothing matches; the handler
// renders the view with an absent post rather than a 404.
func (s *PostService) FindByTitle(ctx context.Context, title string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "post title is required")
	}
	return s.posts.GetByTitle(ctx, title)
}

// ListByAuthor returns the posts stamped with the given author ID —
// both the public author page and the dashboard use it.
func (s *PostService) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		s.logger.Error("failed to list posts by author",
			slog.Int64("authorID", authorID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing posts by author: %w", err)
	}
	return posts, nil
}

// Edit updates the title and body of the post currently resolved by
// lookupTitle (same case-folded, last-match-wins lookup the URLs use).
// Author and date are immutable and never touched.
func (s *PostService) Edit(ctx context.Context, actor *auth.Session, lookupTitle, newTitle, newBody string) (*model.Post, error) {
	post, err := s.posts.GetByTitle(ctx, strings.TrimSpace(lookupTitle))
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnership(actor, post, "edit"); err != nil {
		return nil, err
	}

	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return nil, apperror.ValidationFailed("title", "post title is required")
	}
	if len(newTitle) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("post title must be %d characters or less", MaxTitleLength))
	}

	post.Title = newTitle
	post.Body = s.sanitizer.Sanitize(newBody)

	if err := s.posts.Update(ctx, post); err != nil {
		s.logger.Error("failed to update post",
			slog.String("id", post.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating post: %w", err)
	}

	s.logger.Info("post updated",
		slog.String("id", post.ID),
		slog.String("title", post.Title),
	)

	return post, nil
}

// Delete removes a post by its ID.
func (s *PostService) Delete(ctx context.Context, actor *auth.Session, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "post ID is required")
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(actor, post, "delete"); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("post deleted", slog.String("id", id))
	return nil
}

// checkOwnership enforces author match on mutations, but ONLY when
// strict ownership mode is enabled. The permissive default is the
// historical behaviour and is kept on purpose — see NewPostService.
func (s *PostService) checkOwnership(actor *auth.Session, post *model.Post, action string) error {
	if actor == nil {
		return apperror.Forbidden("authentication required")
	}
	if !s.strictOwnership {
		return nil
	}
	if post.Author.ID != actor.UserID {
		return apperror.Forbidden(fmt.Sprintf("only the author may %s this post", action))
	}
	return nil
}
