package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/auth"
	"github.com/sakif/blogit/internal/service"
)

// PostHandler manages composing, viewing, editing, and deleting posts,
// plus the author page and the dashboard.
//
// Routes that mutate are mounted behind auth.RequireAuth, so handlers
// here can assume SessionFromContext succeeds on those paths.
type PostHandler struct {
	posts  *service.PostService
	render *Renderer
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, render *Renderer, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, render: render, logger: logger}
}

// HandleComposePage serves GET /compose — an empty compose form.
// The same template doubles as the edit form when "Post" is set.
func (h *PostHandler) HandleComposePage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "compose", nil)
}

// HandleCompose serves POST /compose.
func (h *PostHandler) HandleCompose(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess, _ := auth.SessionFromContext(r.Context())

	_, err := h.posts.Compose(r.Context(), sess,
		r.PostFormValue("blogTitle"),
		r.PostFormValue("blogBody"),
	)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && errors.Is(err, apperror.ErrValidation) {
			h.render.Render(w, r, "compose", map[string]any{"Error": appErr.Message})
			return
		}
		h.logger.Error("compose failed", slog.String("error", err.Error()))
		h.render.ServerError(w)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleBlog serves GET /blogs/{title}.
//
// A title that matches nothing still renders the page, just with no
// post — that is the long-standing behaviour, kept on purpose instead
// of a 404.
func (h *PostHandler) HandleBlog(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	data := map[string]any{}

	post, err := h.posts.FindByTitle(r.Context(), title)
	switch {
	case err == nil:
		data["Post"] = post
	case errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation):
		// render with an absent post
	default:
		h.logger.Error("blog lookup failed",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		h.render.ServerError(w)
		return
	}

	// The sidebar lists every post, same as the home page.
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		h.logger.Error("blog: listing posts", slog.String("error", err.Error()))
		h.render.ServerError(w)
		return
	}
	data["Posts"] = posts

	h.render.Render(w, r, "blog", data)
}

// HandleDelete serves POST /blogs/{title}.
//
// HTML forms can only GET and POST, so deletion rides a POST carrying a
// method-override field: _method=DELETE (query or form) plus the post's
// ID in deleteBlog. Any other action is a 400.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	action := r.URL.Query().Get("_method")
	if action == "" {
		action = r.PostFormValue("_method")
	}
	if action != "DELETE" {
		http.Error(w, "Invalid action", http.StatusBadRequest)
		return
	}

	sess, _ := auth.SessionFromContext(r.Context())

	err := h.posts.Delete(r.Context(), sess, r.PostFormValue("deleteBlog"))
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		case errors.Is(err, apperror.ErrNotFound):
			// Already gone — a stale form double-submitted. Land home.
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			h.logger.Error("delete failed", slog.String("error", err.Error()))
			h.render.ServerError(w)
		}
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleEditPage serves GET /edit/{title} — the compose form prefilled
// with the post resolved by title. An unmatched title shows the form
// empty, same as a fresh compose.
func (h *PostHandler) HandleEditPage(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	data := map[string]any{}
	post, err := h.posts.FindByTitle(r.Context(), title)
	switch {
	case err == nil:
		data["Post"] = post
	case errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrValidation):
	default:
		h.logger.Error("edit lookup failed",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		h.render.ServerError(w)
		return
	}

	h.render.Render(w, r, "compose", data)
}

// HandleEdit serves POST /edit/{title}.
//
// The URL's title is the lookup key (re-resolved the same way the view
// resolves it); the form carries the new title and body. On success the
// browser lands on the post's NEW title.
func (h *PostHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	sess, _ := auth.SessionFromContext(r.Context())

	post, err := h.posts.Edit(r.Context(), sess,
		chi.URLParam(r, "title"),
		r.PostFormValue("blogTitle"),
		r.PostFormValue("blogBody"),
	)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		case errors.Is(err, apperror.ErrNotFound):
			http.Redirect(w, r, "/", http.StatusSeeOther)
		case errors.Is(err, apperror.ErrValidation):
			var appErr *apperror.AppError
			errors.As(err, &appErr)
			h.render.Render(w, r, "compose", map[string]any{"Error": appErr.Message})
		default:
			h.logger.Error("edit failed", slog.String("error", err.Error()))
			h.render.ServerError(w)
		}
		return
	}

	http.Redirect(w, r, "/blogs/"+url.PathEscape(post.Title), http.StatusSeeOther)
}

// HandleAuthor serves GET /author/{userID} — the public list of one
// author's posts. The display name comes off the posts themselves (the
// author binding), so no user lookup is needed.
func (h *PostHandler) HandleAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid author ID", http.StatusBadRequest)
		return
	}

	posts, err := h.posts.ListByAuthor(r.Context(), authorID)
	if err != nil {
		h.logger.Error("author page failed",
			slog.Int64("authorID", authorID),
			slog.String("error", err.Error()),
		)
		h.render.ServerError(w)
		return
	}

	authorName := ""
	if len(posts) > 0 {
		authorName = posts[0].Author.Name
	}

	h.render.Render(w, r, "author", map[string]any{
		"AuthorName": authorName,
		"Posts":      posts,
	})
}

// HandleDashboard serves GET /dashboard — the logged-in author's own
// posts with edit and delete controls.
func (h *PostHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFromContext(r.Context())

	posts, err := h.posts.ListByAuthor(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("dashboard failed",
			slog.Int64("userID", sess.UserID),
			slog.String("error", err.Error()),
		)
		h.render.ServerError(w)
		return
	}

	h.render.Render(w, r, "dashboard", map[string]any{
		"Posts": posts,
	})
}
