package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/blogit/internal/service"
)

// homeStartingContent is the intro paragraph shown above the post list
// on the home page.
const homeStartingContent = "Welcome to BlogIT, the digital haven where words come to life and ideas take flight. As we usher you into a realm of boundless creativity and compelling narratives, BlogIT stands as a vibrant community dedicated to the art of blogging. Whether you're an experienced wordsmith or a novice storyteller, our platform is your canvas. Engage with thought-provoking articles, diverse perspectives, and the latest insights across a spectrum of topics. BlogIT is not just a website; it's a celebration of expression, a nexus where the power of words converges with the dynamic pulse of the digital age. Join us on this exciting journey, where every post is a step into the extraordinary tapestry of the blogosphere."

// PageHandler serves the public pages: home, about, contact.
type PageHandler struct {
	posts  *service.PostService
	render *Renderer
	logger *slog.Logger
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(posts *service.PostService, render *Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{posts: posts, render: render, logger: logger}
}

// HandleHome serves GET / — the intro blurb plus every post.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		h.logger.Error("home: listing posts", slog.String("error", err.Error()))
		h.render.ServerError(w)
		return
	}

	h.render.Render(w, r, "home", map[string]any{
		"Home":  homeStartingContent,
		"Posts": posts,
	})
}

// HandleAbout serves GET /about.
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "about", nil)
}

// HandleContact serves GET /contact.
func (h *PageHandler) HandleContact(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "contact", nil)
}
