// Package handler contains the HTTP request handlers for BlogIT.
//
// Handlers are the glue between HTTP and the service layer: they parse
// forms and URL params, call a service, and render a template or issue
// a redirect. Business rules live in internal/service; handlers never
// touch the database directly.
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/sakif/blogit/internal/auth"
)

// Renderer parses the HTML templates once at startup and renders them
// per request.
//
// TEMPLATE COMPOSITION:
// Every page template defines {{define "content"}}...{{end}} and is
// parsed together with base.html, which provides the shell (head, nav,
// footer) and a {{template "content" .}} slot. Each page therefore gets
// its own *template.Template set, keyed by page name.
//
// html/template escapes all interpolated values by default, which is
// the property the views rely on for user-supplied text.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// pageNames lists every view that composes with base.html.
var pageNames = []string{
	"home", "about", "contact", "blog", "compose",
	"login", "register", "dashboard", "author",
}

// funcs are the helpers available to every template. safeHTML marks a
// post body as pre-sanitized: bodies pass through the bluemonday policy
// at write time (see service.PostService), so rendering them unescaped
// here is safe — everything else stays auto-escaped.
var funcs = template.FuncMap{
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
}

// NewRenderer parses all templates under templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFiles(
			filepath.Join(templateDir, "base.html"),
			filepath.Join(templateDir, name+".html"),
		)
		if err != nil {
			return nil, err
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, logger: logger}, nil
}

// Render executes the named page with the given data.
//
// The current session snapshot (if any) is injected under "Session" so
// base.html can switch the nav between login/register and
// dashboard/logout without every handler passing it explicitly.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	tmpl, ok := rd.pages[page]
	if !ok {
		rd.logger.Error("unknown template", slog.String("page", page))
		rd.ServerError(w)
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		data["Session"] = sess
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		rd.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// ServerError sends the generic failure response. Internal details
// (SQL, file paths) are logged server-side, never shown to the client.
func (rd *Renderer) ServerError(w http.ResponseWriter) {
	http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
}
