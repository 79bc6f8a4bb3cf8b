package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/auth"
	"github.com/sakif/blogit/internal/model"
	"github.com/sakif/blogit/internal/service"
)

// AuthHandler manages registration, local login, logout, and the
// Google OAuth flow.
//
// RESPONSIBILITY SPLIT:
// AuthService decides WHO the user is; SessionService turns that into a
// cookie. This handler owns everything HTTP: form parsing, cookies,
// redirects, and re-rendering forms with error messages.
type AuthHandler struct {
	authsvc  *service.AuthService
	sessions *auth.SessionService
	google   *auth.GoogleProvider
	render   *Renderer
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler. google may be nil when OAuth
// credentials aren't configured; the routes are only registered when it
// is present.
func NewAuthHandler(
	authsvc *service.AuthService,
	sessions *auth.SessionService,
	google *auth.GoogleProvider,
	render *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authsvc:  authsvc,
		sessions: sessions,
		google:   google,
		render:   render,
		logger:   logger,
	}
}

// HandleRegisterPage serves GET /register.
// The RedirectIfAuthenticated guard has already bounced logged-in users
// to /dashboard.
func (h *AuthHandler) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "register", map[string]any{
		"GoogleEnabled": h.google != nil,
	})
}

// HandleRegister serves POST /register.
//
// A duplicate email or a missing field re-renders the form with the
// error message; anything else is a store failure and gets the generic
// error response. On success the new user is logged in immediately.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	user, err := h.authsvc.Register(r.Context(),
		r.PostFormValue("firstName"),
		r.PostFormValue("lastName"),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
	)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) &&
			(errors.Is(err, apperror.ErrDuplicateRegistration) || errors.Is(err, apperror.ErrValidation)) {
			h.render.Render(w, r, "register", map[string]any{
				"Error":         appErr.Message,
				"GoogleEnabled": h.google != nil,
			})
			return
		}
		h.logger.Error("register failed", slog.String("error", err.Error()))
		h.render.ServerError(w)
		return
	}

	h.login(w, r, user)
}

// HandleLoginPage serves GET /login.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, "login", map[string]any{
		"GoogleEnabled": h.google != nil,
	})
}

// HandleLogin serves POST /login.
//
// Invalid credentials — whatever the actual cause — re-render the form
// with the single vague message from apperror.InvalidCredentials, so a
// failed login reveals nothing about account existence.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	user, err := h.authsvc.Authenticate(r.Context(),
		r.PostFormValue("email"),
		r.PostFormValue("password"),
	)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidCredentials) {
			var appErr *apperror.AppError
			errors.As(err, &appErr)
			h.render.Render(w, r, "login", map[string]any{
				"Error":         appErr.Message,
				"GoogleEnabled": h.google != nil,
			})
			return
		}
		h.logger.Error("login failed", slog.String("error", err.Error()))
		h.render.ServerError(w)
		return
	}

	h.login(w, r, user)
}

// HandleLogout serves GET /logout.
//
// Invalidation completes before the redirect is issued. Clearing a
// cookie cannot fail, so there is nothing to surface to the caller;
// the event is still logged for the audit trail.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		h.logger.Info("user logged out", slog.Int64("userID", sess.UserID))
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleGoogleLogin serves GET /auth/google — redirects the browser to
// Google's authorization page.
//
// The random state nonce goes into a short-lived cookie; the callback
// verifies Google echoes it back (CSRF protection on the OAuth flow).
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — long enough to approve, short enough to limit risk
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback serves GET /auth/google/dashboard.
//
// FLOW:
//  1. Verify the state parameter against the cookie (CSRF check)
//  2. Exchange the code for a Google profile
//  3. Match-or-create the local account by email
//  4. Issue the session cookie and land on the dashboard
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	gUser, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		h.render.ServerError(w)
		return
	}

	user, err := h.authsvc.LoginOrRegisterGoogle(r.Context(), gUser)
	if err != nil {
		h.logger.Error("google callback: login-or-register failed", slog.String("error", err.Error()))
		h.render.ServerError(w)
		return
	}

	h.login(w, r, user)
}

// login issues the session cookie and redirects to the dashboard.
// Shared tail of the register, local-login, and Google-callback flows.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, user *model.User) {
	token, err := h.sessions.Issue(user)
	if err != nil {
		h.logger.Error("issuing session failed",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
		h.render.ServerError(w)
		return
	}

	h.sessions.SetCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
