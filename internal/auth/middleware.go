package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type used for context keys in this package.
//
// Using a package-private type prevents collisions: only this package
// can create a key of type contextKey, so only this package can read or
// write the session value in a request context.
type contextKey string

const sessionKey contextKey = "session"

// RestoreSession is the session-manager half of the request pipeline.
//
// It runs on EVERY request: if a valid session cookie is present, the
// snapshot is deserialized and stored in the request context; if the
// cookie is missing, expired, or tampered with, the request simply
// proceeds as anonymous. It never blocks a request — that is the
// guards' job below.
func RestoreSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				if sess, err := sessions.Restore(cookie.Value); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionKey, sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth guards routes that need an authenticated session
// (compose, dashboard, edit, delete).
//
// This is a browser-facing app, so denial is a redirect to the login
// page rather than a 401 — the user lands somewhere they can fix the
// problem. RestoreSession must run earlier in the chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedirectIfAuthenticated guards the register and login pages: a user
// who already has a session is sent to their dashboard instead of being
// shown a login form.
func RedirectIfAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext retrieves the restored session snapshot.
//
// Returns (nil, false) if the request is anonymous. On routes behind
// RequireAuth it always returns (sess, true).
func SessionFromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}
