// Package auth provides the credential and session machinery for BlogIT:
// bcrypt password hashing, Google OAuth, and cookie-based sessions.
//
// SESSION FLOW OVERVIEW:
//  1. A user logs in (local password or Google callback)
//  2. SessionService serializes a snapshot of the user into a signed
//     token and sets it as an HttpOnly cookie
//  3. On every later request, middleware restores the snapshot from the
//     cookie — no database lookup — and puts it in the request context
//  4. Logout clears the cookie
//
// WHY A SIGNED TOKEN AND NOT A SERVER-SIDE SESSION TABLE?
// The token is stateless: everything needed to identify the user rides
// inside the signed payload, so restoring a session costs zero store
// round trips. The HMAC signature means nobody can forge or edit a
// snapshot without the secret key.
//
// THE SNAPSHOT IS DELIBERATELY STALE:
// The user record is serialized once at login and deserialized verbatim
// on each request; it is never re-fetched from the store. Profiles are
// immutable in this app, so the snapshot can't diverge. If profile
// editing is ever added, Restore must start re-reading the store.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/blogit/internal/model"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// DefaultSessionTTL is how long an issued session stays valid when no
// explicit TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Session is the authenticated identity restored from a request.
//
// It is a snapshot of the User record at login time — the password hash
// is intentionally excluded (the token is signed, not encrypted, and
// nothing ever reads the hash out of a session).
type Session struct {
	UserID    int64
	FirstName string
	LastName  string
	Email     string
}

// DisplayName mirrors model.User.DisplayName for the session snapshot.
func (s *Session) DisplayName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// sessionClaims is the token payload. The standard "sub" claim carries
// the numeric user ID; the profile fields ride alongside so handlers
// can render the author name without touching the store.
type sessionClaims struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// SessionService issues and restores session tokens.
//
// It holds the HMAC secret used to sign and verify tokens. The same
// secret must be used for both operations — keep it out of source
// control and rotate it periodically in production.
type SessionService struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionService creates a SessionService with the given secret and
// session lifetime. A ttl of zero falls back to DefaultSessionTTL.
// The secret should be at least 32 bytes of random data in production:
//
//	SESSION_SECRET=$(openssl rand -hex 32)
func NewSessionService(secret string, ttl time.Duration) (*SessionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the configured session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue serializes the user into a signed session token.
//
// Called on successful local login, registration, and Google callback.
// The entire identity the app needs — ID, names, email — is captured
// here; see the package comment on snapshot staleness.
func (s *SessionService) Issue(user *model.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", fmt.Errorf("auth: cannot issue session for unsaved user")
	}

	now := time.Now()
	c := sessionClaims{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "blogit",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}

	return signed, nil
}

// Restore parses and verifies a session token, returning the snapshot
// it carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches "blogit"
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *SessionService) Restore(tokenStr string) (*Session, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("blogit"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: session expired")
		}
		return nil, fmt.Errorf("auth: invalid session token: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid session claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, fmt.Errorf("auth: session token has no subject")
	}

	return &Session{
		UserID:    userID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
	}, nil
}

// SetCookie attaches the session token to the response.
//
// HttpOnly = JavaScript cannot read the cookie (XSS protection).
// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
// Secure should be true in production (HTTPS only); false for local dev.
func (s *SessionService) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // Uncomment in production (requires HTTPS)
	})
}

// ClearCookie invalidates the session by telling the browser to delete
// the cookie immediately. The token itself stays technically valid
// until expiry, but without the cookie the browser can't send it.
func (s *SessionService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
