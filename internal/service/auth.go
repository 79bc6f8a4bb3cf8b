// Package service — authentication business logic.
//
// AuthService is the business layer for accounts. It sits between the
// HTTP handlers and the repository/auth utilities:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt)
//
// KEY RESPONSIBILITIES:
//   - Registration with the lookup-before-insert duplicate check
//   - Local login with a failure result that never reveals whether the
//     account exists (message OR timing)
//   - The Google login-or-register flow, including the silent merge of
//     a federated login onto an existing local account with the same
//     email
//
// Session issuance is NOT here: cookies are an HTTP concern, so the
// handlers call auth.SessionService themselves after these methods
// return a user.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/auth"
	"github.com/sakif/blogit/internal/model"
	"github.com/sakif/blogit/internal/repository"
)

// AuthService handles the account and login business logic.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a local account.
//
// DUPLICATE CHECK:
// Email uniqueness is enforced here by lookup-before-insert, not by a
// database constraint — a second registration with a used email fails
// with ErrDuplicateRegistration and the first account is untouched.
// (Two registrations racing on the same email could both pass the
// check; the store then holds two rows and logins resolve to the older
// one. Accepted, same as the document store this replaces.)
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (*model.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(strings.ToLower(email))

	if firstName == "" {
		return nil, apperror.ValidationFailed("firstName", "first name is required")
	}
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperror.DuplicateRegistration(email)
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	user := &model.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Authenticate verifies an email/password pair.
//
// Every failure — unknown email, federated-only account, wrong
// password — collapses to the same ErrInvalidCredentials, and every
// failure path pays one bcrypt comparison (a dummy one when there is no
// real hash), so neither the message nor the response time reveals
// whether the account exists.
//
// The one exception is a malformed stored hash: that's data corruption,
// surfaced as ErrHashFormat so the request fails loudly instead of
// looking like a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.DummyVerify(password)
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	if user.Federated() {
		// Google-only account: local login is disabled. Burn the same
		// bcrypt cost as a real comparison before refusing.
		s.passwords.DummyVerify(password)
		return nil, apperror.InvalidCredentials()
	}

	ok, err := s.passwords.Verify(user.Password, password)
	if err != nil {
		s.logger.Error("stored password hash is malformed",
			slog.Int64("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if !ok {
		return nil, apperror.InvalidCredentials()
	}

	s.logger.Info("user authenticated",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// LoginOrRegisterGoogle exchanges a Google profile for a local account.
//
// Match is by email only. If an account with that email already exists
// it is returned unchanged — even when it has a real local password and
// this is its first federated login. That silently merges the two
// identities; no password confirmation is asked for. (Deliberate: the
// email is the sole key linking local and federated identities.)
//
// If no account matches, one is created with the profile's names (a
// missing family name becomes the empty string) and the federated-only
// sentinel in the password field, so local login stays disabled for it.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, gUser *auth.GoogleUser) (*model.User, error) {
	if gUser == nil || gUser.Email == "" {
		return nil, fmt.Errorf("service/auth: Google profile must include an email")
	}
	email := strings.TrimSpace(strings.ToLower(gUser.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("user authenticated via Google",
			slog.Int64("userID", user.ID),
			slog.String("email", user.Email),
		)
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up %s: %w", email, err)
	}

	user = &model.User{
		FirstName: gUser.GivenName,
		LastName:  gUser.FamilyName,
		Email:     email,
		Password:  model.FederatedPassword,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating Google user %s: %w", email, err)
	}

	s.logger.Info("user registered via Google",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}
