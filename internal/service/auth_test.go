package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/blogit/internal/apperror"
	"github.com/sakif/blogit/internal/auth"
	"github.com/sakif/blogit/internal/model"
)

// fakeUserRepo is an in-memory UserRepository. It mimics the real
// store's shape: ascending assigned IDs, no uniqueness on email, and
// GetByEmail returning the oldest matching row.
type fakeUserRepo struct {
	users  []model.User
	nextID int64
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", "id")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthService() (*AuthService, *fakeUserRepo) {
	repo := &fakeUserRepo{}
	svc := NewAuthService(repo, auth.NewPasswordServiceForTest(4), discardLogger())
	return svc, repo
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_ThenAuthenticate(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Ada", "Lovelace", "Ada@Example.com", "s3cret")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email, "email should be lowercased")
	assert.NotEqual(t, "s3cret", user.Password, "password must be stored hashed")

	got, err := svc.Authenticate(ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegister_DuplicateEmailKeepsFirstAccount(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	first, err := svc.Register(ctx, "Ada", "", "ada@example.com", "first-pass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Impostor", "", "ada@example.com", "other-pass")
	require.ErrorIs(t, err, apperror.ErrDuplicateRegistration)

	// The original account is untouched and still logs in.
	assert.Len(t, repo.users, 1)
	got, err := svc.Authenticate(ctx, "ada@example.com", "first-pass")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "", "a@b.com", "pw")
	assert.ErrorIs(t, err, apperror.ErrValidation, "missing first name")

	_, err = svc.Register(ctx, "Ada", "", "", "pw")
	assert.ErrorIs(t, err, apperror.ErrValidation, "missing email")

	_, err = svc.Register(ctx, "Ada", "", "a@b.com", "")
	assert.ErrorIs(t, err, apperror.ErrValidation, "missing password")
}

// =========================================================================
// AUTHENTICATE TESTS
// =========================================================================

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ada", "", "ada@example.com", "right")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmailSameError(t *testing.T) {
	svc, _ := newTestAuthService()

	// Unknown account must fail with the exact same error kind as a
	// wrong password, so the response never reveals which one it was.
	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

func TestAuthenticate_FederatedOnlyAccountRejectsLocalLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.LoginOrRegisterGoogle(ctx, &auth.GoogleUser{
		Email:     "fed@example.com",
		GivenName: "Fed",
	})
	require.NoError(t, err)

	// Even guessing the sentinel itself must not open the account.
	_, err = svc.Authenticate(ctx, "fed@example.com", model.FederatedPassword)
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
}

// =========================================================================
// GOOGLE LOGIN-OR-REGISTER TESTS
// =========================================================================

func TestLoginOrRegisterGoogle_CreatesFederatedAccount(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	user, err := svc.LoginOrRegisterGoogle(ctx, &auth.GoogleUser{
		Email:      "New@Example.com",
		GivenName:  "New",
		FamilyName: "User",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, model.FederatedPassword, user.Password)
	assert.True(t, user.Federated())
	assert.Len(t, repo.users, 1)
}

func TestLoginOrRegisterGoogle_IsIdempotent(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	first, err := svc.LoginOrRegisterGoogle(ctx, &auth.GoogleUser{Email: "g@example.com", GivenName: "G"})
	require.NoError(t, err)

	second, err := svc.LoginOrRegisterGoogle(ctx, &auth.GoogleUser{Email: "g@example.com", GivenName: "G"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.users, 1)
}

func TestLoginOrRegisterGoogle_MergesOntoLocalAccount(t *testing.T) {
	svc, repo := newTestAuthService()
	ctx := context.Background()

	local, err := svc.Register(ctx, "Ada", "Lovelace", "ada@example.com", "local-pass")
	require.NoError(t, err)

	// First federated login with the same email returns the existing
	// account unchanged — same ID, local password still intact.
	merged, err := svc.LoginOrRegisterGoogle(ctx, &auth.GoogleUser{
		Email:     "ada@example.com",
		GivenName: "Different",
	})
	require.NoError(t, err)
	assert.Equal(t, local.ID, merged.ID)
	assert.Equal(t, "Ada", merged.FirstName)
	assert.Len(t, repo.users, 1)

	_, err = svc.Authenticate(ctx, "ada@example.com", "local-pass")
	assert.NoError(t, err, "local login must keep working after the merge")
}

func TestLoginOrRegisterGoogle_RequiresEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.LoginOrRegisterGoogle(context.Background(), &auth.GoogleUser{GivenName: "NoEmail"})
	assert.Error(t, err)

	_, err = svc.LoginOrRegisterGoogle(context.Background(), nil)
	assert.Error(t, err)
}
