// Package auth — password hashing utilities.
//
// WHY BCRYPT?
// bcrypt is a password hashing function specifically designed to be slow.
// That slowness is a security feature: it makes brute-force attacks expensive.
//
// bcrypt automatically:
//   - Generates a random salt (so two users with the same password get different hashes)
//   - Embeds the salt in the output hash (no separate salt column needed)
//   - Controls the work factor via "cost" (higher = slower = harder to crack)
//
// Because the salt is fresh on every call, hashing the same plaintext
// twice produces two different outputs — equality comparison of stored
// hashes can never reveal that two accounts share a password.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/blogit/internal/apperror"
)

// defaultCost is the bcrypt work factor.
//
// Cost 12 takes roughly ~250ms on a modern server — negligible for a
// login, brutal for an attacker grinding through a password list.
const defaultCost = 12

// dummyHash is a valid bcrypt hash of an unguessable constant. Verify
// runs against it when there is no real hash to compare (unknown email,
// federated-only account) so that failing login attempts cost the same
// whether or not the account exists.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected in
// tests — cost 4 makes tests run much faster without changing the logic
// being tested.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a reduced
// bcrypt cost. Use cost 4 (the minimum) in tests to avoid the ~250ms
// overhead per hashing operation. Do NOT use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string like:
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// Store this string directly — it embeds the salt and cost, and Verify
// knows how to decode it. Two calls with the same plaintext produce
// different outputs (fresh salt each time).
//
// Returns an error if the plaintext is too long (>72 bytes — a bcrypt limit).
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		// bcrypt silently truncates passwords longer than 72 bytes.
		// We reject them explicitly so callers aren't surprised.
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
//
// A mismatch is NOT an error: it returns (false, nil). The only error
// case is a malformed stored hash, which surfaces as
// apperror.ErrHashFormat — that means the credential row is corrupt and
// the request should fail loudly.
//
// bcrypt.CompareHashAndPassword recomputes with the salt embedded in
// the stored hash and compares in constant time, so this is safe
// against timing attacks on the comparison itself.
func (p *PasswordService) Verify(hash, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		// Anything else (ErrHashTooShort, bad version, bad cost) means
		// the stored value isn't a bcrypt hash at all.
		return false, apperror.HashFormat(err)
	}
	return true, nil
}

// DummyVerify burns one bcrypt comparison against a constant hash.
//
// Local login calls this on the paths where no real hash exists, so an
// attacker can't distinguish "no such account" from "wrong password" by
// measuring response time. The result is discarded; it can never match.
func (p *PasswordService) DummyVerify(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
}
