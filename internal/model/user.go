// Package model defines the data structures used throughout the application.
package model

import "time"

// FederatedPassword is the sentinel stored in the password column for
// accounts created through Google login. Such accounts never hold a real
// bcrypt hash, and local password login is disabled for them.
//
// WHY A SENTINEL AND NOT A NULL COLUMN?
// The email is the sole key that links local and federated identities.
// Keeping the marker in the column the hash lives in means every account
// answers "can this account do a local login?" with a single field, and
// the local auth path can refuse federated-only accounts without a
// schema special case.
const FederatedPassword = "google"

// User represents a registered account.
//
// The numeric ID is assigned by the database (AUTOINCREMENT), so it is
// monotonic and never reused — we deliberately do not compute IDs in
// application code.
//
// Email doubles as the login key. Uniqueness is enforced by a
// lookup-before-insert in the auth service rather than a UNIQUE
// constraint; see AuthService.Register.
//
// Password holds either a bcrypt hash or FederatedPassword. There is no
// profile editing: a User row is written once and only read after that.
type User struct {
	ID        int64     `json:"id"        db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName"  db:"last_name"`
	Email     string    `json:"email"     db:"email"`
	Password  string    `json:"-"         db:"password"` // bcrypt hash or FederatedPassword; never serialized
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Federated reports whether this account only authenticates via Google.
func (u *User) Federated() bool {
	return u.Password == FederatedPassword
}

// DisplayName is the "<first> <last>" form stamped onto posts.
func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
