package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account, identified by phone number
type User struct {
	ID           int       `json:"id"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // Do not expose password hash in JSON responses
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`

	// NeedsHashing marks PasswordHash as still holding plaintext. It is set by
	// SetPassword and cleared by the credential store once the hash is computed.
	// Never persisted.
	NeedsHashing bool `json:"-"`
}

// SetPassword stages a plaintext password for hashing at the store's write
// boundary. The plaintext itself never reaches the database.
func (u *User) SetPassword(plain string) {
	u.PasswordHash = plain
	u.NeedsHashing = true
}

// Roles returns the full role set for the user. Every account carries the
// base "user" role.
func (u *User) Roles() []string {
	if u.Role == RoleAdmin {
		return []string{RoleAdmin, RoleUser}
	}
	return []string{RoleUser}
}

// IsAdmin reports whether the role set contains the admin role.
func IsAdmin(roles []string) bool {
	for _, r := range roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
