package domain

import "time"

// User is the credential record for an account. PasswordHash never leaves the
// service layer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// Identity returns the public projection used by authenticated handlers.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Email: u.Email}
}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	ID    string
	Email string
}
