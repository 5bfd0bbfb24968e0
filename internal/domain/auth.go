package domain

import "time"

// TokenTypeBearer is the token_type reported to clients.
const TokenTypeBearer = "bearer"

// AccessToken is the result of a successful login.
type AccessToken struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}
