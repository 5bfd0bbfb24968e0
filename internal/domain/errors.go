package domain

import "errors"

var (
	// ErrInvalidCredentials covers both an unknown identity and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for any token that fails signature, structure or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthorized is returned by the access guard.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicateIdentity is returned when registering an email that already exists.
	ErrDuplicateIdentity = errors.New("email already registered")
	// ErrPasswordTooLong is returned when a password exceeds the hasher's input limit.
	ErrPasswordTooLong = errors.New("password too long")

	// ErrNotFound and ErrConflict are reported by user stores.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
