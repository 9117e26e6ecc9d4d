package core

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrInvalidStoredHash  = errors.New("invalid stored password hash")
	ErrSigningKey         = errors.New("token signing key unavailable")

	ErrTokenMissing   = errors.New("no token provided")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenMalformed = errors.New("malformed token")

	ErrEmptyTitle   = errors.New("task title cannot be empty")
	ErrTaskNotFound = errors.New("task not found")
)
