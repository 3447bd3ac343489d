// Package common defines shared constants and sentinel errors used across
// the chat application services. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Login errors. Deliberately one value for both "user not found" and
	// "wrong password" so callers cannot probe which identities exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Registration conflicts.
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")

	// Token lifecycle errors. ErrTokenInvalid covers malformed, tampered,
	// and expired-by-signature tokens; ErrTokenExpired is the store-level
	// expiry, which is authoritative on refresh.
	ErrTokenInvalid    = errors.New("invalid token")
	ErrTokenNotFound   = errors.New("refresh token not found")
	ErrTokenExpired    = errors.New("refresh token expired")
	ErrSubjectMismatch = errors.New("token subject mismatch")
)
