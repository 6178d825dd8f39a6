package auth

import "errors"

// Token and credential failures. The API layer maps all token errors to 401.
var (
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	ErrMissingToken     = errors.New("authentication token is missing")

	// ErrPasswordMismatch is returned by PasswordHasher.Compare.
	ErrPasswordMismatch = errors.New("password does not match")
)
