package auth

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrRateLimited        = errors.New("auth: too many login attempts")
	// ErrTokenInvalid covers missing, malformed, expired and mis-signed tokens alike.
	ErrTokenInvalid = errors.New("auth: token invalid")
	ErrUserNotFound = errors.New("auth: user not found")
	ErrValidation   = errors.New("auth: validation failed")
)
