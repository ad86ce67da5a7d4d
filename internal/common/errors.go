// Package common defines shared constants and sentinel errors used across
// ICARUS server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal       = errors.New("internal error")
	ErrorStorage        = errors.New("storage error")
	ErrorUnauthorized   = errors.New("unauthenticated")
	ErrorForbidden      = errors.New("forbidden")
	ErrorInvalidRequest = errors.New("invalid request")

	// Registration errors.
	ErrorDuplicateUsername = errors.New("username already taken")

	// Upload content errors.
	ErrorUnsupportedFormat = errors.New("unsupported format")
	ErrorParse             = errors.New("parse error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
