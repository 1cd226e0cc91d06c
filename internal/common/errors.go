// Package common defines shared constants and sentinel errors used across
// the server, the HTTP/gRPC layers and the CLI client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Login without a username/password pair and without a provider token.
	ErrMissingCredentials = errors.New("missing credentials")

	// Token errors. ErrTokenExpired is returned only for tokens whose
	// signature verified, so the two are distinguishable in logs.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Password reset token unknown, already used or past its expiry.
	ErrInvalidOrExpired = errors.New("invalid or expired reset token")
)
