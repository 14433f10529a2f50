// Package common defines shared sentinel errors used across the service
// layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Input errors (missing or malformed request fields).
	ErrorValidation = errors.New("validation error")

	// Auth errors (unknown account or bad credentials; callers must not
	// distinguish the two outwardly).
	ErrorUnauthorized = errors.New("unauthorized")

	// Collaborator errors (secret service, store, blob storage, queues).
	ErrorDependency = errors.New("dependency unavailable")

	// Generic internal flow control.
	ErrorInternal = errors.New("internal error")

	// Auth token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
