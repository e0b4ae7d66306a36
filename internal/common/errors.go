// Package common defines shared constants and sentinel errors used across
// client and server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors.
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")

	// ErrTransient marks failures worth retrying later: the server or the
	// network is unreachable, not the request itself at fault. The client
	// queues the mutation locally instead of failing the user action.
	ErrTransient = errors.New("transient error")

	// ErrConflict marks a replay rejected because server-side state no longer
	// matches the local assumption (e.g. the record was deleted server-side).
	// The local pending change is dropped in favor of the authoritative state.
	ErrConflict = errors.New("conflict")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
