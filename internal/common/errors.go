// Package common defines shared constants and sentinel errors used across
// the checker client, the sealer and the artifact server. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Database lifecycle errors.
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrDatabaseNotLoaded   = errors.New("database not loaded")

	// Artifact container errors.
	ErrInvalidContainer  = errors.New("invalid artifact container")
	ErrUnsupportedSource = errors.New("unsupported artifact source")

	// Validation errors.
	ErrorValidation = errors.New("validation error")
)
