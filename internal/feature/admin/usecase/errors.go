// Package usecase implements business logic for the admin feature.
package usecase

import "errors"

// Sentinel errors for admin authentication.
// Handlers map these to client-facing status responses.
var (
	// ErrIncorrectPassword is returned when the supplied password does not
	// match the configured administrator password.
	ErrIncorrectPassword = errors.New("incorrect password")
)
