package domain

import "errors"

// Error kinds. Package-level errors elsewhere wrap one of these so transports
// can map them without knowing every sentinel.
var (
	ErrInvalid           = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrIllegalTransition = errors.New("illegal transition")
)
