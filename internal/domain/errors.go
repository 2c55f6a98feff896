package domain

import "errors"

// Sentinel errors for the application. Callers wrap them with context and
// the HTTP layer maps them to status codes with errors.Is.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("resource already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrSelfMessage  = errors.New("cannot send message to yourself")
)
