package core

import "errors"

// Common errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrReadOnly       = errors.New("storage is in read-only mode")
	ErrEmptyID        = errors.New("note ID cannot be empty")
	ErrDuplicateTitle = errors.New("title is already used by another note")
	ErrUnsupported    = errors.New("operation not supported by storage")
)
