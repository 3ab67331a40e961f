package storage

import "errors"

// Store-level error taxonomy. The postgres layer maps driver errors onto
// these; services and handlers only ever see the taxonomy.
var (
	// ErrNotFound is returned when a lookup by id or username matches nothing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned on unique-key violations and on deletes blocked
	// by an ownership restriction.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable is returned when the store cannot be reached or a
	// bounded operation ran out of time.
	ErrUnavailable = errors.New("store unavailable")
)
