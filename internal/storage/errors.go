package storage

import "errors"

// Sentinel errors shared by every store implementation. Scenario inputs and
// solve results are written once; a key collision is always a caller bug,
// never an update.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an
	// existing record.
	ErrDuplicateKey = errors.New("duplicate key: records are written once")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
