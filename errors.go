package tinyx

import "errors"

var (
	// ErrFrozen is returned when a frozen container is mutated in place.
	ErrFrozen = errors.New("container is frozen")
	// ErrInvalidPath is returned for keys that cannot address the value
	// found along a path.
	ErrInvalidPath = errors.New("invalid key path")
	// ErrInvalidTransaction is returned by Commit for a nil or unusable
	// transaction.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrNotFound is returned when a checkpoint cannot be located in its
	// Persist.
	ErrNotFound = errors.New("not found")
)
