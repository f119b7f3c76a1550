package alloc

import "errors"

// Error definitions
var (
	// ErrZeroSize is returned when an allocation of zero bytes is requested.
	ErrZeroSize = errors.New("cannot allocate zero bytes")
	// ErrNoSpace is returned when no free segment is large enough.
	ErrNoSpace = errors.New("insufficient space")
	// ErrOwnerNotFound is returned when freeing an owner that holds no segment.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrUnknownStrategy is returned when a strategy name cannot be parsed.
	ErrUnknownStrategy = errors.New("unknown allocation strategy")
)
