package snapshot

import "errors"

var (
	// ErrNoSnapshot indicates no snapshot has been promoted yet.
	ErrNoSnapshot = errors.New("no snapshot has been built")

	// ErrInvalidRoot indicates the storage root is empty.
	ErrInvalidRoot = errors.New("storage root cannot be empty")

	// ErrNilSnapshot indicates Save was handed nothing to save.
	ErrNilSnapshot = errors.New("snapshot cannot be nil")
)
