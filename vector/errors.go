package vector

import "errors"

var (
	// ErrEmbedderRequired is returned when text must be embedded but no embedder is set.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyText is returned when asked to embed blank text.
	ErrEmptyText = errors.New("text is empty")

	// ErrZeroVector is returned for vectors that cannot be normalized.
	ErrZeroVector = errors.New("zero vector")

	// ErrDimensionMismatch is returned when a vector's size differs from the index's.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
