package indexing

import "errors"

var (
	// ErrSourceRequired is returned when NewBuilder gets a nil source.
	ErrSourceRequired = errors.New("page source is required")

	// ErrInvalidMaxAttempts is returned when a retry budget is not positive.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidTitleWeight is returned for a non-positive title weight.
	ErrInvalidTitleWeight = errors.New("title weight must be positive")

	// ErrInvalidBatchSize is returned for a non-positive embedding batch size.
	ErrInvalidBatchSize = errors.New("batch size must be positive")
)
