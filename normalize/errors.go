package normalize

import "errors"

var (
	// ErrMalformedMarkup is returned when markup cannot be parsed.
	ErrMalformedMarkup = errors.New("malformed markup")

	// ErrInvalidBaseURL is returned when link extraction gets an unusable base URL.
	ErrInvalidBaseURL = errors.New("invalid base url")
)
