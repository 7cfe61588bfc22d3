package corpus

import "errors"

var (
	// ErrNotFound indicates the requested page or file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoCorpus indicates the URL map is missing, i.e. nothing was crawled.
	ErrNoCorpus = errors.New("no url map found, has the crawler run?")

	// ErrInvalidDocumentID indicates an id that cannot name a page file.
	ErrInvalidDocumentID = errors.New("invalid document id")
)
