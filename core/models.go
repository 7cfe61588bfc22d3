package core

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// DocumentID is a stable identifier for a crawled page.
// It is derived from the page's normalized URL, never from its content.
type DocumentID string

// UnknownURL is recorded for pages the crawler stored without a URL mapping.
const UnknownURL = "Unknown URL"

// NormalizeURL reduces a URL to scheme://host/path, dropping query and fragment.
// Unparseable input is returned trimmed but otherwise untouched.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host + u.Path
}

// DocumentIDFromURL generates a deterministic DocumentID using BLAKE2b hashing
// of the normalized URL. Identical URLs always produce identical IDs.
func DocumentIDFromURL(rawURL string) DocumentID {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(NormalizeURL(rawURL)))
	return DocumentID(hex.EncodeToString(h.Sum(nil)))
}

// Page is one crawled page as delivered by the crawler.
type Page struct {
	ID     DocumentID
	URL    string
	Markup []byte
}

// LinkGraph maps a crawled URL to the outbound URLs discovered on it.
type LinkGraph map[string][]string

// DocumentMetadata holds the per-document facts needed at query time.
type DocumentMetadata struct {
	URL    string
	Title  string
	Length int // title + first paragraph + body stem count, the BM25 document length
}

// Posting is one document's contribution to a term.
type Posting struct {
	DocID  DocumentID
	Weight float64 // weighted term frequency
}

// VectorEntry pairs a document with its unit-length embedding.
type VectorEntry struct {
	DocID  DocumentID
	Vector []float32
}

// Manifest describes a persisted index snapshot.
type Manifest struct {
	SnapshotID    string
	Documents     int
	Terms         int
	Vectors       int
	Skipped       int   // pages that failed to parse or index
	EmbedFailures int   // pages indexed lexically but without a vector
	BuiltAt       int64 // unix microseconds
}

// BuiltTime returns BuiltAt as a time.Time in UTC.
func (m *Manifest) BuiltTime() time.Time {
	return time.UnixMicro(m.BuiltAt).UTC()
}

// ScoreComponents records the individual signals behind a final score.
type ScoreComponents struct {
	BM25         float64 `json:"bm25"`     // raw BM25 over the terms present in the document
	Vector       float64 `json:"vector"`   // clamped semantic similarity
	PageRank     float64 `json:"pagerank"` // authority normalized by the corpus maximum
	MissingTerms int     `json:"missing"`
	PhraseBonus  bool    `json:"phrase"`
}

// QueryResult is one ranked hit.
type QueryResult struct {
	DocID      DocumentID
	Score      float64
	Components ScoreComponents
	Metadata   DocumentMetadata
}
