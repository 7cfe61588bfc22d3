package vector

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/core"
)

// Match is one search hit.
type Match struct {
	DocID      core.DocumentID
	Similarity float64
}

// Index is an ordered list of (document, unit vector) pairs.
type Index struct {
	embedder ai.Embedder
	ids      []core.DocumentID
	vectors  [][]float32
	dim      int
	logger   *slog.Logger
}

// Option configures an Index.
type Option func(*Index) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// New creates an empty Index that vectorizes text with embedder.
// A nil embedder is allowed; the index then only serves stored vectors
// and text operations fail with ErrEmbedderRequired.
func New(embedder ai.Embedder, opts ...Option) (*Index, error) {
	ix := &Index{
		embedder: embedder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}
	ix.logger = ix.logger.With("component", "vector-index")
	return ix, nil
}

// FromEntries rebuilds an Index from persisted entries, preserving their order.
func FromEntries(embedder ai.Embedder, entries []core.VectorEntry, opts ...Option) (*Index, error) {
	ix, err := New(embedder, opts...)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := ix.Insert(e.DocID, e.Vector); err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.DocID, err)
		}
	}
	return ix, nil
}

// Embed vectorizes text and normalizes the result.
// It does not modify the index and is safe for concurrent use.
func (ix *Index) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if ix.embedder == nil {
		return nil, ErrEmbedderRequired
	}
	vec, err := ix.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	return Normalize(vec)
}

// Insert appends a vector for id. The vector is normalized on the way in.
// The first insert fixes the dimension of the index.
func (ix *Index) Insert(id core.DocumentID, vec []float32) error {
	if ix.dim != 0 && len(vec) != ix.dim {
		return fmt.Errorf("%w: want %d, got %d", ErrDimensionMismatch, ix.dim, len(vec))
	}
	unit, err := Normalize(vec)
	if err != nil {
		return err
	}
	if ix.dim == 0 {
		ix.dim = len(unit)
	}
	ix.ids = append(ix.ids, id)
	ix.vectors = append(ix.vectors, unit)
	return nil
}

// Add embeds text and appends it for id.
// Blank text is skipped without error.
func (ix *Index) Add(ctx context.Context, id core.DocumentID, text string) error {
	if strings.TrimSpace(text) == "" {
		ix.logger.Debug("skipping blank text", "doc", id)
		return nil
	}
	vec, err := ix.Embed(ctx, text)
	if err != nil {
		return err
	}
	return ix.Insert(id, vec)
}

// Search returns up to k documents most similar to query, in descending
// similarity order. Equal similarities keep insertion order.
// An empty index or blank query returns no matches.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Match, error) {
	if k <= 0 || len(ix.vectors) == 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	q, err := ix.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return ix.SearchVector(q, k)
}

// SearchVector is Search for an already embedded query.
func (ix *Index) SearchVector(query []float32, k int) ([]Match, error) {
	if k <= 0 || len(ix.vectors) == 0 {
		return nil, nil
	}
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrDimensionMismatch, ix.dim, len(query))
	}
	q, err := Normalize(query)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, len(ix.vectors))
	for i, v := range ix.vectors {
		matches[i] = Match{DocID: ix.ids[i], Similarity: Similarity(q, v)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// Dimensions returns the vector size, 0 while empty.
func (ix *Index) Dimensions() int {
	return ix.dim
}

// Entries returns copies of the stored vectors in insertion order.
func (ix *Index) Entries() []core.VectorEntry {
	entries := make([]core.VectorEntry, len(ix.vectors))
	for i, v := range ix.vectors {
		entries[i] = core.VectorEntry{DocID: ix.ids[i], Vector: slices.Clone(v)}
	}
	return entries
}
