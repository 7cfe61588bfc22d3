// Package hash provides an offline ai.Embedder that needs no model or
// network service.
//
// Each lowercase word adds 1 to the bucket its FNV hash selects, and the
// result is L2 normalized. Texts that share words therefore have a positive
// cosine similarity. Quality is far below a trained model; it exists so a
// corpus can be searched semantically without an embedding service.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/poiesic/sift/ai"
)

// DefaultDimensions is the vector size used when none is given.
const DefaultDimensions = 64

var _ ai.Embedder = (*Embedder)(nil)

// Embedder embeds text as a hashed bag of words. It is safe for concurrent use.
type Embedder struct {
	dimensions int
}

// New creates an Embedder producing vectors of size dimensions.
// Zero or less selects DefaultDimensions.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions}
}

// Dimensions returns the vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// EmbedText embeds one text. It fails only when ctx is done.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return BagOfWords(text, e.dimensions), nil
}

// EmbedTexts embeds texts in order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = BagOfWords(text, e.dimensions)
	}
	return out, nil
}

// BagOfWords builds a unit-length hashed word-count vector of size dim.
// Text without any words yields the zero vector.
func BagOfWords(text string, dim int) []float32 {
	vector := make([]float32, dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vector[h.Sum32()%uint32(dim)]++
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}
