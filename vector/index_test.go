package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/sift/ai/mock"
	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) (*Index, *mock.MockEmbedder) {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	ix, err := New(embedder)
	require.NoError(t, err)
	return ix, embedder
}

func TestIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	ix, _ := newIndex(t)

	require.NoError(t, ix.Add(ctx, "cs", "Computer Science. The study of computation"))
	require.NoError(t, ix.Add(ctx, "cook", "Cooking. Recipes for pasta and bread"))
	require.NoError(t, ix.Add(ctx, "blank", "   "))
	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, mock.DefaultDimensions, ix.Dimensions())

	matches, err := ix.Search(ctx, "computer science", 20)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, core.DocumentID("cs"), matches[0].DocID)
	assert.GreaterOrEqual(t, matches[0].Similarity, matches[1].Similarity)
	assert.LessOrEqual(t, matches[0].Similarity, 1.0+1e-6)

	top, err := ix.Search(ctx, "computer science", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestIndex_SearchEdgeCases(t *testing.T) {
	ctx := context.Background()
	ix, embedder := newIndex(t)

	matches, err := ix.Search(ctx, "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, matches, "empty index")
	assert.Equal(t, 0, embedder.CallCount(), "empty index should not embed")

	require.NoError(t, ix.Add(ctx, "a", "alpha"))

	matches, err = ix.Search(ctx, " ", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = ix.Search(ctx, "alpha", 0)
	require.NoError(t, err)
	assert.Empty(t, matches)

	boom := errors.New("embedder down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, boom
	}
	_, err = ix.Search(ctx, "alpha", 5)
	assert.ErrorIs(t, err, boom)
}

func TestIndex_Insert(t *testing.T) {
	ix, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, ix.Insert("a", []float32{3, 4}))
	assert.ErrorIs(t, ix.Insert("b", []float32{1, 2, 3}), ErrDimensionMismatch)
	assert.ErrorIs(t, ix.Insert("c", []float32{0, 0}), ErrZeroVector)
	assert.Equal(t, 1, ix.Len())

	_, err = ix.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	matches, err := ix.SearchVector([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 0.6, matches[0].Similarity, 1e-6)
}

func TestIndex_EntriesRoundTrip(t *testing.T) {
	ctx := context.Background()
	ix, embedder := newIndex(t)
	require.NoError(t, ix.Add(ctx, "a", "first document"))
	require.NoError(t, ix.Add(ctx, "b", "second document"))

	restored, err := FromEntries(embedder, ix.Entries())
	require.NoError(t, err)

	orig, got := ix.Entries(), restored.Entries()
	require.Len(t, got, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i].DocID, got[i].DocID)
		assert.InDeltaSlice(t, orig[i].Vector, got[i].Vector, 1e-6)
	}

	_, err = FromEntries(nil, []core.VectorEntry{{DocID: "x", Vector: []float32{0}}})
	assert.ErrorIs(t, err, ErrZeroVector)
}
