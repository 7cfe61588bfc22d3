package indexing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/sift/ai/hash"
	"github.com/poiesic/sift/ai/mock"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shortPage = `<html><head><title>Zebra</title></head><body><p>short</p></body></html>`
	factsPage = `<html><head><title>Zebra Facts</title></head><body>
<nav>menu links</nav>
<p>Zebras are striped animals that live in the grasslands of Africa today.</p>
</body></html>`
)

func newCorpus(t *testing.T) *corpus.FileStore {
	t.Helper()
	store := corpus.NewFileStore(t.TempDir())
	require.NoError(t, store.WritePage(&core.Page{ID: "d1", Markup: []byte(shortPage)}))
	require.NoError(t, store.WritePage(&core.Page{ID: "d2", Markup: []byte(factsPage)}))
	require.NoError(t, store.WritePage(&core.Page{ID: "d3", Markup: []byte("<p>unmapped page</p>")}))
	require.NoError(t, store.WriteURLMap(map[core.DocumentID]string{
		"d1": "https://example.com/zebra",
		"d2": "https://example.com/facts",
	}))
	require.NoError(t, store.WriteLinkGraph(core.LinkGraph{
		"https://example.com/zebra": {"https://example.com/facts"},
		"https://example.com/facts": {"https://example.com/zebra", "https://elsewhere.org/"},
	}))
	return store
}

func newBuilder(t *testing.T, source Source, embedder *mock.MockEmbedder, opts ...Option) *Builder {
	t.Helper()
	opts = append([]Option{WithPoolSize(2), WithRetry(1, 0)}, opts...)
	var b *Builder
	var err error
	if embedder == nil {
		b, err = NewBuilder(source, nil, opts...)
	} else {
		b, err = NewBuilder(source, embedder, opts...)
	}
	require.NoError(t, err)
	t.Cleanup(b.Release)
	return b
}

func TestNewBuilder_Validation(t *testing.T) {
	_, err := NewBuilder(nil, nil)
	assert.ErrorIs(t, err, ErrSourceRequired)

	source := corpus.NewFileStore(t.TempDir())
	_, err = NewBuilder(source, nil, WithTitleWeight(0))
	assert.ErrorIs(t, err, ErrInvalidTitleWeight)

	_, err = NewBuilder(source, nil, WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	_, err = NewBuilder(source, nil, WithRetry(0, 0))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestBuild_NoCorpus(t *testing.T) {
	b := newBuilder(t, corpus.NewFileStore(t.TempDir()), nil)

	_, err := b.Build(context.Background())
	assert.ErrorIs(t, err, corpus.ErrNoCorpus)
}

func TestBuild_Weights(t *testing.T) {
	b := newBuilder(t, newCorpus(t), mock.NewMockEmbedder())

	res, err := b.Build(context.Background())
	require.NoError(t, err)

	// body 1 + title 5
	assert.Equal(t, 6.0, res.Index.TermFrequency("zebra", "d1"))
	assert.Equal(t, 1.0, res.Index.TermFrequency("short", "d1"))
	// body 2 + title 5 + first paragraph 3
	assert.Equal(t, 10.0, res.Index.TermFrequency("zebra", "d2"))
	assert.Equal(t, 6.0, res.Index.TermFrequency("fact", "d2"))
	assert.False(t, res.Index.Contains("menu", "d2"), "nav content is dropped")

	assert.Len(t, res.Index.Postings("zebra"), 2, "one posting per document")
}

func TestBuild_MetadataAndVocabulary(t *testing.T) {
	b := newBuilder(t, newCorpus(t), mock.NewMockEmbedder(), WithNormalizer(nil))

	res, err := b.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Metadata, 3)
	assert.Equal(t, core.DocumentMetadata{URL: "https://example.com/zebra", Title: "Zebra", Length: 3}, res.Metadata["d1"])
	assert.Equal(t, "Zebra Facts", res.Metadata["d2"].Title)
	assert.Equal(t, core.UnknownURL, res.Metadata["d3"].URL)
	assert.Equal(t, "No Title", res.Metadata["d3"].Title)

	// Each page contributes zebra twice, once from the title and once from the body.
	assert.Equal(t, 4, res.Vocabulary.Count("zebra"))
	assert.Equal(t, 1, res.Vocabulary.Count("zebras"))
	assert.False(t, res.Vocabulary.Contains("the"))

	assert.Equal(t, 3, res.Stats.Documents)
	assert.Zero(t, res.Stats.Skipped)
}

func TestBuild_Vectors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	b := newBuilder(t, newCorpus(t), embedder, WithBatchSize(2))

	res, err := b.Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, res.Vectors.Len())
	entries := res.Vectors.Entries()
	assert.Equal(t, core.DocumentID("d1"), entries[0].DocID, "vectors follow document order")
	assert.Equal(t, core.DocumentID("d3"), entries[2].DocID)
	assert.Equal(t, 2, embedder.CallCount(), "two batches of at most two texts")
}

func TestBuild_EmbeddingText(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var seen []string
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		seen = append(seen, texts...)
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = hash.BagOfWords(text, 8)
		}
		return out, nil
	}
	b := newBuilder(t, newCorpus(t), embedder, WithPoolSize(1))

	_, err := b.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, "Zebra. ", seen[0])
	assert.Equal(t, "Zebra Facts. Zebras are striped animals that live in the grasslands of Africa today.", seen[1])
}

func TestBuild_EmbeddingFailuresAreIsolated(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service unavailable")
	}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, "Facts") {
			return nil, errors.New("rejected")
		}
		return hash.BagOfWords(text, 8), nil
	}
	b := newBuilder(t, newCorpus(t), embedder)

	res, err := b.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Stats.EmbedFailures)
	assert.Equal(t, 2, res.Vectors.Len())
	assert.Equal(t, 3, res.Stats.Documents, "failed embeddings are still indexed lexically")
	assert.True(t, res.Index.Contains("zebra", "d2"))
}

func TestBuild_ZeroVectorCountsAsFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return make([][]float32, len(texts)), nil
	}
	b := newBuilder(t, newCorpus(t), embedder)

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.EmbedFailures)
	assert.Zero(t, res.Vectors.Len())
}

func TestBuild_WithoutEmbedder(t *testing.T) {
	b := newBuilder(t, newCorpus(t), nil)

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Vectors.Len())
	assert.Zero(t, res.Stats.EmbedFailures)
	assert.Equal(t, 3, res.Stats.Documents)
}

func TestBuild_SkipsUnreadablePages(t *testing.T) {
	store := newCorpus(t)
	require.NoError(t, store.WritePage(&core.Page{ID: "d0", Markup: []byte("<p>placeholder</p>")}))
	source := &blankPage{FileStore: store, blank: "d0"}
	b := newBuilder(t, source, mock.NewMockEmbedder())

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Equal(t, 3, res.Stats.Documents)
	assert.NotContains(t, res.Metadata, core.DocumentID("d0"))
}

func TestBuild_Authority(t *testing.T) {
	b := newBuilder(t, newCorpus(t), nil)

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Authority, 2)
	assert.InDelta(t, 1.0, res.Authority.Sum(), 1e-6)
	assert.NotContains(t, res.Authority, "https://elsewhere.org/")
}

func TestBuild_MissingLinkGraph(t *testing.T) {
	store := corpus.NewFileStore(t.TempDir())
	require.NoError(t, store.WritePage(&core.Page{ID: "d1", Markup: []byte(shortPage)}))
	require.NoError(t, store.WriteURLMap(map[core.DocumentID]string{}))
	b := newBuilder(t, store, nil)

	res, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Authority)
	assert.Equal(t, 1, res.Stats.Documents)
}

func TestBuild_Deterministic(t *testing.T) {
	store := newCorpus(t)

	first, err := newBuilder(t, store, mock.NewMockEmbedder(), WithPoolSize(4)).Build(context.Background())
	require.NoError(t, err)
	second, err := newBuilder(t, store, mock.NewMockEmbedder(), WithPoolSize(1)).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Index.Export(), second.Index.Export())
	assert.Equal(t, first.Metadata, second.Metadata)
	assert.Equal(t, first.Vocabulary.Export(), second.Vocabulary.Export())
	assert.Equal(t, first.Vectors.Entries(), second.Vectors.Entries())
	assert.Equal(t, first.Authority, second.Authority)
}

func TestBuild_Cancelled(t *testing.T) {
	b := newBuilder(t, newCorpus(t), mock.NewMockEmbedder())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// blankPage serves whitespace for one page to simulate an unusable file.
type blankPage struct {
	*corpus.FileStore
	blank core.DocumentID
}

func (b *blankPage) ReadMarkup(id core.DocumentID) ([]byte, error) {
	if id == b.blank {
		return []byte("  \n "), nil
	}
	return b.FileStore.ReadMarkup(id)
}
