package search

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/ai/mock"
	"github.com/poiesic/sift/authority"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/corpus"
	"github.com/poiesic/sift/indexing"
	"github.com/poiesic/sift/snapshot"
	"github.com/poiesic/sift/vector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPage struct {
	id     core.DocumentID
	url    string
	markup string
}

func page(id, title, body string) testPage {
	return testPage{
		id:     core.DocumentID(id),
		url:    "https://example.com/" + id,
		markup: "<html><head><title>" + title + "</title></head><body>" + body + "</body></html>",
	}
}

// buildSnapshot indexes pages into a fresh corpus and returns the corpus and
// the resulting snapshot.
func buildSnapshot(t *testing.T, embedder ai.Embedder, graph core.LinkGraph, pages ...testPage) (*corpus.FileStore, *snapshot.Snapshot) {
	t.Helper()
	store := corpus.NewFileStore(t.TempDir())
	urls := make(map[core.DocumentID]string)
	for _, p := range pages {
		require.NoError(t, store.WritePage(&core.Page{ID: p.id, URL: p.url, Markup: []byte(p.markup)}))
		urls[p.id] = p.url
	}
	require.NoError(t, store.WriteURLMap(urls))
	if graph != nil {
		require.NoError(t, store.WriteLinkGraph(graph))
	}

	builder, err := indexing.NewBuilder(store, embedder, indexing.WithPoolSize(2), indexing.WithRetry(1, 0))
	require.NoError(t, err)
	defer builder.Release()

	res, err := builder.Build(context.Background())
	require.NoError(t, err)
	return store, snapshot.New(res.Index, res.Metadata, res.Vocabulary, res.Vectors, res.Authority)
}

func newEngine(t *testing.T, pages PageReader, snap *snapshot.Snapshot, opts ...Option) *Engine {
	t.Helper()
	e, err := NewEngine(pages, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	if snap != nil {
		require.NoError(t, e.Swap(snap))
	}
	return e
}

func TestNewEngine_Validation(t *testing.T) {
	_, err := NewEngine(nil)
	assert.ErrorIs(t, err, ErrPageReaderRequired)

	store := corpus.NewFileStore(t.TempDir())
	_, err = NewEngine(store, WithSemanticCandidates(-1))
	assert.Error(t, err)

	_, err = NewEngine(store, WithTextCacheSize(0))
	assert.Error(t, err)
}

func TestEngine_NotReady(t *testing.T) {
	e := newEngine(t, corpus.NewFileStore(t.TempDir()), nil)

	assert.False(t, e.Ready())
	assert.Nil(t, e.Snapshot())

	_, err := e.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNotReady)

	assert.ErrorIs(t, e.Swap(nil), ErrNilSnapshot)
	assert.False(t, e.Ready())
}

func TestEngine_EmptyQuery(t *testing.T) {
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), nil,
		page("d1", "Intro", "<p>Computer science is fun.</p>"))
	e := newEngine(t, store, snap)

	for _, q := range []string{"", "   "} {
		resp, err := e.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Empty(t, resp.Results)
		assert.False(t, resp.WasCorrected)
	}
}

func TestEngine_ExactPhrase(t *testing.T) {
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), nil,
		page("d1", "Intro", "<p>Computer science is fun.</p>"))
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "computer science")
	require.NoError(t, err)
	assert.False(t, resp.WasCorrected)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, core.DocumentID("d1"), r.DocID)
	assert.Equal(t, 0, r.Components.MissingTerms)
	assert.True(t, r.Components.PhraseBonus)

	// One document of average length with tf 1 for both terms: each term scores its idf.
	idf := math.Log((1-1+0.5)/(1+0.5) + 1)
	assert.InDelta(t, 2*idf, r.Components.BM25, 1e-9)

	adjusted := r.Components.BM25 * FullMatchBonus * PhraseBonus
	assert.InDelta(t, Fuse(adjusted, r.Components.Vector, 0), r.Score, 1e-9)
	assert.Equal(t, "https://example.com/d1", r.Metadata.URL)
	assert.Equal(t, "Intro", r.Metadata.Title)
}

func TestEngine_PartialMatch(t *testing.T) {
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), nil,
		page("d1", "Intro", "<p>Computer science is fun.</p>"))
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "computer pizza")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	r := resp.Results[0]
	assert.Equal(t, 1, r.Components.MissingTerms)
	assert.False(t, r.Components.PhraseBonus)
	assert.Greater(t, r.Score, 0.0)
}

func TestEngine_NoCandidates(t *testing.T) {
	store, snap := buildSnapshot(t, nil, nil,
		page("d1", "Intro", "<p>Computer science is fun.</p>"))
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "zzzz qqqq")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngine_SpellCorrection(t *testing.T) {
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), nil,
		page("d1", "Computer Science", "<p>Computer science studies computation.</p>"))
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "comput scien")
	require.NoError(t, err)
	assert.True(t, resp.WasCorrected)
	assert.Equal(t, "computer science", resp.CorrectedQuery)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, 0, resp.Results[0].Components.MissingTerms)
	assert.False(t, resp.Results[0].Components.PhraseBonus, "phrase check uses the query as typed")
}

func TestEngine_TitleOutranksBody(t *testing.T) {
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), nil,
		page("d1", "Grass", "<p>zebra zebra</p>"),
		page("d2", "Zebra", "<p>grass</p>"))
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "zebra")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, core.DocumentID("d2"), resp.Results[0].DocID)
	assert.Greater(t, resp.Results[0].Components.BM25, resp.Results[1].Components.BM25)
}

func TestEngine_AuthorityBreaksTies(t *testing.T) {
	a := page("a", "Zebra", "<p>zebra stripes</p>")
	b := page("b", "Zebra", "<p>zebra stripes</p>")
	graph := core.LinkGraph{a.url: {b.url}, b.url: {}}
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), graph, a, b)
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "zebra")
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, core.DocumentID("b"), resp.Results[0].DocID)
	assert.Equal(t, 1.0, resp.Results[0].Components.PageRank)
	assert.Less(t, resp.Results[1].Components.PageRank, 1.0)
	assert.Equal(t, resp.Results[0].Components.BM25, resp.Results[1].Components.BM25)
}

func TestEngine_DegradesWithoutVectorsOrAuthority(t *testing.T) {
	store, built := buildSnapshot(t, nil, nil,
		page("d1", "Intro", "<p>Computer science is fun.</p>"))
	snap := snapshot.New(built.Index, built.Metadata, built.Vocabulary, nil, nil)
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "computer")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Zero(t, resp.Results[0].Components.Vector)
	assert.Zero(t, resp.Results[0].Components.PageRank)
	assert.Greater(t, resp.Results[0].Score, 0.0)
}

func TestEngine_SemanticFailureIsNotFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store, snap := buildSnapshot(t, embedder, nil,
		page("d1", "Intro", "<p>Computer science is fun.</p>"))
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "computer")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Zero(t, resp.Results[0].Components.Vector)
}

func TestEngine_SemanticOnlyCandidate(t *testing.T) {
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), nil,
		page("d1", "Zebra", "<p>grass</p>"))
	e := newEngine(t, store, snap)

	resp, err := e.Search(context.Background(), "zzzzzz")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1, "every stored vector is a semantic candidate")
	r := resp.Results[0]
	assert.Zero(t, r.Components.BM25)
	assert.Equal(t, 1, r.Components.MissingTerms)
	assert.GreaterOrEqual(t, r.Components.Vector, 0.0)
	assert.LessOrEqual(t, r.Components.Vector, 1.0)
}

func TestEngine_SemanticCandidatesDisabled(t *testing.T) {
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), nil,
		page("d1", "Zebra", "<p>grass</p>"))
	e := newEngine(t, store, snap, WithSemanticCandidates(0))

	resp, err := e.Search(context.Background(), "zzzzzz")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngine_CandidateWithoutMetadataIsSkipped(t *testing.T) {
	store, built := buildSnapshot(t, nil, nil,
		page("d1", "Intro", "<p>Computer science is fun.</p>"))
	built.Index.Add("comput", "ghost", 3)
	e := newEngine(t, store, built)

	resp, err := e.Search(context.Background(), "computer")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, core.DocumentID("d1"), resp.Results[0].DocID)
}

func TestEngine_Swap(t *testing.T) {
	store, first := buildSnapshot(t, nil, nil, page("d1", "Zebra", "<p>grass</p>"))
	e := newEngine(t, store, first)

	resp, err := e.Search(context.Background(), "zebra")
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	second := snapshot.New(nil, nil, nil, nil, authority.Scores{})
	require.NoError(t, e.Swap(second))
	assert.Same(t, second, e.Snapshot())

	resp, err = e.Search(context.Background(), "zebra")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestEngine_SwapDoesNotReuseCachedText(t *testing.T) {
	store, first := buildSnapshot(t, nil, nil, page("d1", "Animals", "<p>zebras graze on grass</p>"))
	e := newEngine(t, store, first)

	assert.Contains(t, e.GetSnippet(context.Background(), "d1", "zebra"), "graze")
	e.texts.Wait()

	updated := page("d1", "Animals", "<p>zebras sleep standing up</p>")
	require.NoError(t, store.WritePage(&core.Page{ID: updated.id, URL: updated.url, Markup: []byte(updated.markup)}))
	second := snapshot.New(first.Index, first.Metadata, first.Vocabulary, first.Vectors, first.Authority)
	require.Equal(t, first.Manifest.SnapshotID, second.Manifest.SnapshotID)
	require.NoError(t, e.Swap(second))

	s := e.GetSnippet(context.Background(), "d1", "zebra")
	assert.Contains(t, s, "sleep")
	assert.NotContains(t, s, "graze")
}

func TestEngine_GetSnippet(t *testing.T) {
	body := "<p>" + strings.Repeat("filler ", 20) + "zebras graze on open grassland.</p>"
	store, snap := buildSnapshot(t, nil, nil, page("d1", "Animals", body))
	e := newEngine(t, store, snap)

	s := e.GetSnippet(context.Background(), "d1", "zebra")
	assert.Contains(t, s, "zebras graze")
	assert.True(t, strings.HasPrefix(s, ellipsis))

	assert.Equal(t, PreviewUnavailable, e.GetSnippet(context.Background(), "missing", "zebra"))
	assert.Equal(t, PreviewUnavailable, e.GetSnippet(context.Background(), "../etc", "zebra"))
}

type recordingMonitor struct {
	started   string
	corrected string
	terms     []string
	lexical   []core.DocumentID
	semantic  []vector.Match
	scored    int
	finished  []core.QueryResult
}

func (m *recordingMonitor) Start(q string) {
	m.started = q
}

func (m *recordingMonitor) AfterSpellCorrection(c string, _ bool) {
	m.corrected = c
}

func (m *recordingMonitor) AfterLexicalSearch(terms []string, ids []core.DocumentID) {
	m.terms, m.lexical = terms, ids
}

func (m *recordingMonitor) AfterSemanticSearch(matches []vector.Match) {
	m.semantic = matches
}

func (m *recordingMonitor) Scored(core.QueryResult) {
	m.scored++
}

func (m *recordingMonitor) Finish(results []core.QueryResult) {
	m.finished = results
}

func TestEngine_Monitor(t *testing.T) {
	store, snap := buildSnapshot(t, mock.NewMockEmbedder(), nil,
		page("d1", "Zebra", "<p>grass</p>"),
		page("d2", "Lion", "<p>savanna</p>"))
	e := newEngine(t, store, snap)

	m := &recordingMonitor{}
	resp, err := e.SearchWithMonitor(context.Background(), "zebra", m)
	require.NoError(t, err)

	assert.Equal(t, "zebra", m.started)
	assert.Equal(t, "zebra", m.corrected)
	assert.Equal(t, []string{"zebra"}, m.terms)
	assert.Equal(t, []core.DocumentID{"d1"}, m.lexical)
	assert.Len(t, m.semantic, 2)
	assert.Equal(t, 2, m.scored)
	assert.Equal(t, resp.Results, m.finished)
	assert.Equal(t, core.DocumentID("d1"), resp.Results[0].DocID)
}

