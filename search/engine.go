package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/normalize"
	"github.com/poiesic/sift/snapshot"
	"github.com/poiesic/sift/spelling"
	"github.com/poiesic/sift/vector"
)

const (
	// DefaultSemanticCandidates is how many nearest vectors join the candidate pool.
	DefaultSemanticCandidates = 20

	// DefaultTextCacheSize bounds the cleaned page text cache, in bytes.
	DefaultTextCacheSize = 64 << 20
)

// PageReader returns the stored markup of a page.
type PageReader interface {
	ReadMarkup(id core.DocumentID) ([]byte, error)
}

// Response is a ranked result list with the query actually used.
type Response struct {
	Results        []core.QueryResult
	CorrectedQuery string
	WasCorrected   bool
}

type state struct {
	snap      *snapshot.Snapshot
	corrector *spelling.Corrector
	// generation keys the text cache, so entries of earlier snapshots are
	// never read again and age out on their own.
	generation uint64
}

// Engine answers queries against the current snapshot.
// It is safe for concurrent use.
type Engine struct {
	pages         PageReader
	normalizer    *normalize.Normalizer
	state         atomic.Pointer[state]
	generations   atomic.Uint64
	texts         *ristretto.Cache[string, string]
	semanticK     int
	textCacheSize int64
	skipWords     []string
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithSemanticCandidates sets how many nearest vectors are considered per
// query. Zero disables the semantic signal.
// Default is DefaultSemanticCandidates.
func WithSemanticCandidates(k int) Option {
	return func(e *Engine) error {
		if k < 0 {
			return fmt.Errorf("semantic candidates must not be negative, got %d", k)
		}
		e.semanticK = k
		return nil
	}
}

// WithTextCacheSize bounds the cleaned text cache in bytes.
// Default is DefaultTextCacheSize.
func WithTextCacheSize(bytes int64) Option {
	return func(e *Engine) error {
		if bytes < 1 {
			return fmt.Errorf("text cache size must be positive, got %d", bytes)
		}
		e.textCacheSize = bytes
		return nil
	}
}

// WithNormalizer sets the normalizer for queries and page text. It must match
// the one the index was built with.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(e *Engine) error {
		if n != nil {
			e.normalizer = n
		}
		return nil
	}
}

// WithSkipWords replaces the words spell correction leaves alone.
// Default is spelling.DefaultSkipWords.
func WithSkipWords(words []string) Option {
	return func(e *Engine) error {
		e.skipWords = slices.Clone(words)
		return nil
	}
}

// NewEngine creates an Engine that reads page markup from pages for phrase
// matching and snippets. The engine is not ready until the first Swap.
func NewEngine(pages PageReader, opts ...Option) (*Engine, error) {
	if pages == nil {
		return nil, ErrPageReaderRequired
	}

	normalizer, err := normalize.New()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		pages:         pages,
		normalizer:    normalizer,
		semanticK:     DefaultSemanticCandidates,
		textCacheSize: DefaultTextCacheSize,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "search")

	e.texts, err = ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: max(e.textCacheSize/100, 1000),
		MaxCost:     e.textCacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create text cache: %w", err)
	}
	return e, nil
}

// Close releases the text cache. The Engine must not be used afterwards.
func (e *Engine) Close() {
	e.texts.Close()
}

// Swap makes snap the serving snapshot. Queries already running finish on
// the snapshot they started with.
func (e *Engine) Swap(snap *snapshot.Snapshot) error {
	if snap == nil {
		return ErrNilSnapshot
	}
	opts := []spelling.Option{spelling.WithLogger(e.logger)}
	if e.skipWords != nil {
		opts = append(opts, spelling.WithSkipWords(e.skipWords))
	}
	corrector, err := spelling.NewCorrector(snap.Vocabulary, opts...)
	if err != nil {
		return err
	}

	e.state.Store(&state{
		snap:       snap,
		corrector:  corrector,
		generation: e.generations.Add(1),
	})
	e.logger.Info("serving snapshot",
		"snapshot", snap.Manifest.SnapshotID,
		"documents", snap.Len(),
		"vectors", snap.Vectors.Len(),
		"authority", len(snap.Authority))
	return nil
}

// Ready reports whether a snapshot is being served.
func (e *Engine) Ready() bool {
	return e.state.Load() != nil
}

// Snapshot returns the serving snapshot, nil before the first Swap.
func (e *Engine) Snapshot() *snapshot.Snapshot {
	if st := e.state.Load(); st != nil {
		return st.snap
	}
	return nil
}

// Search ranks every candidate document for query.
func (e *Engine) Search(ctx context.Context, query string) (*Response, error) {
	return e.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
// A blank query returns an empty response. Missing signals degrade to zero.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, monitor SearchMonitor) (*Response, error) {
	st := e.state.Load()
	if st == nil {
		return nil, ErrNotReady
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	resp := &Response{CorrectedQuery: query}
	if strings.TrimSpace(query) == "" {
		monitor.Finish(nil)
		return resp, nil
	}

	// 1. Spell correction
	resp.CorrectedQuery, resp.WasCorrected = st.corrector.CorrectQuery(query)
	searchQuery := query
	if resp.WasCorrected {
		searchQuery = resp.CorrectedQuery
	}
	monitor.AfterSpellCorrection(resp.CorrectedQuery, resp.WasCorrected)

	snap := st.snap

	// 2. Lexical candidates, in query term order
	terms := e.normalizer.Tokenize(searchQuery)
	seen := make(map[core.DocumentID]bool)
	var candidates []core.DocumentID
	for _, term := range terms {
		for _, p := range snap.Index.Postings(term) {
			if !seen[p.DocID] {
				seen[p.DocID] = true
				candidates = append(candidates, p.DocID)
			}
		}
	}
	monitor.AfterLexicalSearch(terms, slices.Clone(candidates))

	// 3. Semantic candidates
	matches := e.semanticSearch(ctx, snap, searchQuery)
	similarity := make(map[core.DocumentID]float64, len(matches))
	for _, m := range matches {
		similarity[m.DocID] = m.Similarity
		if !seen[m.DocID] {
			seen[m.DocID] = true
			candidates = append(candidates, m.DocID)
		}
	}
	monitor.AfterSemanticSearch(matches)

	// 4. Score
	results := make([]core.QueryResult, 0, len(candidates))
	for _, id := range candidates {
		md, ok := snap.Metadata[id]
		if !ok {
			e.logger.Debug("candidate without metadata", "doc", id)
			continue
		}
		result := e.score(st, id, md, terms, query, similarity[id])
		monitor.Scored(result)
		results = append(results, result)
	}

	// 5. Rank
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	resp.Results = results

	monitor.Finish(results)
	return resp, nil
}

func (e *Engine) semanticSearch(ctx context.Context, snap *snapshot.Snapshot, query string) []vector.Match {
	if e.semanticK == 0 || snap.Vectors.Len() == 0 {
		return nil
	}
	matches, err := snap.Vectors.Search(ctx, query, e.semanticK)
	if err != nil {
		e.logger.Warn("semantic search failed, continuing without it", "err", err)
		return nil
	}
	return matches
}

// score computes the fused score of one candidate. original is the query as
// typed, used for the phrase check.
func (e *Engine) score(st *state, id core.DocumentID, md core.DocumentMetadata, terms []string, original string, similarity float64) core.QueryResult {
	snap := st.snap
	present := make([]string, 0, len(terms))
	for _, t := range terms {
		if snap.Index.Contains(t, id) {
			present = append(present, t)
		}
	}
	missing := len(terms) - len(present)

	lexical := 0.0
	if len(present) > 0 {
		lexical = bm25(snap, id, md.Length, present)
	}

	adjusted := lexical
	if len(terms) > 0 {
		adjusted *= CompletenessPenalty(missing)
		if missing == 0 {
			adjusted *= FullMatchBonus
		}
	}

	phrase := len(terms) > 1 &&
		float64(len(present)) >= float64(len(terms))*0.5 &&
		e.phraseMatch(st.generation, id, original)
	if phrase {
		adjusted *= PhraseBonus
	}

	semantic := clamp01(similarity)
	auth := normalizedAuthority(snap, md.URL)

	return core.QueryResult{
		DocID: id,
		Score: Fuse(adjusted, semantic, auth),
		Components: core.ScoreComponents{
			BM25:         lexical,
			Vector:       semantic,
			PageRank:     auth,
			MissingTerms: missing,
			PhraseBonus:  phrase,
		},
		Metadata: md,
	}
}

// GetSnippet returns a short preview of id around the first query term.
// It never fails; unreadable pages yield PreviewUnavailable.
func (e *Engine) GetSnippet(ctx context.Context, id core.DocumentID, query string) string {
	var generation uint64
	if st := e.state.Load(); st != nil {
		generation = st.generation
	}
	text, err := e.cleanText(generation, id)
	if err != nil {
		e.logger.Debug("snippet unavailable", "doc", id, "err", err)
		return PreviewUnavailable
	}
	return snippet(text, e.normalizer.Tokenize(query))
}
