package indexing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/authority"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/index"
	"github.com/poiesic/sift/normalize"
	"github.com/poiesic/sift/vector"
	"golang.org/x/time/rate"
)

const (
	// DefaultTitleWeight multiplies every title occurrence of a term.
	DefaultTitleWeight = 5.0

	// FirstParagraphWeight multiplies every first paragraph occurrence of a term.
	FirstParagraphWeight = 3.0

	// DefaultBatchSize is the number of texts sent per embedding request.
	DefaultBatchSize = 32

	// DefaultMaxAttempts is the number of tries per embedding request.
	DefaultMaxAttempts = 3

	// DefaultRetryBaseDelay is the wait before the first embedding retry.
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Source is where a build reads crawler output from.
type Source interface {
	// DocumentIDs lists the stored pages.
	DocumentIDs() ([]core.DocumentID, error)

	// ReadMarkup returns the raw markup of one page.
	ReadMarkup(id core.DocumentID) ([]byte, error)

	// URLMap maps document ids to URLs. An error signals that nothing was crawled.
	URLMap() (map[core.DocumentID]string, error)

	// LinkGraph returns the crawled link graph.
	LinkGraph() (core.LinkGraph, error)
}

// Stats summarizes a build.
type Stats struct {
	Documents     int
	Skipped       int
	EmbedFailures int
	Elapsed       time.Duration
}

// Result is everything a build produces.
type Result struct {
	Index      *index.Index
	Metadata   index.Metadata
	Vocabulary *index.Vocabulary
	Vectors    *vector.Index
	Authority  authority.Scores
	Stats      Stats
}

// Builder turns crawler output into an index.
// A Builder may run several builds, one at a time.
type Builder struct {
	source         Source
	embedder       ai.Embedder
	normalizer     *normalize.Normalizer
	pool           *ants.Pool
	titleWeight    float64
	batchSize      int
	maxAttempts    int
	retryBaseDelay time.Duration
	limiter        *rate.Limiter
	progress       io.Writer
	authorityOpts  []authority.Option
	logger         *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithPoolSize sets the number of pages analyzed concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if b.pool != nil {
			b.pool.Release()
		}
		b.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithNormalizer sets the normalizer used to clean and tokenize pages.
// Default is normalize.New() with English stopwords.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(b *Builder) error {
		if n != nil {
			b.normalizer = n
		}
		return nil
	}
}

// WithTitleWeight sets the multiplier applied to title terms.
// Default is DefaultTitleWeight.
func WithTitleWeight(weight float64) Option {
	return func(b *Builder) error {
		if weight <= 0 {
			return fmt.Errorf("%w: %v", ErrInvalidTitleWeight, weight)
		}
		b.titleWeight = weight
		return nil
	}
}

// WithBatchSize sets how many texts are embedded per request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(b *Builder) error {
		if size < 1 {
			return fmt.Errorf("%w: %d", ErrInvalidBatchSize, size)
		}
		b.batchSize = size
		return nil
	}
}

// WithRetry sets the retry budget for embedding requests.
// Default is DefaultMaxAttempts attempts starting at DefaultRetryBaseDelay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *Builder) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		b.maxAttempts = maxAttempts
		b.retryBaseDelay = baseDelay
		return nil
	}
}

// WithEmbedRate caps embedding requests per second. Zero or less disables
// the cap, which is the default.
func WithEmbedRate(perSecond float64) Option {
	return func(b *Builder) error {
		if perSecond <= 0 {
			b.limiter = nil
			return nil
		}
		b.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		return nil
	}
}

// WithProgress reports build progress to w.
func WithProgress(w io.Writer) Option {
	return func(b *Builder) error {
		b.progress = w
		return nil
	}
}

// WithAuthorityOptions passes options through to authority.Compute.
func WithAuthorityOptions(opts ...authority.Option) Option {
	return func(b *Builder) error {
		b.authorityOpts = append(b.authorityOpts, opts...)
		return nil
	}
}

// NewBuilder creates a Builder reading from source. A nil embedder builds a
// lexical-only index with no vectors.
func NewBuilder(source Source, embedder ai.Embedder, opts ...Option) (*Builder, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	normalizer, err := normalize.New()
	if err != nil {
		return nil, err
	}

	b := &Builder{
		source:         source,
		embedder:       embedder,
		normalizer:     normalizer,
		titleWeight:    DefaultTitleWeight,
		batchSize:      DefaultBatchSize,
		maxAttempts:    DefaultMaxAttempts,
		retryBaseDelay: DefaultRetryBaseDelay,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(b); optErr != nil {
			b.Release()
			return nil, optErr
		}
	}

	if b.pool == nil {
		if err := WithPoolSize(runtime.NumCPU() / 2)(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "indexing")
	return b, nil
}

// Release stops the worker pool. The Builder must not be used afterwards.
func (b *Builder) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}

// Build reads every stored page and returns the resulting index.
// Returns an error wrapping the source's URL map error when nothing was crawled.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	urls, err := b.source.URLMap()
	if err != nil {
		return nil, fmt.Errorf("failed to read url map: %w", err)
	}
	ids, err := b.source.DocumentIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	b.logger.Info("building index", "pages", len(ids))

	analyses, err := b.analyze(ctx, ids)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Index:      index.New(),
		Metadata:   make(index.Metadata, len(ids)),
		Vocabulary: index.NewVocabulary(),
	}
	var pending []embedJob
	for i, id := range ids {
		a := analyses[i]
		if a == nil {
			res.Stats.Skipped++
			continue
		}
		url, ok := urls[id]
		if !ok {
			url = core.UnknownURL
		}
		b.merge(res, id, url, a)
		pending = append(pending, embedJob{id: id, text: a.EmbeddingText()})
	}
	res.Stats.Documents = len(res.Metadata)

	res.Vectors, err = vector.New(b.embedder, vector.WithLogger(b.logger))
	if err != nil {
		return nil, err
	}
	if b.embedder == nil {
		b.logger.Info("no embedder configured, skipping vectors")
	} else {
		failures, err := b.embed(ctx, pending, res.Vectors)
		if err != nil {
			return nil, err
		}
		res.Stats.EmbedFailures = failures
	}

	res.Authority = b.authority()

	res.Stats.Elapsed = time.Since(start)
	b.logger.Info("index built",
		"documents", res.Stats.Documents,
		"terms", res.Index.Len(),
		"vectors", res.Vectors.Len(),
		"skipped", res.Stats.Skipped,
		"embedFailures", res.Stats.EmbedFailures,
		"elapsed", res.Stats.Elapsed)
	return res, nil
}

// analyze cleans and tokenizes every page on the pool. The slot of a page
// that fails stays nil.
func (b *Builder) analyze(ctx context.Context, ids []core.DocumentID) ([]*normalize.Analysis, error) {
	analyses := make([]*normalize.Analysis, len(ids))
	progress := NewProgress(b.progress, "Analyzing", len(ids), 100)

	var wg sync.WaitGroup
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		err := b.pool.Submit(func() {
			defer wg.Done()
			defer progress.Add(1)
			if ctx.Err() != nil {
				return
			}
			a, err := b.analyzePage(id)
			if err != nil {
				b.logger.Warn("skipping page", "doc", id, "err", err)
				return
			}
			analyses[i] = a
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("failed to schedule page %s: %w", id, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress.Finish()
	return analyses, nil
}

func (b *Builder) analyzePage(id core.DocumentID) (*normalize.Analysis, error) {
	markup, err := b.source.ReadMarkup(id)
	if err != nil {
		return nil, err
	}
	if err := core.ValidatePage(&core.Page{ID: id, Markup: markup}); err != nil {
		return nil, err
	}
	return b.normalizer.Analyze(markup)
}

// merge adds one analyzed page to the result. Only called from Build's goroutine.
func (b *Builder) merge(res *Result, id core.DocumentID, url string, a *normalize.Analysis) {
	for _, t := range a.BodyStems {
		res.Index.Add(t, id, 1)
	}
	for _, t := range a.TitleStems {
		res.Index.Add(t, id, b.titleWeight)
	}
	for _, t := range a.FirstParagraphStems {
		res.Index.Add(t, id, FirstParagraphWeight)
	}
	res.Vocabulary.Add(a.RawWords...)
	res.Metadata[id] = core.DocumentMetadata{
		URL:    url,
		Title:  a.Title,
		Length: a.Length(),
	}
}

// authority scores the crawled link graph. A missing or unusable graph
// yields empty scores.
func (b *Builder) authority() authority.Scores {
	graph, err := b.source.LinkGraph()
	if err != nil {
		b.logger.Warn("link graph unavailable, authority disabled", "err", err)
		return authority.Scores{}
	}
	opts := append([]authority.Option{authority.WithLogger(b.logger)}, b.authorityOpts...)
	scores, err := authority.Compute(graph, opts...)
	if err != nil {
		b.logger.Warn("authority computation failed", "err", err)
		return authority.Scores{}
	}
	return scores
}

var errEmbeddingCount = errors.New("embedding count mismatch")
