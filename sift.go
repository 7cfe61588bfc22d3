// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package sift wires the corpus, indexer, snapshot store and query engine
// into one service.
package sift

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/ai/hash"
	"github.com/poiesic/sift/ai/openai"
	"github.com/poiesic/sift/config"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/corpus"
	"github.com/poiesic/sift/indexing"
	"github.com/poiesic/sift/search"
	"github.com/poiesic/sift/server"
	"github.com/poiesic/sift/snapshot"
)

var _ server.Backend = (*Service)(nil)

var (
	// ErrBuildInProgress is returned by Rebuild while another build runs.
	ErrBuildInProgress = errors.New("index build already in progress")

	// ErrConfigRequired is returned by Open without a config.
	ErrConfigRequired = errors.New("config is required")
)

// Service owns every long-lived component of a sift deployment.
type Service struct {
	cfg      *config.Config
	embedder ai.Embedder
	corpus   *corpus.FileStore
	store    *snapshot.Store
	engine   *search.Engine
	progress io.Writer
	logger   *slog.Logger

	buildMu sync.Mutex
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	embedder    ai.Embedder
	embedderSet bool
	progress    io.Writer
	logger      *slog.Logger
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEmbedder overrides the embedder selected by the config. A nil embedder
// disables vectors.
func WithEmbedder(embedder ai.Embedder) ServiceOption {
	return func(o *serviceOptions) {
		o.embedder = embedder
		o.embedderSet = true
	}
}

// WithProgress reports rebuild progress to w.
func WithProgress(w io.Writer) ServiceOption {
	return func(o *serviceOptions) {
		o.progress = w
	}
}

// Open creates a Service over cfg.StoragePath and starts serving the current
// snapshot, if one has been built.
func Open(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	embedder := options.embedder
	if !options.embedderSet {
		var err error
		embedder, err = newEmbedder(cfg)
		if err != nil {
			return nil, err
		}
	}

	store, err := snapshot.NewStore(cfg.StoragePath, embedder, snapshot.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	pages := corpus.NewFileStore(cfg.StoragePath)
	engine, err := search.NewEngine(pages,
		search.WithLogger(options.logger),
		search.WithSemanticCandidates(cfg.SemanticCandidates),
	)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:      cfg,
		embedder: embedder,
		corpus:   pages,
		store:    store,
		engine:   engine,
		progress: options.progress,
		logger:   options.logger.With("component", "sift"),
	}

	if err := s.Reload(context.Background()); err != nil {
		if !errors.Is(err, snapshot.ErrNoSnapshot) {
			engine.Close()
			return nil, err
		}
		s.logger.Info("no snapshot yet, run an index build first", "storage", cfg.StoragePath)
	}
	return s, nil
}

func newEmbedder(cfg *config.Config) (ai.Embedder, error) {
	switch cfg.Embedder {
	case config.EmbedderOpenAI:
		return openai.NewEmbedder(cfg.AIConfig())
	case config.EmbedderHash:
		return hash.New(0), nil
	default:
		return nil, nil
	}
}

// Close releases the query engine.
func (s *Service) Close() error {
	s.engine.Close()
	return nil
}

// Engine returns the query engine.
func (s *Service) Engine() *search.Engine {
	return s.engine
}

// Corpus returns the crawler output store.
func (s *Service) Corpus() *corpus.FileStore {
	return s.corpus
}

// SearchPage runs one paginated query.
func (s *Service) SearchPage(ctx context.Context, query string, page, perPage int) (*search.Page, error) {
	return s.engine.SearchPage(ctx, query, page, perPage)
}

// GetSnippet returns a preview of one document.
func (s *Service) GetSnippet(ctx context.Context, id core.DocumentID, query string) string {
	return s.engine.GetSnippet(ctx, id, query)
}

// Manifest returns the manifest of the serving snapshot, nil when nothing
// is served.
func (s *Service) Manifest() *core.Manifest {
	snap := s.engine.Snapshot()
	if snap == nil {
		return nil
	}
	m := snap.Manifest
	return &m
}

// Reload loads the current snapshot from disk and swaps it in.
// Returns snapshot.ErrNoSnapshot when nothing has been built.
func (s *Service) Reload(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	return s.engine.Swap(snap)
}

// Rebuild indexes the corpus, persists the result as the new current
// snapshot and starts serving it. Only one rebuild runs at a time; a
// concurrent call returns ErrBuildInProgress.
func (s *Service) Rebuild(ctx context.Context) (*core.Manifest, error) {
	if !s.buildMu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer s.buildMu.Unlock()

	opts := []indexing.Option{
		indexing.WithLogger(s.logger),
		indexing.WithTitleWeight(s.cfg.TitleWeight),
		indexing.WithBatchSize(s.cfg.BatchSize),
		indexing.WithEmbedRate(s.cfg.EmbedRate),
		indexing.WithProgress(s.progress),
	}
	if s.cfg.PoolSize > 0 {
		opts = append(opts, indexing.WithPoolSize(s.cfg.PoolSize))
	}
	builder, err := indexing.NewBuilder(s.corpus, s.embedder, opts...)
	if err != nil {
		return nil, err
	}
	defer builder.Release()

	res, err := builder.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build failed: %w", err)
	}

	snap := snapshot.New(res.Index, res.Metadata, res.Vocabulary, res.Vectors, res.Authority)
	snap.Manifest.Skipped = res.Stats.Skipped
	snap.Manifest.EmbedFailures = res.Stats.EmbedFailures

	manifest, err := s.store.Save(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := s.engine.Swap(snap); err != nil {
		return nil, err
	}
	return manifest, nil
}
