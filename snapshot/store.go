package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/authority"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/index"
	"github.com/poiesic/sift/storage"
	"github.com/poiesic/sift/storage/badger"
	"github.com/poiesic/sift/vector"
)

const (
	snapshotsDir = "snapshots"
	currentFile  = "CURRENT"
)

// Store saves snapshots under a storage root and loads the promoted one.
type Store struct {
	root     string
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a Store rooted at root. Loaded vector indexes embed
// queries with embedder, which may be nil for lexical-only use.
func NewStore(root string, embedder ai.Embedder, opts ...Option) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, ErrInvalidRoot
	}
	s := &Store{
		root:     root,
		embedder: embedder,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "snapshot-store")
	return s, nil
}

// Root returns the storage root.
func (s *Store) Root() string {
	return s.root
}

// Current returns the id of the promoted snapshot.
// Returns ErrNoSnapshot when nothing has been promoted.
func (s *Store) Current() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, currentFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoSnapshot
	}
	if err != nil {
		return "", fmt.Errorf("failed to read current snapshot: %w", err)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", ErrNoSnapshot
	}
	return id, nil
}

// Save writes snap to a new snapshot directory and promotes it.
// The manifest is stamped with a fresh id and build time, and returned.
// Snapshots older than the one being replaced are removed.
func (s *Store) Save(ctx context.Context, snap *Snapshot) (*core.Manifest, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}

	manifest := snap.Manifest
	manifest.SnapshotID = uuid.NewString()
	manifest.BuiltAt = time.Now().UTC().UnixMicro()
	manifest.Documents = len(snap.Metadata)
	manifest.Terms = snap.Index.Len()
	manifest.Vectors = snap.Vectors.Len()

	dir := s.snapshotPath(manifest.SnapshotID)
	if err := s.write(ctx, dir, snap, &manifest); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			s.logger.Warn("failed to remove partial snapshot", "dir", dir, "err", rmErr)
		}
		return nil, err
	}

	previous, err := s.Current()
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return nil, err
	}
	if err := s.promote(manifest.SnapshotID); err != nil {
		return nil, err
	}
	s.prune(manifest.SnapshotID, previous)

	snap.Manifest = manifest
	s.logger.Info("snapshot saved",
		"snapshot", manifest.SnapshotID,
		"documents", manifest.Documents,
		"terms", manifest.Terms,
		"vectors", manifest.Vectors)
	return &manifest, nil
}

func (s *Store) write(ctx context.Context, dir string, snap *Snapshot, manifest *core.Manifest) error {
	repo, backend, err := badger.OpenRepository(dir)
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s: %w", manifest.SnapshotID, err)
	}
	defer backend.Close()
	defer repo.Close()

	if err := repo.SavePostings(ctx, snap.Index.Export()); err != nil {
		return err
	}
	if err := repo.SaveMetadata(ctx, snap.Metadata); err != nil {
		return err
	}
	if err := repo.SaveVocabulary(ctx, snap.Vocabulary.Export()); err != nil {
		return err
	}
	if err := repo.SaveVectors(ctx, snap.Vectors.Entries()); err != nil {
		return err
	}
	if err := repo.SaveAuthority(ctx, snap.Authority); err != nil {
		return err
	}
	return repo.SaveManifest(ctx, manifest)
}

// promote points CURRENT at id with a write-then-rename.
func (s *Store) promote(id string) error {
	tmp, err := os.CreateTemp(s.root, currentFile+".*")
	if err != nil {
		return fmt.Errorf("failed to promote snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(id + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to promote snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to promote snapshot: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.root, currentFile)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to promote snapshot: %w", err)
	}
	return nil
}

// prune removes every snapshot directory except current and previous.
// Failures are logged, never returned.
func (s *Store) prune(current, previous string) {
	entries, err := os.ReadDir(filepath.Join(s.root, snapshotsDir))
	if err != nil {
		s.logger.Warn("failed to list snapshots", "err", err)
		return
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == current || e.Name() == previous {
			continue
		}
		if err := os.RemoveAll(s.snapshotPath(e.Name())); err != nil {
			s.logger.Warn("failed to prune snapshot", "snapshot", e.Name(), "err", err)
			continue
		}
		s.logger.Debug("pruned snapshot", "snapshot", e.Name())
	}
}

func (s *Store) snapshotPath(id string) string {
	return filepath.Join(s.root, snapshotsDir, id)
}

// LoadManifest returns the manifest of the promoted snapshot.
func (s *Store) LoadManifest(ctx context.Context) (*core.Manifest, error) {
	id, err := s.Current()
	if err != nil {
		return nil, err
	}
	repo, backend, err := badger.OpenRepository(s.snapshotPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", id, err)
	}
	defer backend.Close()
	defer repo.Close()
	return repo.LoadManifest(ctx)
}

// Load reads the promoted snapshot fully into memory.
// Returns ErrNoSnapshot when nothing has been promoted. Missing or corrupt
// artifacts load as empty values with a warning, and a snapshot whose
// database cannot be opened at all loads as an empty index.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	id, err := s.Current()
	if err != nil {
		return nil, err
	}
	logger := s.logger.With("snapshot", id)

	repo, backend, err := badger.OpenRepository(s.snapshotPath(id))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("snapshot unreadable, serving an empty index", "err", err)
		snap := Empty(s.embedder)
		snap.Manifest.SnapshotID = id
		return snap, nil
	}
	defer backend.Close()
	defer repo.Close()

	postings, err := repo.LoadPostings(ctx)
	if err = s.degrade(ctx, logger, storage.ArtifactPostings, err); err != nil {
		return nil, err
	}
	metadata, err := repo.LoadMetadata(ctx)
	if err = s.degrade(ctx, logger, storage.ArtifactMetadata, err); err != nil {
		return nil, err
	}
	counts, err := repo.LoadVocabulary(ctx)
	if err = s.degrade(ctx, logger, storage.ArtifactVocabulary, err); err != nil {
		return nil, err
	}
	entries, err := repo.LoadVectors(ctx)
	if err = s.degrade(ctx, logger, storage.ArtifactVectors, err); err != nil {
		return nil, err
	}
	scores, err := repo.LoadAuthority(ctx)
	if err = s.degrade(ctx, logger, storage.ArtifactAuthority, err); err != nil {
		return nil, err
	}

	vecs, err := vector.FromEntries(s.embedder, entries, vector.WithLogger(s.logger))
	if err != nil {
		logger.Warn("vectors unusable, semantic search disabled", "err", err)
		vecs, err = vector.New(s.embedder, vector.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
	}

	snap := New(index.FromPostings(postings), index.Metadata(metadata),
		index.VocabularyFromCounts(counts), vecs, authority.Scores(scores))

	manifest, err := repo.LoadManifest(ctx)
	switch {
	case err == nil:
		snap.Manifest = *manifest
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		logger.Warn("manifest unavailable", "err", err)
		snap.Manifest.SnapshotID = id
	}

	logger.Info("snapshot loaded",
		"documents", snap.Len(),
		"terms", snap.Index.Len(),
		"vectors", snap.Vectors.Len(),
		"authority", len(snap.Authority))
	return snap, nil
}

// degrade turns a missing or unreadable artifact into a warning.
// Cancellation and storage failures are still returned.
func (s *Store) degrade(ctx context.Context, logger *slog.Logger, artifact storage.Artifact, err error) error {
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, storage.ErrNotFound):
		logger.Warn("artifact missing, using empty value", "artifact", artifact)
		return nil
	case errors.Is(err, storage.ErrSerializationFailed):
		logger.Warn("artifact corrupt, using empty value", "artifact", artifact, "err", err)
		return nil
	default:
		return fmt.Errorf("%s: %w", artifact, err)
	}
}
