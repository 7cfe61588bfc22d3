package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// SnapshotRepository implements storage.SnapshotRepository for BadgerDB.
type SnapshotRepository struct {
	backend *Backend
}

var _ storage.SnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(backend *Backend) *SnapshotRepository {
	return &SnapshotRepository{
		backend: backend,
	}
}

// OpenRepository opens the snapshot database stored at path.
// Caller must close the backend when done.
func OpenRepository(path string) (*SnapshotRepository, *Backend, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, nil, err
	}
	return NewSnapshotRepository(backend), backend, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *SnapshotRepository) Close() error {
	return nil
}

// Has reports whether artifact was saved.
func (r *SnapshotRepository) Has(ctx context.Context, artifact storage.Artifact) (bool, error) {
	found := false
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeMarkerKey(artifact))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

func (r *SnapshotRepository) setMarker(artifact storage.Artifact, present bool) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		if present {
			err = tx.Set(makeMarkerKey(artifact), []byte{1})
		} else {
			err = tx.Delete(makeMarkerKey(artifact))
		}
		if err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// save replaces every key under prefix with what write produces.
// The marker is cleared first so a failed save never reads as present.
func (r *SnapshotRepository) save(ctx context.Context, artifact storage.Artifact, prefix string, write func(wb *badger.WriteBatch) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.setMarker(artifact, false); err != nil {
		return fmt.Errorf("%s: %w", artifact, err)
	}
	if err := r.backend.DeletePrefix([]byte(prefix)); err != nil {
		return fmt.Errorf("%s: %w", artifact, err)
	}
	if err := r.backend.WithWriteBatch(write); err != nil {
		return fmt.Errorf("%s: %w", artifact, err)
	}
	r.backend.logger.Debug("saved artifact", "artifact", artifact)
	return r.setMarker(artifact, true)
}

// load scans prefix, or returns storage.ErrNotFound when artifact was never saved.
func (r *SnapshotRepository) load(ctx context.Context, artifact storage.Artifact, prefix string, read func(suffix, value []byte) error) error {
	ok, err := r.Has(ctx, artifact)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", artifact, storage.ErrNotFound)
	}
	err = r.backend.ScanPrefix([]byte(prefix), func(suffix, value []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return read(suffix, value)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", artifact, err)
	}
	return nil
}

// SavePostings persists the inverted index.
func (r *SnapshotRepository) SavePostings(ctx context.Context, table map[string][]core.Posting) error {
	return r.save(ctx, storage.ArtifactPostings, postingPrefix, func(wb *badger.WriteBatch) error {
		for term, postings := range table {
			if err := wb.Set(makeKey(postingPrefix, term), storage.MarshalPostings(postings)); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadPostings retrieves the inverted index.
func (r *SnapshotRepository) LoadPostings(ctx context.Context) (map[string][]core.Posting, error) {
	table := make(map[string][]core.Posting)
	err := r.load(ctx, storage.ArtifactPostings, postingPrefix, func(suffix, value []byte) error {
		postings, err := storage.UnmarshalPostings(value)
		if err != nil {
			return fmt.Errorf("term %q: %w", suffix, err)
		}
		table[string(suffix)] = postings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// SaveMetadata persists per-document metadata.
func (r *SnapshotRepository) SaveMetadata(ctx context.Context, metadata map[core.DocumentID]core.DocumentMetadata) error {
	return r.save(ctx, storage.ArtifactMetadata, metadataPrefix, func(wb *badger.WriteBatch) error {
		for id, md := range metadata {
			if err := wb.Set(makeKey(metadataPrefix, string(id)), storage.MarshalDocumentMetadata(&md)); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadMetadata retrieves per-document metadata.
func (r *SnapshotRepository) LoadMetadata(ctx context.Context) (map[core.DocumentID]core.DocumentMetadata, error) {
	metadata := make(map[core.DocumentID]core.DocumentMetadata)
	err := r.load(ctx, storage.ArtifactMetadata, metadataPrefix, func(suffix, value []byte) error {
		md, err := storage.UnmarshalDocumentMetadata(value)
		if err != nil {
			return fmt.Errorf("document %q: %w", suffix, err)
		}
		metadata[core.DocumentID(suffix)] = *md
		return nil
	})
	if err != nil {
		return nil, err
	}
	return metadata, nil
}

// SaveVocabulary persists raw word counts.
func (r *SnapshotRepository) SaveVocabulary(ctx context.Context, counts map[string]int) error {
	return r.save(ctx, storage.ArtifactVocabulary, vocabularyPrefix, func(wb *badger.WriteBatch) error {
		for word, n := range counts {
			if err := wb.Set(makeKey(vocabularyPrefix, word), storage.MarshalCount(n)); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadVocabulary retrieves raw word counts.
func (r *SnapshotRepository) LoadVocabulary(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := r.load(ctx, storage.ArtifactVocabulary, vocabularyPrefix, func(suffix, value []byte) error {
		n, err := storage.UnmarshalCount(value)
		if err != nil {
			return fmt.Errorf("word %q: %w", suffix, err)
		}
		counts[string(suffix)] = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// SaveVectors persists document vectors keyed by position.
func (r *SnapshotRepository) SaveVectors(ctx context.Context, entries []core.VectorEntry) error {
	return r.save(ctx, storage.ArtifactVectors, vectorPrefix, func(wb *badger.WriteBatch) error {
		for i := range entries {
			if err := wb.Set(makeVectorKey(uint64(i)), storage.MarshalVectorEntry(&entries[i])); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadVectors retrieves document vectors in saved order.
func (r *SnapshotRepository) LoadVectors(ctx context.Context) ([]core.VectorEntry, error) {
	var entries []core.VectorEntry
	err := r.load(ctx, storage.ArtifactVectors, vectorPrefix, func(suffix, value []byte) error {
		if len(suffix) != 8 {
			return fmt.Errorf("%w: bad vector key", storage.ErrSerializationFailed)
		}
		entry, err := storage.UnmarshalVectorEntry(value)
		if err != nil {
			return fmt.Errorf("vector %d: %w", binary.BigEndian.Uint64(suffix), err)
		}
		entries = append(entries, *entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveAuthority persists authority scores keyed by URL.
func (r *SnapshotRepository) SaveAuthority(ctx context.Context, scores map[string]float64) error {
	return r.save(ctx, storage.ArtifactAuthority, authorityPrefix, func(wb *badger.WriteBatch) error {
		for url, score := range scores {
			if err := wb.Set(makeKey(authorityPrefix, url), storage.MarshalScore(score)); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadAuthority retrieves authority scores.
func (r *SnapshotRepository) LoadAuthority(ctx context.Context) (map[string]float64, error) {
	scores := make(map[string]float64)
	err := r.load(ctx, storage.ArtifactAuthority, authorityPrefix, func(suffix, value []byte) error {
		score, err := storage.UnmarshalScore(value)
		if err != nil {
			return fmt.Errorf("url %q: %w", suffix, err)
		}
		scores[string(suffix)] = score
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}
