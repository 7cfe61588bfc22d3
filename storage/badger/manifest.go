package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/storage"
)

// SaveManifest persists the snapshot manifest.
func (r *SnapshotRepository) SaveManifest(ctx context.Context, manifest *core.Manifest) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(manifestKey), storage.MarshalManifest(manifest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadManifest retrieves the snapshot manifest.
// Returns storage.ErrNotFound if no manifest exists.
func (r *SnapshotRepository) LoadManifest(ctx context.Context) (*core.Manifest, error) {
	var manifest *core.Manifest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(manifestKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			manifest, unmarshalErr = storage.UnmarshalManifest(val)
			if unmarshalErr != nil {
				return fmt.Errorf("manifest: %w", unmarshalErr)
			}
			return nil
		})
	}, false)

	return manifest, err
}
