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


// Package storage provides the persistence abstraction for index snapshots.
//
// A snapshot is written once by the index builder and read back when the
// query engine loads. This package defines the repository interfaces and the
// binary encoding of every stored record; storage/badger implements them on
// BadgerDB, one database per snapshot.
//
// # Constructor Return Type Pattern
//
// Consumers depend on the SnapshotRepository interface. Implementation
// packages may return concrete types from their constructors so tests can
// reach backend specifics.
//
// # Missing and Corrupt Data
//
// Repositories distinguish an artifact that was never written (ErrNotFound)
// from one that cannot be decoded (ErrSerializationFailed). Callers decide
// the default; the snapshot loader degrades both to an empty artifact.
//
// # Usage
//
//	repo, backend, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	err = repo.SavePostings(ctx, ix.Export())
//	table, err := repo.LoadPostings(ctx)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // never built
//	}
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
