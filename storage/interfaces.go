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


package storage

import (
	"context"

	"github.com/poiesic/sift/core"
)

// Artifact names one persisted part of a snapshot.
type Artifact string

const (
	ArtifactPostings   Artifact = "postings"
	ArtifactMetadata   Artifact = "metadata"
	ArtifactVocabulary Artifact = "vocabulary"
	ArtifactVectors    Artifact = "vectors"
	ArtifactAuthority  Artifact = "authority"
)

// Artifacts lists every artifact a complete snapshot holds, in save order.
var Artifacts = []Artifact{
	ArtifactPostings,
	ArtifactMetadata,
	ArtifactVocabulary,
	ArtifactVectors,
	ArtifactAuthority,
}

// ManifestRepository stores the description of a snapshot.
type ManifestRepository interface {
	// SaveManifest persists the manifest, replacing any previous one.
	SaveManifest(ctx context.Context, manifest *core.Manifest) error

	// LoadManifest retrieves the manifest.
	// Returns ErrNotFound if none was saved.
	LoadManifest(ctx context.Context) (*core.Manifest, error)
}

// SnapshotRepository persists the artifacts of one index snapshot.
//
// Every Save replaces the artifact wholesale. Every Load returns ErrNotFound
// when the artifact was never saved, and an error wrapping
// ErrSerializationFailed when a stored value cannot be decoded.
// Implementations must be thread-safe.
type SnapshotRepository interface {
	ManifestRepository

	// SavePostings persists the inverted index, term to postings.
	SavePostings(ctx context.Context, table map[string][]core.Posting) error

	// LoadPostings retrieves the inverted index.
	LoadPostings(ctx context.Context) (map[string][]core.Posting, error)

	// SaveMetadata persists per-document metadata.
	SaveMetadata(ctx context.Context, metadata map[core.DocumentID]core.DocumentMetadata) error

	// LoadMetadata retrieves per-document metadata.
	LoadMetadata(ctx context.Context) (map[core.DocumentID]core.DocumentMetadata, error)

	// SaveVocabulary persists raw word counts.
	SaveVocabulary(ctx context.Context, counts map[string]int) error

	// LoadVocabulary retrieves raw word counts.
	LoadVocabulary(ctx context.Context) (map[string]int, error)

	// SaveVectors persists document vectors. Order is preserved.
	SaveVectors(ctx context.Context, entries []core.VectorEntry) error

	// LoadVectors retrieves document vectors in the order they were saved.
	LoadVectors(ctx context.Context) ([]core.VectorEntry, error)

	// SaveAuthority persists authority scores keyed by URL.
	SaveAuthority(ctx context.Context, scores map[string]float64) error

	// LoadAuthority retrieves authority scores.
	LoadAuthority(ctx context.Context) (map[string]float64, error)

	// Has reports whether artifact was saved.
	Has(ctx context.Context, artifact Artifact) (bool, error)

	// Close releases resources held by the repository.
	Close() error
}
