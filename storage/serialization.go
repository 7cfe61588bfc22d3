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
	"fmt"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/sift/core"
)

// decode runs unmarshal and requires it to consume exactly data.
func decode[T any](data []byte, unmarshal func([]byte) (T, int, error)) (T, error) {
	if len(data) == 0 {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrSerializationFailed, ErrTruncatedData)
	}
	v, n, err := unmarshal(data)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		var zero T
		return zero, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return v, nil
}

// MarshalPostings serializes a posting list to bytes.
func MarshalPostings(postings []core.Posting) []byte {
	buf := make([]byte, core.PostingsMUS.Size(postings))
	core.PostingsMUS.Marshal(postings, buf)
	return buf
}

// UnmarshalPostings deserializes a posting list from bytes.
func UnmarshalPostings(data []byte) ([]core.Posting, error) {
	return decode(data, core.PostingsMUS.Unmarshal)
}

// MarshalDocumentMetadata serializes DocumentMetadata to bytes.
func MarshalDocumentMetadata(md *core.DocumentMetadata) []byte {
	buf := make([]byte, core.DocumentMetadataMUS.Size(*md))
	core.DocumentMetadataMUS.Marshal(*md, buf)
	return buf
}

// UnmarshalDocumentMetadata deserializes DocumentMetadata from bytes.
func UnmarshalDocumentMetadata(data []byte) (*core.DocumentMetadata, error) {
	md, err := decode(data, core.DocumentMetadataMUS.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &md, nil
}

// MarshalVectorEntry serializes a VectorEntry to bytes.
func MarshalVectorEntry(entry *core.VectorEntry) []byte {
	buf := make([]byte, core.VectorEntryMUS.Size(*entry))
	core.VectorEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalVectorEntry deserializes a VectorEntry from bytes.
func UnmarshalVectorEntry(data []byte) (*core.VectorEntry, error) {
	entry, err := decode(data, core.VectorEntryMUS.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(manifest *core.Manifest) []byte {
	buf := make([]byte, core.ManifestMUS.Size(*manifest))
	core.ManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	manifest, err := decode(data, core.ManifestMUS.Unmarshal)
	if err != nil {
		return nil, err
	}
	return &manifest, nil
}

// MarshalCount serializes a vocabulary count to bytes.
func MarshalCount(n int) []byte {
	buf := make([]byte, varint.Int.Size(n))
	varint.Int.Marshal(n, buf)
	return buf
}

// UnmarshalCount deserializes a vocabulary count from bytes.
func UnmarshalCount(data []byte) (int, error) {
	return decode(data, varint.Int.Unmarshal)
}

// MarshalScore serializes an authority score to bytes.
func MarshalScore(score float64) []byte {
	buf := make([]byte, varint.Float64.Size(score))
	varint.Float64.Marshal(score, buf)
	return buf
}

// UnmarshalScore deserializes an authority score from bytes.
func UnmarshalScore(data []byte) (float64, error) {
	return decode(data, varint.Float64.Unmarshal)
}
