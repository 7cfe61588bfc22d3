package storage

import (
	"testing"

	"github.com/poiesic/sift/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalPostings(t *testing.T) {
	tests := []struct {
		name     string
		postings []core.Posting
	}{
		{"single posting", []core.Posting{{DocID: "a1", Weight: 1}}},
		{"fractional weights", []core.Posting{{DocID: "a1", Weight: 6.5}, {DocID: "b2", Weight: 0.25}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalPostings(tt.postings)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalPostings(data)
			require.NoError(t, err)
			assert.Equal(t, tt.postings, decoded)
		})
	}
}

func TestMarshalUnmarshalDocumentMetadata(t *testing.T) {
	md := &core.DocumentMetadata{URL: "https://example.com/a", Title: "Example", Length: 42}

	decoded, err := UnmarshalDocumentMetadata(MarshalDocumentMetadata(md))
	require.NoError(t, err)
	assert.Equal(t, md, decoded)
}

func TestMarshalUnmarshalVectorEntry(t *testing.T) {
	entry := &core.VectorEntry{DocID: "doc", Vector: []float32{0.6, -0.8, 0}}

	decoded, err := UnmarshalVectorEntry(MarshalVectorEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestMarshalUnmarshalManifest(t *testing.T) {
	manifest := &core.Manifest{
		SnapshotID:    "c6b1",
		Documents:     200,
		Terms:         5000,
		Vectors:       198,
		Skipped:       1,
		EmbedFailures: 1,
		BuiltAt:       1_760_000_000_000_000,
	}

	decoded, err := UnmarshalManifest(MarshalManifest(manifest))
	require.NoError(t, err)
	assert.Equal(t, manifest, decoded)
}

func TestMarshalUnmarshalScalars(t *testing.T) {
	n, err := UnmarshalCount(MarshalCount(1234))
	require.NoError(t, err)
	assert.Equal(t, 1234, n)

	score, err := UnmarshalScore(MarshalScore(0.0375))
	require.NoError(t, err)
	assert.Equal(t, 0.0375, score)
}

func TestUnmarshal_Invalid(t *testing.T) {
	valid := MarshalDocumentMetadata(&core.DocumentMetadata{URL: "u", Title: "t", Length: 3})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated data", valid[:len(valid)-2]},
		{"trailing bytes", append(append([]byte{}, valid...), 0x01)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalDocumentMetadata(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}

	_, err := UnmarshalCount(nil)
	assert.ErrorIs(t, err, ErrTruncatedData)
}
