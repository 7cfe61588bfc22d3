package badger

import (
	"encoding/binary"

	"github.com/poiesic/sift/storage"
)

// Key prefixes for different data types
const (
	postingPrefix    = "post:"
	metadataPrefix   = "meta:"
	vocabularyPrefix = "vocab:"
	vectorPrefix     = "vec:"
	authorityPrefix  = "auth:"
	markerPrefix     = "mark:"
	manifestKey      = "manifest"
)

// makeKey joins a prefix and a name.
func makeKey(prefix, name string) []byte {
	buf := make([]byte, len(prefix)+len(name))
	offset := copy(buf, prefix)
	copy(buf[offset:], name)
	return buf
}

// makeVectorKey generates a key for the vector at position seq.
// Format: prefix + 8-byte seq
func makeVectorKey(seq uint64) []byte {
	buf := make([]byte, len(vectorPrefix)+8)
	offset := copy(buf, vectorPrefix)
	// Write in BigEndian order so lexicographic sort preserves insertion order
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeMarkerKey generates the presence marker key for an artifact.
func makeMarkerKey(artifact storage.Artifact) []byte {
	return makeKey(markerPrefix, string(artifact))
}
