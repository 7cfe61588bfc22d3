package snapshot

import (
	"github.com/poiesic/sift/ai"
	"github.com/poiesic/sift/authority"
	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/index"
	"github.com/poiesic/sift/vector"
)

// Snapshot is an immutable, fully loaded index ready to be served.
// Callers must not mutate any part of it after construction.
type Snapshot struct {
	Manifest   core.Manifest
	Index      *index.Index
	Metadata   index.Metadata
	Vocabulary *index.Vocabulary
	Vectors    *vector.Index
	Authority  authority.Scores

	avgLength float64
	maxAuth   float64
}

// New assembles a snapshot from its parts. Nil parts are replaced with empty
// values. Average document length and maximum authority are fixed here.
func New(ix *index.Index, md index.Metadata, vocab *index.Vocabulary, vecs *vector.Index, auth authority.Scores) *Snapshot {
	if ix == nil {
		ix = index.New()
	}
	if md == nil {
		md = index.Metadata{}
	}
	if vocab == nil {
		vocab = index.NewVocabulary()
	}
	if vecs == nil {
		vecs, _ = vector.New(nil)
	}
	if auth == nil {
		auth = authority.Scores{}
	}
	s := &Snapshot{
		Index:      ix,
		Metadata:   md,
		Vocabulary: vocab,
		Vectors:    vecs,
		Authority:  auth,
		avgLength:  md.AvgLength(),
		maxAuth:    auth.Max(),
	}
	s.Manifest = core.Manifest{
		Documents: len(md),
		Terms:     ix.Len(),
		Vectors:   vecs.Len(),
	}
	return s
}

// Empty returns a snapshot with no documents whose vector index embeds with
// embedder.
func Empty(embedder ai.Embedder) *Snapshot {
	vecs, _ := vector.New(embedder)
	return New(nil, nil, nil, vecs, nil)
}

// AvgLength returns the average document length computed at construction.
func (s *Snapshot) AvgLength() float64 {
	return s.avgLength
}

// MaxAuthority returns the largest authority score, 0 when there are none.
func (s *Snapshot) MaxAuthority() float64 {
	return s.maxAuth
}

// Len returns the number of indexed documents.
func (s *Snapshot) Len() int {
	return len(s.Metadata)
}
