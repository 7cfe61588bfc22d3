package search

import (
	"math"

	"github.com/poiesic/sift/core"
	"github.com/poiesic/sift/snapshot"
)

// BM25 parameters.
const (
	K1 = 1.5
	B  = 0.75
)

// Fusion weights and bonuses.
const (
	LexicalWeight   = 0.7
	SemanticWeight  = 0.3
	SemanticScale   = 5.0
	AuthorityWeight = 0.15
	AuthorityScale  = 10.0

	MissingTermPenalty = 0.5
	FullMatchBonus     = 1.2
	PhraseBonus        = 1.5
)

// IDF is the BM25 inverse document frequency of a term found in df of n documents.
func IDF(n, df int) float64 {
	return math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)
}

// TermScore is the BM25 contribution of one term with weighted frequency tf
// in a document of length dl, given the corpus average length avgdl.
// A non-positive avgdl treats every document as average length.
func TermScore(tf float64, idf float64, dl int, avgdl float64) float64 {
	if tf <= 0 {
		return 0
	}
	ratio := 1.0
	if avgdl > 0 {
		ratio = float64(dl) / avgdl
	}
	return idf * (tf * (K1 + 1)) / (tf + K1*(1-B+B*ratio))
}

// CompletenessPenalty is 0.5 raised to the number of missing query terms.
func CompletenessPenalty(missing int) float64 {
	return math.Pow(MissingTermPenalty, float64(missing))
}

// Fuse combines the adjusted lexical score, the clamped semantic similarity
// and the normalized authority into the final ranking score.
func Fuse(lexical, semantic, authority float64) float64 {
	return LexicalWeight*lexical + SemanticWeight*(SemanticScale*semantic) + AuthorityWeight*(authority*AuthorityScale)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// bm25 sums the term scores of present over one document. Repeated terms
// count once per occurrence in the query.
func bm25(snap *snapshot.Snapshot, id core.DocumentID, dl int, present []string) float64 {
	n := snap.Len()
	score := 0.0
	for _, term := range present {
		tf := snap.Index.TermFrequency(term, id)
		if tf == 0 {
			continue
		}
		score += TermScore(tf, IDF(n, snap.Index.DocFrequency(term)), dl, snap.AvgLength())
	}
	return score
}

// normalizedAuthority returns the authority of url divided by the corpus
// maximum, 0 when either is missing.
func normalizedAuthority(snap *snapshot.Snapshot, url string) float64 {
	maxAuth := snap.MaxAuthority()
	if maxAuth <= 0 {
		return 0
	}
	return snap.Authority[url] / maxAuth
}
