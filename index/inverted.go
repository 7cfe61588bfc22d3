package index

import (
	"slices"

	"github.com/poiesic/sift/core"
)

type postingList struct {
	postings []core.Posting
	pos      map[core.DocumentID]int
}

// Index maps stemmed terms to weighted postings.
// A term holds at most one posting per document; repeated additions
// accumulate into that posting's weight.
type Index struct {
	terms map[string]*postingList
}

// New returns an empty Index.
func New() *Index {
	return &Index{terms: make(map[string]*postingList)}
}

// Add accumulates weight into the (term, id) posting.
func (ix *Index) Add(term string, id core.DocumentID, weight float64) {
	pl, ok := ix.terms[term]
	if !ok {
		pl = &postingList{pos: make(map[core.DocumentID]int)}
		ix.terms[term] = pl
	}
	if i, ok := pl.pos[id]; ok {
		pl.postings[i].Weight += weight
		return
	}
	pl.pos[id] = len(pl.postings)
	pl.postings = append(pl.postings, core.Posting{DocID: id, Weight: weight})
}

// Postings returns the postings for term in insertion order.
// The returned slice is shared and must not be modified.
func (ix *Index) Postings(term string) []core.Posting {
	if pl, ok := ix.terms[term]; ok {
		return pl.postings
	}
	return nil
}

// TermFrequency returns the weighted frequency of term in id, 0 if absent.
func (ix *Index) TermFrequency(term string, id core.DocumentID) float64 {
	pl, ok := ix.terms[term]
	if !ok {
		return 0
	}
	if i, ok := pl.pos[id]; ok {
		return pl.postings[i].Weight
	}
	return 0
}

// Contains reports whether id has a posting for term.
func (ix *Index) Contains(term string, id core.DocumentID) bool {
	pl, ok := ix.terms[term]
	if !ok {
		return false
	}
	_, ok = pl.pos[id]
	return ok
}

// DocFrequency returns the number of documents containing term.
func (ix *Index) DocFrequency(term string) int {
	if pl, ok := ix.terms[term]; ok {
		return len(pl.postings)
	}
	return 0
}

// Len returns the number of distinct terms.
func (ix *Index) Len() int {
	return len(ix.terms)
}

// Terms returns every term in lexical order.
func (ix *Index) Terms() []string {
	terms := make([]string, 0, len(ix.terms))
	for t := range ix.terms {
		terms = append(terms, t)
	}
	slices.Sort(terms)
	return terms
}

// Export returns a copy of the table keyed by term.
func (ix *Index) Export() map[string][]core.Posting {
	out := make(map[string][]core.Posting, len(ix.terms))
	for t, pl := range ix.terms {
		out[t] = slices.Clone(pl.postings)
	}
	return out
}

// FromPostings rebuilds an Index from an exported table.
// Duplicate postings for the same document are merged.
func FromPostings(table map[string][]core.Posting) *Index {
	ix := New()
	for t, postings := range table {
		for _, p := range postings {
			ix.Add(t, p.DocID, p.Weight)
		}
	}
	return ix
}
