// Package index holds the in-memory lexical tables of a snapshot: the
// inverted index of weighted postings, the per-document metadata used for
// BM25 length normalization, and the raw word vocabulary used for spelling
// correction.
//
// All three are written by a single builder and become read-only once a
// snapshot is published for serving.
package index
