// Package vector implements the semantic similarity index.
//
// Every stored vector and every query vector is scaled to unit L2 norm, so
// that for two vectors a and b
//
//	cosine(a, b) = 1 - |a-b|^2 / 2
//
// and the similarity reported by Search is that cosine value. Search is an
// exact scan over all stored vectors. An Index is built by a single writer
// and is read-only once it is published in a snapshot.
package vector
