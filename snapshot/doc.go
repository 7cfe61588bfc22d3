// Package snapshot assembles, persists and reloads complete index snapshots.
//
// A snapshot is everything the query engine needs to serve: the inverted
// index, per-document metadata, the raw vocabulary, document vectors and
// authority scores. Each build is written to its own directory under
// <root>/snapshots and promoted by atomically replacing <root>/CURRENT, so a
// reader never observes a half-written snapshot.
//
// Loading is forgiving. An artifact that is missing or cannot be decoded is
// replaced by its empty value and a warning is logged; search then runs
// degraded instead of failing.
package snapshot
