// Package indexing builds a complete index from crawler output.
//
// A build reads every stored page once. Pages are cleaned and tokenized on a
// worker pool, then merged by a single writer in document id order so that
// two builds over the same corpus produce identical indexes. The merge
// produces the inverted index, document metadata and raw vocabulary.
// The "<title>. <first paragraph>" text of every page is then embedded in
// batches and added to the vector index, and authority scores are computed
// from the crawled link graph.
//
// Failures are isolated. A page that cannot be read or parsed is logged and
// counted as skipped. A page whose embedding cannot be obtained is still
// indexed lexically and counted as an embedding failure.
package indexing
