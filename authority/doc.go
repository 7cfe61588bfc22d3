// Package authority computes link-based authority scores (PageRank) over the
// crawled link graph.
//
// The graph is closed: its nodes are exactly the crawled URLs, and a link is
// an edge only when its target was crawled too. Pages without outbound edges
// spread their score evenly over every node. Scores are keyed by URL and sum
// to approximately 1.
package authority
