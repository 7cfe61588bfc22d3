// Package corpus reads and writes crawler output on the local filesystem.
//
// The layout under the storage root is:
//
//	raw/<doc_id>.html   page markup, one file per document
//	url_map.json        {"<doc_id>": "<url>"}
//	link_graph.json     {"<url>": ["<outbound url>", ...]}
//
// The crawler owns these files; sift only reads them when building an index
// and when producing snippets. The writers exist for importers and tests.
package corpus
