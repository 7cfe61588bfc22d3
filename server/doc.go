// Package server exposes search over a small JSON HTTP API.
//
// Endpoints:
//
//	GET  /api/search?q=&page=&per_page=  ranked, paginated results with snippets
//	GET  /api/snippet?doc=&q=            preview of one document
//	GET  /api/status                     manifest of the serving snapshot
//	POST /api/reload                     load the current snapshot from disk and swap it in
//
// Errors are returned as {"error": "..."}. Queries made before any snapshot
// is served get 503.
package server
