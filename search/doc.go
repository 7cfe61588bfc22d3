// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search ranks documents for a query against a loaded snapshot.
//
// The Engine fuses three signals into one score:
//   - lexical relevance, BM25 over the query stems present in a document,
//     adjusted for missing terms, full matches and verbatim phrase matches
//   - semantic similarity from the vector index
//   - link authority from PageRank, normalized by the corpus maximum
//
// Queries are spell corrected against the raw vocabulary first. Snippets
// are built on demand from the stored page markup.
//
// The Engine serves one snapshot at a time and replaces it atomically with
// Swap. Queries already running keep the snapshot they started with.
package search
