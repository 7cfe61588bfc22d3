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


// Package normalize turns raw page markup into searchable text and stems.
//
// Cleaning removes non-content elements (scripts, styles, navigation and other
// boilerplate), then extracts:
//   - the page title, or "No Title" when absent
//   - the first paragraph longer than 50 characters
//   - the remaining visible text, one trimmed chunk per line
//
// Tokenization lowercases, replaces punctuation with whitespace, drops short
// tokens, stopwords and non-alphanumeric tokens, and stems with the Snowball
// English stemmer. A Normalizer holds no mutable state and is safe for
// concurrent use.
package normalize
