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


// Package ai defines the embedding capability the search engine depends on.
//
// The core never talks to a model directly. It depends on the Embedder
// interface, and concrete backends live in sub-packages:
//
//   - ai/openai: OpenAI-compatible embedding services (Ollama, LocalAI, vLLM, OpenAI)
//   - ai/mock: deterministic bag-of-words embedder for tests and offline use
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("all-minilm"))
//	embedder, err := openai.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vec, err := embedder.EmbedText(ctx, "computer science")
package ai
