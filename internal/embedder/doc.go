// Package embedder provides the embedding capability behind the retrieval
// core: text in, fixed-length vector out.
//
// Three providers are available:
//   - openai: OpenAI embeddings API (document and query modes embed the same)
//   - ollama: local Ollama server; nomic-style task prefixes distinguish
//     document from query embeddings
//   - local: deterministic hash-based vectors for development and tests
//
// All network providers retry with exponential backoff and cache results in
// an LRU keyed by content hash and mode. Exhausted retries surface as errors
// wrapping types.ErrEmbeddingUnavailable so callers can pick their fallback
// path with errors.Is.
package embedder
