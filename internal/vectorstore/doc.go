// Package vectorstore provides the document collection backends: a persistent
// SQLite store with a Go cosine scan for similarity, and an in-memory
// chromem-go store for tests and rebuild-at-startup deployments.
//
// Both backends enforce a fixed embedding dimension per store. A document
// whose embedding does not match fails ingestion with ErrDimensionMismatch;
// vectors are never padded or truncated.
package vectorstore
