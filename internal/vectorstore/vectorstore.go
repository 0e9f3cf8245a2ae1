package vectorstore

import (
	"context"
	"errors"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// Common errors
var (
	ErrEmptyBatch        = errors.New("no documents to add")
	ErrMissingEmbedding  = errors.New("document has no embedding")
	ErrUnknownCollection = errors.New("unknown collection")
)

// Collection is one independently-populated set of documents sharing a single
// embedding space. Collections are read-only at query time; all mutation
// happens in offline ingestion batches.
type Collection interface {
	// ID returns the stable collection identifier used as the ranker's
	// priority lookup key.
	ID() string

	// Add ingests documents. Every document must carry an embedding of the
	// collection's dimension; a mismatch fails the whole batch with an error
	// wrapping types.ErrDimensionMismatch, never a silent pad or truncate.
	Add(ctx context.Context, docs []types.Document) error

	// Get returns the documents for the given IDs. Unknown IDs yield
	// types.ErrNotFound.
	Get(ctx context.Context, ids []string) ([]types.Document, error)

	// All returns every document in the collection, in insertion order.
	// Used by the offline merge pipeline, never on the query path.
	All(ctx context.Context) ([]types.Document, error)

	// Query returns the k nearest documents to the embedding, ordered by
	// ascending distance.
	Query(ctx context.Context, embedding []float32, k int) ([]types.RawHit, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}

// Store opens collections over one backend.
type Store interface {
	// Collection returns the named collection, creating it if absent.
	// Equivalent to CollectionAs(id, id).
	Collection(id string) (Collection, error)

	// CollectionAs opens the physical collection stored under storage while
	// serving the logical collection id. Rebuilds write each new generation
	// into fresh storage and swap it into the query path, so readers of the
	// previous generation are never mutated underneath.
	CollectionAs(id, storage string) (Collection, error)

	// DropCollection removes the collection stored under the given storage
	// name and its documents. Administrative operation used by the merge
	// pipeline after the swap.
	DropCollection(ctx context.Context, storage string) error

	// Close releases backend resources.
	Close() error
}
