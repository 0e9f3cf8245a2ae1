package types

import "errors"

// Error taxonomy for the retrieval core. External-call failures are caught at
// the component boundary that made the call and converted into that
// component's fallback behavior; these sentinels are what errors.Is checks
// against when deciding which fallback applies.
var (
	// ErrEmbeddingUnavailable is fatal to the current retrieval attempt.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrGenerationUnavailable is non-fatal; the composer falls back to a
	// retrieved-text-only answer.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrCollectionUnreachable marks a single collection failing to respond.
	// The failing collection is skipped and retrieval proceeds with the rest.
	ErrCollectionUnreachable = errors.New("collection unreachable")

	// ErrDimensionMismatch is fatal at ingestion time. A vector whose length
	// does not match the collection's configured dimension aborts that
	// document's ingestion; it is never zero-padded or truncated.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrMalformedQuery rejects empty or whitespace-only queries before any
	// external call is made.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrNotFound is returned by store lookups for unknown document IDs.
	ErrNotFound = errors.New("not found")
)
