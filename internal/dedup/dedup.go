// Package dedup removes duplicate documents from ingestion batches.
//
// Deduplication runs in two passes. The exact pass hashes normalized text
// (lowercased, whitespace collapsed) and keeps the first document seen for
// each hash. The near-duplicate pass then compares each survivor's embedding
// against every already-accepted document and drops it when cosine similarity
// meets the threshold. Because acceptance is order-dependent, the output for
// a given input order is deterministic.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/embedder"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/vectorstore"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// DefaultSimilarityThreshold drops documents at or above this cosine
// similarity to an accepted document.
const DefaultSimilarityThreshold = 0.95

// Stats reports what one deduplication pass did.
type Stats struct {
	Input        int
	Kept         int
	ExactDropped int
	NearDropped  int
	// EmbedFailures counts documents kept conservatively because their
	// embedding could not be computed for the near-duplicate comparison.
	EmbedFailures int
}

// Deduplicator filters ingestion batches.
type Deduplicator struct {
	threshold float64
	embedder  embedder.Embedder
	logger    *zap.Logger
}

// New creates a Deduplicator. A non-positive threshold falls back to the
// default. The embedder fills in missing embeddings for the near-duplicate
// pass; it may be nil, in which case documents without embeddings are kept.
func New(threshold float64, emb embedder.Embedder, logger *zap.Logger) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduplicator{threshold: threshold, embedder: emb, logger: logger}
}

// Threshold returns the active similarity threshold.
func (d *Deduplicator) Threshold() float64 {
	return d.threshold
}

// Dedup returns the deduplicated batch in input order. The input slice is not
// modified. Running Dedup on its own output keeps every document.
func (d *Deduplicator) Dedup(ctx context.Context, docs []types.Document) ([]types.Document, Stats, error) {
	stats := Stats{Input: len(docs)}
	if len(docs) == 0 {
		return nil, stats, nil
	}

	// Exact pass: first document wins for each normalized hash, keeping its
	// ID and metadata.
	seen := make(map[string]struct{}, len(docs))
	exact := make([]types.Document, 0, len(docs))
	for _, doc := range docs {
		h := NormalizedHash(doc.Text)
		if _, dup := seen[h]; dup {
			stats.ExactDropped++
			continue
		}
		seen[h] = struct{}{}
		exact = append(exact, doc)
	}

	// Near-duplicate pass against the accepted set.
	accepted := make([]types.Document, 0, len(exact))
	for _, doc := range exact {
		emb, ok := d.embeddingFor(ctx, &doc, &stats)
		if !ok {
			// Conservative keep: never drop on the basis of a comparison we
			// could not perform.
			accepted = append(accepted, doc)
			continue
		}

		dup := false
		for i := range accepted {
			if len(accepted[i].Embedding) == 0 {
				continue
			}
			if vectorstore.CosineSimilarity(emb, accepted[i].Embedding) >= d.threshold {
				d.logger.Debug("dropping near-duplicate document",
					zap.String("id", doc.ID),
					zap.String("duplicate_of", accepted[i].ID))
				stats.NearDropped++
				dup = true
				break
			}
		}
		if !dup {
			doc.Embedding = emb
			accepted = append(accepted, doc)
		}
	}

	stats.Kept = len(accepted)
	return accepted, stats, nil
}

// embeddingFor returns the document's embedding, computing it when missing.
func (d *Deduplicator) embeddingFor(ctx context.Context, doc *types.Document, stats *Stats) ([]float32, bool) {
	if doc.HasEmbedding() {
		return doc.Embedding, true
	}
	if d.embedder == nil {
		return nil, false
	}
	emb, err := d.embedder.Embed(ctx, doc.Text, embedder.ModeDocument)
	if err != nil {
		stats.EmbedFailures++
		d.logger.Warn("embedding failed during dedup, keeping document",
			zap.String("id", doc.ID),
			zap.Error(err))
		return nil, false
	}
	return emb, true
}

// Normalize lowercases text and collapses all whitespace runs to single
// spaces so formatting differences do not defeat exact deduplication.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// NormalizedHash is the exact-duplicate key for a document's text.
func NormalizedHash(text string) string {
	sum := sha256.Sum256([]byte(Normalize(text)))
	return hex.EncodeToString(sum[:])
}
