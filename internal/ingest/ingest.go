// Package ingest runs the offline document pipeline: chunk source text,
// embed the passages, deduplicate, and write them into a collection. It also
// merges collections into a fresh target for atomic swap, so the query path
// never observes a half-merged collection.
package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/chunker"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/dedup"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/embedder"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/vectorstore"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// embedConcurrency bounds parallel embedding calls during ingestion.
const embedConcurrency = 4

// Stats reports one pipeline run.
type Stats struct {
	Passages     int
	Embedded     int
	ExactDropped int
	NearDropped  int
	Rejected     int
	Added        int
}

// Pipeline ingests documents into collections.
type Pipeline struct {
	chunker   *chunker.Chunker
	embedder  embedder.Embedder
	dedup     *dedup.Deduplicator
	dimension int
	logger    *zap.Logger
}

// New creates a pipeline.
func New(ch *chunker.Chunker, emb embedder.Embedder, dd *dedup.Deduplicator, dimension int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		chunker:   ch,
		embedder:  emb,
		dedup:     dd,
		dimension: dimension,
		logger:    logger,
	}
}

// IngestText chunks, embeds, deduplicates, and stores one source document in
// the given collection. Passages whose embeddings come back with the wrong
// dimension are rejected individually and counted; they never abort the rest
// of the batch.
func (p *Pipeline) IngestText(ctx context.Context, coll vectorstore.Collection, source, text string) (Stats, error) {
	var stats Stats

	passages := p.chunker.Split(text)
	stats.Passages = len(passages)
	if len(passages) == 0 {
		return stats, nil
	}

	docs := make([]types.Document, len(passages))
	for i, passage := range passages {
		docs[i] = types.Document{
			ID:   uuid.NewString(),
			Text: passage.Text,
			Metadata: types.Metadata{
				types.MetaSource:       source,
				types.MetaCollectionID: coll.ID(),
			},
		}
	}

	if err := p.embedAll(ctx, docs); err != nil {
		return stats, fmt.Errorf("failed to embed passages: %w", err)
	}
	stats.Embedded = len(docs)

	deduped, ddStats, err := p.dedup.Dedup(ctx, docs)
	if err != nil {
		return stats, fmt.Errorf("failed to deduplicate: %w", err)
	}
	stats.ExactDropped = ddStats.ExactDropped
	stats.NearDropped = ddStats.NearDropped

	accepted := p.validateDimensions(deduped, &stats)
	if len(accepted) == 0 {
		return stats, nil
	}

	if err := coll.Add(ctx, accepted); err != nil {
		return stats, fmt.Errorf("failed to store documents: %w", err)
	}
	stats.Added = len(accepted)

	p.logger.Info("ingested document",
		zap.String("collection", coll.ID()),
		zap.String("source", source),
		zap.Int("passages", stats.Passages),
		zap.Int("added", stats.Added))
	return stats, nil
}

// MergeCollections deduplicates the union of the source collections into the
// target. The target must be a fresh, empty collection; the caller swaps it
// into the engine once the merge completes, so live queries keep reading the
// previous generation until then.
func (p *Pipeline) MergeCollections(ctx context.Context, sources []vectorstore.Collection, target vectorstore.Collection) (Stats, error) {
	var stats Stats

	if len(sources) == 0 {
		return stats, fmt.Errorf("no source collections to merge")
	}
	sourceIDs := make([]string, 0, len(sources))
	for _, src := range sources {
		if src.ID() == target.ID() {
			return stats, fmt.Errorf("target collection %s is also a merge source", target.ID())
		}
		sourceIDs = append(sourceIDs, src.ID())
	}

	var all []types.Document
	for _, src := range sources {
		docs, err := src.All(ctx)
		if err != nil {
			return stats, fmt.Errorf("failed to read collection %s: %w", src.ID(), err)
		}
		all = append(all, docs...)
	}
	stats.Passages = len(all)
	if len(all) == 0 {
		return stats, nil
	}

	deduped, ddStats, err := p.dedup.Dedup(ctx, all)
	if err != nil {
		return stats, fmt.Errorf("failed to deduplicate merge batch: %w", err)
	}
	stats.ExactDropped = ddStats.ExactDropped
	stats.NearDropped = ddStats.NearDropped

	accepted := p.validateDimensions(deduped, &stats)
	if len(accepted) == 0 {
		return stats, nil
	}

	if err := target.Add(ctx, accepted); err != nil {
		return stats, fmt.Errorf("failed to write merged collection: %w", err)
	}
	stats.Added = len(accepted)

	p.logger.Info("merged collections",
		zap.Strings("sources", sourceIDs),
		zap.String("target", target.ID()),
		zap.Int("input", stats.Passages),
		zap.Int("added", stats.Added))
	return stats, nil
}

// embedAll fills in embeddings with bounded parallelism.
func (p *Pipeline) embedAll(ctx context.Context, docs []types.Document) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for i := range docs {
		i := i
		g.Go(func() error {
			emb, err := p.embedder.Embed(gctx, docs[i].Text, embedder.ModeDocument)
			if err != nil {
				return err
			}
			docs[i].Embedding = emb
			return nil
		})
	}
	return g.Wait()
}

// validateDimensions drops documents whose embedding does not match the
// store dimension, logging each rejection.
func (p *Pipeline) validateDimensions(docs []types.Document, stats *Stats) []types.Document {
	accepted := docs[:0:0]
	for i := range docs {
		if err := docs[i].Validate(p.dimension); err != nil {
			stats.Rejected++
			p.logger.Error("rejecting document",
				zap.String("id", docs[i].ID),
				zap.Error(err))
			continue
		}
		if !docs[i].HasEmbedding() {
			stats.Rejected++
			p.logger.Error("rejecting document without embedding",
				zap.String("id", docs[i].ID))
			continue
		}
		accepted = append(accepted, docs[i])
	}
	return accepted
}
