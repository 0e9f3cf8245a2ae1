package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/chunker"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/dedup"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/embedder"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/vectorstore"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

func newPipeline(t *testing.T) (*Pipeline, vectorstore.Store) {
	t.Helper()

	emb, err := embedder.New(config.EmbedderConfig{Provider: "local", Dimension: 64})
	require.NoError(t, err)

	store, err := vectorstore.NewMemoryStore(64)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	dd := dedup.New(0.95, emb, zap.NewNop())
	return New(chunker.New(), emb, dd, 64, zap.NewNop()), store
}

func openCollection(t *testing.T, store vectorstore.Store, id string) vectorstore.Collection {
	t.Helper()
	coll, err := store.Collection(id)
	require.NoError(t, err)
	return coll
}

func TestIngestText_EndToEnd(t *testing.T) {
	p, store := newPipeline(t)
	coll := openCollection(t, store, "epr_base")

	text := "Producers must register on the central portal.\n\n" +
		"Annual returns are due by 31st January following the fiscal year.\n\n" +
		"producers must register on the central portal."

	stats, err := p.IngestText(context.Background(), coll, "guidelines.pdf", text)
	require.NoError(t, err)

	// The two paragraphs coalesce into one passage when under the budget, so
	// force the check at the store level instead of counting passages.
	assert.Positive(t, stats.Added)
	assert.Equal(t, stats.Added, stats.Passages-stats.ExactDropped-stats.NearDropped-stats.Rejected)

	count, err := coll.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.Added, count)

	docs, err := coll.All(context.Background())
	require.NoError(t, err)
	for _, d := range docs {
		assert.Equal(t, "guidelines.pdf", d.Metadata.GetString(types.MetaSource))
		assert.Equal(t, "epr_base", d.Metadata.GetString(types.MetaCollectionID))
	}
}

func TestIngestText_EmptyInput(t *testing.T) {
	p, store := newPipeline(t)

	stats, err := p.IngestText(context.Background(), openCollection(t, store, "epr_base"), "empty.pdf", "   ")
	require.NoError(t, err)
	assert.Zero(t, stats.Passages)
	assert.Zero(t, stats.Added)
}

func TestMergeCollections(t *testing.T) {
	p, store := newPipeline(t)
	ctx := context.Background()

	base := openCollection(t, store, "epr_base")
	timeline := openCollection(t, store, "epr_timeline")

	_, err := p.IngestText(ctx, base, "a.pdf", "Registration rules apply to producers, importers, and brand owners.")
	require.NoError(t, err)
	_, err = p.IngestText(ctx, timeline, "b.pdf", "Filing for FY 2024-25 closes on 31st January 2026.")
	require.NoError(t, err)
	// Duplicate of the first source lands in the second collection.
	_, err = p.IngestText(ctx, timeline, "a-copy.pdf", "registration rules apply to producers, importers, and brand owners.")
	require.NoError(t, err)

	// Merge into a fresh generation of the logical target.
	target, err := store.CollectionAs("epr_merged", "epr_merged@r1")
	require.NoError(t, err)

	stats, err := p.MergeCollections(ctx, []vectorstore.Collection{base, timeline}, target)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Passages)
	assert.Equal(t, 1, stats.ExactDropped)
	assert.Equal(t, 2, stats.Added)

	assert.Equal(t, "epr_merged", target.ID())
	count, err := target.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMergeCollections_TargetCannotBeSource(t *testing.T) {
	p, store := newPipeline(t)

	base := openCollection(t, store, "epr_base")
	target, err := store.CollectionAs("epr_base", "epr_base@r1")
	require.NoError(t, err)

	_, err = p.MergeCollections(context.Background(), []vectorstore.Collection{base}, target)
	require.Error(t, err)
}
