package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/embedder"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// fakeEmbedder returns canned vectors per text, or an error for everything.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string, _ embedder.Mode) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string, mode embedder.Mode) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := f.Embed(ctx, t, mode)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int   { return 3 }
func (f *fakeEmbedder) Provider() string { return "fake" }
func (f *fakeEmbedder) Close() error     { return nil }

func doc(id, text string, emb []float32) types.Document {
	return types.Document{
		ID:        id,
		Text:      text,
		Embedding: emb,
		Metadata:  types.Metadata{types.MetaSource: id + ".pdf"},
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "epr filing deadline", Normalize("  EPR   Filing\n\tDEADLINE "))
	assert.Equal(t, Normalize("Same Text"), Normalize("same    text"))
}

func TestDedup_ExactFirstSeenWins(t *testing.T) {
	d := New(0.95, nil, zap.NewNop())

	a := doc("A", "Producers must file the annual return.", []float32{1, 0, 0})
	b := doc("B", "producers   MUST file the annual return.", []float32{0, 1, 0})

	out, stats, err := d.Dedup(context.Background(), []types.Document{a, b})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].ID)
	assert.Equal(t, "A.pdf", out[0].Metadata.GetString(types.MetaSource))
	assert.Equal(t, 1, stats.ExactDropped)
	assert.Equal(t, 1, stats.Kept)
}

func TestDedup_NearDuplicateDropped(t *testing.T) {
	d := New(0.95, nil, zap.NewNop())

	a := doc("A", "Registration is mandatory for importers.", []float32{1, 0, 0})
	// Distinct text, nearly identical embedding.
	b := doc("B", "Importers are required to register.", []float32{0.999, 0.01, 0})
	// Orthogonal embedding survives.
	c := doc("C", "Annual returns are due each fiscal year.", []float32{0, 1, 0})

	out, stats, err := d.Dedup(context.Background(), []types.Document{a, b, c})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].ID)
	assert.Equal(t, "C", out[1].ID)
	assert.Equal(t, 1, stats.NearDropped)
}

func TestDedup_MutualNearDuplicatesCollapseToFirst(t *testing.T) {
	d := New(0.95, nil, zap.NewNop())

	// Three pairwise near-duplicate embeddings; only the first survives,
	// whatever order the later two arrive in.
	a := doc("A", "Brand owners must display EPR registration on packaging.", []float32{1, 0, 0})
	b := doc("B", "Packaging must carry the EPR registration of the brand owner.", []float32{0.999, 0.01, 0})
	c := doc("C", "EPR registration must be printed on brand owner packaging.", []float32{0.998, 0.02, 0})

	orders := map[string][]types.Document{
		"b then c": {a, b, c},
		"c then b": {a, c, b},
	}
	for name, in := range orders {
		t.Run(name, func(t *testing.T) {
			out, stats, err := d.Dedup(context.Background(), in)
			require.NoError(t, err)
			require.Len(t, out, 1)
			assert.Equal(t, "A", out[0].ID)
			assert.Equal(t, 2, stats.NearDropped)
		})
	}
}

func TestDedup_Idempotent(t *testing.T) {
	d := New(0.95, nil, zap.NewNop())

	in := []types.Document{
		doc("A", "Rule one.", []float32{1, 0, 0}),
		doc("B", "Rule two.", []float32{0, 1, 0}),
		doc("C", "rule one.", []float32{1, 0, 0}),
	}

	once, _, err := d.Dedup(context.Background(), in)
	require.NoError(t, err)

	twice, stats, err := d.Dedup(context.Background(), once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
	assert.Zero(t, stats.ExactDropped)
	assert.Zero(t, stats.NearDropped)
}

func TestDedup_MissingEmbeddingComputed(t *testing.T) {
	fe := &fakeEmbedder{vectors: map[string][]float32{
		"Levy applies to multilayer packaging.": {0.999, 0.01, 0},
	}}
	d := New(0.95, fe, zap.NewNop())

	a := doc("A", "The levy applies to multilayer packaging.", []float32{1, 0, 0})
	b := doc("B", "Levy applies to multilayer packaging.", nil)

	out, stats, err := d.Dedup(context.Background(), []types.Document{a, b})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "A", out[0].ID)
	assert.Equal(t, 1, stats.NearDropped)
}

func TestDedup_EmbedderFailureKeepsDocument(t *testing.T) {
	fe := &fakeEmbedder{err: errors.New("provider down")}
	d := New(0.95, fe, zap.NewNop())

	a := doc("A", "Targets increase each year.", []float32{1, 0, 0})
	b := doc("B", "Yearly targets go up.", nil)

	out, stats, err := d.Dedup(context.Background(), []types.Document{a, b})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, stats.EmbedFailures)
	assert.Zero(t, stats.NearDropped)
}

func TestDedup_EmptyBatch(t *testing.T) {
	d := New(0, nil, zap.NewNop())
	out, stats, err := d.Dedup(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Zero(t, stats.Input)
	assert.InDelta(t, DefaultSimilarityThreshold, d.Threshold(), 1e-9)
}
