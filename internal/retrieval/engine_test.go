package retrieval

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/embedder"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/ranker"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/vectorstore"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string, _ embedder.Mode) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string, _ embedder.Mode) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int   { return 3 }
func (f *fakeEmbedder) Provider() string { return "fake" }
func (f *fakeEmbedder) Close() error     { return nil }

// fakeCollection serves canned hits or a canned error.
type fakeCollection struct {
	id   string
	hits []types.RawHit
	err  error
}

func (f *fakeCollection) ID() string { return f.id }
func (f *fakeCollection) Add(context.Context, []types.Document) error {
	return errors.New("not implemented")
}
func (f *fakeCollection) Get(context.Context, []string) ([]types.Document, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCollection) All(context.Context) ([]types.Document, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeCollection) Query(context.Context, []float32, int) ([]types.RawHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}
func (f *fakeCollection) Count(context.Context) (int, error) { return len(f.hits), nil }

func hit(id, text string, distance float64) types.RawHit {
	return types.RawHit{Document: types.Document{ID: id, Text: text}, Distance: distance}
}

func newEngine(colls ...vectorstore.Collection) *Engine {
	cfg := config.RetrievalConfig{PerCollectionK: 10, TopPassages: 3, MinPassageChars: 10}
	rank := ranker.New(map[string]float64{"epr_base": 1.0, "epr_timeline": 1.25})
	return New(colls, &fakeEmbedder{}, rank, cfg, zap.NewNop())
}

func TestRetrieve_MalformedQuery(t *testing.T) {
	e := newEngine(&fakeCollection{id: "epr_base"})

	_, err := e.Retrieve(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedQuery)
}

func TestRetrieve_EmbeddingFailureIsFatal(t *testing.T) {
	cfg := config.RetrievalConfig{PerCollectionK: 10, TopPassages: 3}
	e := New(
		[]vectorstore.Collection{&fakeCollection{id: "epr_base", hits: []types.RawHit{hit("d1", "some passage text here", 0.1)}}},
		&fakeEmbedder{err: types.ErrEmbeddingUnavailable},
		ranker.New(nil), cfg, zap.NewNop(),
	)

	_, err := e.Retrieve(context.Background(), "registration fees")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrEmbeddingUnavailable)
}

func TestRetrieve_NothingFound(t *testing.T) {
	e := newEngine(&fakeCollection{id: "epr_base"})

	res, err := e.Retrieve(context.Background(), "quantum entanglement rules")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Hits)
	assert.Empty(t, res.CombinedText)
}

func TestRetrieve_UnreachableCollectionSkipped(t *testing.T) {
	e := newEngine(
		&fakeCollection{id: "epr_base", err: errors.New("connection refused")},
		&fakeCollection{id: "epr_timeline", hits: []types.RawHit{
			hit("t1", "Annual returns are due by 31st March each year.", 0.2),
		}},
	)

	res, err := e.Retrieve(context.Background(), "annual return deadline")
	require.NoError(t, err)
	assert.True(t, res.Found)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "epr_timeline", res.Hits[0].CollectionID)
}

func TestRetrieve_RankedAndCombined(t *testing.T) {
	e := newEngine(
		&fakeCollection{id: "epr_base", hits: []types.RawHit{
			hit("b1", "Producers register once on the central portal.", 0.1),
			hit("b2", "tiny", 0.15), // below the boilerplate floor
		}},
		&fakeCollection{id: "epr_timeline", hits: []types.RawHit{
			hit("t1", "Filing for FY 2024-25 closes on 31st January 2026.", 0.2),
		}},
	)

	res, err := e.Retrieve(context.Background(), "when do I file")
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Len(t, res.Hits, 3)

	// t1: 0.8*1.25=1.0 outranks b1: 0.9*1.0=0.9.
	assert.Equal(t, "t1", res.Hits[0].Document.ID)
	assert.Equal(t, "b1", res.Hits[1].Document.ID)

	// Combined text holds both long passages, blank-line separated, and
	// drops the short one.
	assert.Contains(t, res.CombinedText, "31st January 2026")
	assert.Contains(t, res.CombinedText, "central portal")
	assert.NotContains(t, res.CombinedText, "tiny")
	assert.Contains(t, res.CombinedText, "\n\n")
}

func TestRetrieve_CollectionRebuildNeverStarvesLiveQueries(t *testing.T) {
	ctx := context.Background()

	store, err := vectorstore.OpenSQLite(filepath.Join(t.TempDir(), "rebuild.db"), 3)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	live, err := store.Collection("epr_merged")
	require.NoError(t, err)
	require.NoError(t, live.Add(ctx, []types.Document{{
		ID:        "old",
		Text:      "Annual returns are filed through the legacy portal workflow.",
		Embedding: []float32{1, 0, 0},
	}}))

	e := newEngine(live)
	res, err := e.Retrieve(ctx, "annual returns")
	require.NoError(t, err)
	require.True(t, res.Found)

	// A rebuild populates a fresh generation under the same logical id.
	next, err := store.CollectionAs("epr_merged", "epr_merged@g2")
	require.NoError(t, err)
	require.NoError(t, next.Add(ctx, []types.Document{{
		ID:        "new",
		Text:      "Annual returns are filed through the unified portal workflow.",
		Embedding: []float32{1, 0, 0},
	}}))

	// Mid-rebuild, the engine still serves the complete old generation.
	res, err = e.Retrieve(ctx, "annual returns")
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "old", res.Hits[0].Document.ID)

	e.SwapCollection("epr_merged", next)
	require.NoError(t, store.DropCollection(ctx, "epr_merged"))

	res, err = e.Retrieve(ctx, "annual returns")
	require.NoError(t, err)
	require.True(t, res.Found)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "new", res.Hits[0].Document.ID)
	assert.Equal(t, "epr_merged", res.Hits[0].CollectionID)
}

func TestRetrieve_SwapCollection(t *testing.T) {
	old := &fakeCollection{id: "epr_merged", hits: []types.RawHit{
		hit("old", "Outdated guidance on registration categories.", 0.1),
	}}
	e := newEngine(old)

	e.SwapCollection("epr_merged", &fakeCollection{id: "epr_merged", hits: []types.RawHit{
		hit("new", "Current guidance on registration categories.", 0.1),
	}})

	res, err := e.Retrieve(context.Background(), "registration categories")
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "new", res.Hits[0].Document.ID)
}
