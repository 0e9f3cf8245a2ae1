// Package retrieval runs the multi-collection query path: embed the query,
// fan out nearest-neighbor searches, merge and rank the hits, and assemble
// the combined context text for the composer.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/embedder"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/ranker"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/vectorstore"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// Engine searches a fixed set of collections and ranks the merged results.
type Engine struct {
	mu          sync.RWMutex
	collections []vectorstore.Collection

	embedder embedder.Embedder
	ranker   *ranker.PriorityRanker
	cfg      config.RetrievalConfig
	logger   *zap.Logger
}

// New creates an engine over the given collections.
func New(collections []vectorstore.Collection, emb embedder.Embedder, rank *ranker.PriorityRanker, cfg config.RetrievalConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		collections: collections,
		embedder:    emb,
		ranker:      rank,
		cfg:         cfg,
		logger:      logger,
	}
}

// SwapCollection atomically replaces the collection with the given id.
// Used by the merge pipeline so in-flight queries see either the old or the
// new collection, never a partial one.
func (e *Engine) SwapCollection(id string, coll vectorstore.Collection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.collections {
		if e.collections[i].ID() == id {
			e.collections[i] = coll
			return
		}
	}
	e.collections = append(e.collections, coll)
}

// snapshot returns the current collection set for one retrieval pass.
func (e *Engine) snapshot() []vectorstore.Collection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]vectorstore.Collection, len(e.collections))
	copy(out, e.collections)
	return out
}

// Retrieve runs one retrieval pass.
//
// An empty or whitespace-only query fails with ErrMalformedQuery. A failed
// query embedding fails the whole pass with ErrEmbeddingUnavailable; there is
// no degraded lexical path. An unreachable collection is logged and skipped.
// A pass that reaches the stores but matches nothing returns Found=false with
// a nil error.
func (e *Engine) Retrieve(ctx context.Context, query string) (types.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return types.RetrievalResult{}, fmt.Errorf("empty query: %w", types.ErrMalformedQuery)
	}

	queryEmb, err := e.embedder.Embed(ctx, query, embedder.ModeQuery)
	if err != nil {
		return types.RetrievalResult{}, fmt.Errorf("failed to embed query: %w", err)
	}

	collections := e.snapshot()

	var (
		hitsMu       sync.Mutex
		byCollection = make(map[string][]types.RawHit, len(collections))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, coll := range collections {
		coll := coll
		g.Go(func() error {
			hits, err := coll.Query(gctx, queryEmb, e.cfg.PerCollectionK)
			if err != nil {
				// One unreachable collection degrades the result set, it
				// does not fail the query.
				e.logger.Warn("collection unreachable, skipping",
					zap.String("collection", coll.ID()),
					zap.Error(fmt.Errorf("%w: %v", types.ErrCollectionUnreachable, err)))
				return nil
			}
			hitsMu.Lock()
			byCollection[coll.ID()] = hits
			hitsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.RetrievalResult{}, err
	}

	ranked := e.ranker.Rank(byCollection)
	if len(ranked) == 0 {
		return types.RetrievalResult{Found: false}, nil
	}

	combined := e.combineText(ranked)
	return types.RetrievalResult{
		Hits:         ranked,
		CombinedText: combined,
		Found:        combined != "",
	}, nil
}

// combineText joins the top-ranked passages with blank lines, dropping
// passages shorter than the boilerplate floor.
func (e *Engine) combineText(ranked []types.RetrievalHit) string {
	top := e.cfg.TopPassages
	if top <= 0 || top > len(ranked) {
		top = len(ranked)
	}

	parts := make([]string, 0, top)
	for _, hit := range ranked[:top] {
		text := strings.TrimSpace(hit.Document.Text)
		if len(text) < e.cfg.MinPassageChars {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n")
}
