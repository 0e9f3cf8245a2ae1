package vectorstore

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// MemoryStore keeps collections in an in-process chromem-go database. Used by
// tests and by deployments small enough to rebuild the index at startup.
type MemoryStore struct {
	db        *chromem.DB
	dimension int

	mu          sync.Mutex
	collections map[string]*memoryCollection
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(dimension int) (*MemoryStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("dimension must be positive, got %d", dimension)
	}
	return &MemoryStore{
		db:          chromem.NewDB(),
		dimension:   dimension,
		collections: make(map[string]*memoryCollection),
	}, nil
}

// Collection returns the named collection, creating it if absent.
func (s *MemoryStore) Collection(id string) (Collection, error) {
	return s.CollectionAs(id, id)
}

// CollectionAs opens the chromem collection named storage while serving the
// logical id. Handles to a dropped generation keep working until released,
// which is what lets a rebuild swap in without disturbing in-flight readers.
func (s *MemoryStore) CollectionAs(id, storage string) (Collection, error) {
	if id == "" || storage == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnknownCollection)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[storage]; ok {
		return c, nil
	}

	// Embeddings are always supplied precomputed, so the embedding func must
	// never run; failing loudly beats silently embedding with the wrong model.
	coll, err := s.db.GetOrCreateCollection(storage, nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", storage, err)
	}

	c := &memoryCollection{id: id, storage: storage, coll: coll, dimension: s.dimension}
	s.collections[storage] = c
	return c, nil
}

// DropCollection removes a collection and its documents.
func (s *MemoryStore) DropCollection(_ context.Context, storage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(storage); err != nil {
		return fmt.Errorf("failed to drop collection %s: %w", storage, err)
	}
	delete(s.collections, storage)
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *MemoryStore) Close() error {
	return nil
}

func rejectEmbedding(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("store does not embed; documents must arrive with embeddings")
}

// memoryCollection wraps one chromem collection. chromem has no list-all
// API, so insertion order is tracked here to serve All.
type memoryCollection struct {
	id        string
	storage   string
	coll      *chromem.Collection
	dimension int

	mu  sync.Mutex
	ids []string
}

func (c *memoryCollection) ID() string {
	return c.id
}

func (c *memoryCollection) Add(ctx context.Context, docs []types.Document) error {
	if len(docs) == 0 {
		return ErrEmptyBatch
	}

	converted := make([]chromem.Document, 0, len(docs))
	for i := range docs {
		if !docs[i].HasEmbedding() {
			return fmt.Errorf("document %s: %w", docs[i].ID, ErrMissingEmbedding)
		}
		if err := docs[i].Validate(c.dimension); err != nil {
			return err
		}
		converted = append(converted, chromem.Document{
			ID:        docs[i].ID,
			Content:   docs[i].Text,
			Embedding: docs[i].Embedding,
			Metadata:  docs[i].Metadata.ToStringMap(),
		})
	}

	if err := c.coll.AddDocuments(ctx, converted, 1); err != nil {
		return fmt.Errorf("failed to add documents to %s: %w", c.id, err)
	}

	c.mu.Lock()
	for i := range docs {
		c.ids = append(c.ids, docs[i].ID)
	}
	c.mu.Unlock()
	return nil
}

func (c *memoryCollection) Get(ctx context.Context, ids []string) ([]types.Document, error) {
	docs := make([]types.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := c.coll.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("document %s in collection %s: %w", id, c.id, types.ErrNotFound)
		}
		docs = append(docs, fromChromem(doc))
	}
	return docs, nil
}

func (c *memoryCollection) All(ctx context.Context) ([]types.Document, error) {
	c.mu.Lock()
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	c.mu.Unlock()

	return c.Get(ctx, ids)
}

func (c *memoryCollection) Query(ctx context.Context, embedding []float32, k int) ([]types.RawHit, error) {
	if k <= 0 {
		return []types.RawHit{}, nil
	}

	// chromem rejects nResults greater than the document count.
	count := c.coll.Count()
	if count == 0 {
		return []types.RawHit{}, nil
	}
	if k > count {
		k = count
	}

	results, err := c.coll.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", c.id, err)
	}

	hits := make([]types.RawHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, types.RawHit{
			Document: types.Document{
				ID:       r.ID,
				Text:     r.Content,
				Metadata: types.MetadataFromStringMap(r.Metadata),
			},
			Distance: 1 - float64(r.Similarity),
		})
	}
	return hits, nil
}

func (c *memoryCollection) Count(_ context.Context) (int, error) {
	return c.coll.Count(), nil
}

func fromChromem(doc chromem.Document) types.Document {
	return types.Document{
		ID:        doc.ID,
		Text:      doc.Content,
		Embedding: doc.Embedding,
		Metadata:  types.MetadataFromStringMap(doc.Metadata),
	}
}
