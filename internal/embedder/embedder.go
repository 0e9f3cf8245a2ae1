package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrBatchTooLarge   = errors.New("batch size exceeds limit")
	ErrUnsupportedMode = errors.New("unsupported embedding mode")
	ErrUnknownProvider = errors.New("unknown embedding provider")
	ErrProviderFailed  = errors.New("embedding provider failed")
)

// Mode selects between document-oriented and query-oriented embeddings for
// models that distinguish the two. Providers that do not support the
// distinction embed both modes identically.
type Mode string

const (
	ModeDocument Mode = "document"
	ModeQuery    Mode = "query"
)

// Embedder generates fixed-length vectors for text.
type Embedder interface {
	// Embed generates a single embedding for the given text.
	Embed(ctx context.Context, text string, mode Mode) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string, mode Mode) ([][]float32, error)

	// Dimension returns the embedding dimension for this provider.
	Dimension() int

	// Provider returns the provider name.
	Provider() string

	// Close releases any resources held by the embedder.
	Close() error
}

// Cache provides in-memory LRU caching of embeddings keyed by content hash.
type Cache struct {
	cache *lru.Cache[string, []float32]
}

// NewCache creates a new embedding cache with LRU eviction.
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = 10000
	}
	cache, err := lru.New[string, []float32](maxLen)
	if err != nil {
		cache, _ = lru.New[string, []float32](10000)
	}
	return &Cache{cache: cache}
}

// Get retrieves a copy of a cached embedding.
func (c *Cache) Get(hash string) ([]float32, bool) {
	v, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, true
}

// Set stores an embedding; the LRU handles eviction at capacity.
func (c *Cache) Set(hash string, vector []float32) {
	c.cache.Add(hash, vector)
}

// Size returns the current cache size.
func (c *Cache) Size() int {
	return c.cache.Len()
}

// CacheKey computes the cache key for a text/mode pair. Mode is part of the
// key because query and document embeddings of the same text differ.
func CacheKey(text string, mode Mode) string {
	h := sha256.Sum256([]byte(string(mode) + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// validateMode rejects modes the interface does not define.
func validateMode(mode Mode) error {
	switch mode {
	case ModeDocument, ModeQuery:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
}

// validateBatch rejects empty batches and empty entries.
func validateBatch(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("%w: no texts provided", ErrEmptyText)
	}
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d", ErrEmptyText, i)
		}
	}
	return nil
}
