// Package answercache caches composed answers keyed by normalized query.
//
// Eviction is FIFO, not LRU: entries leave in insertion order regardless of
// how often they are read, which bounds the staleness of any cached answer
// by the cache's turnover rate. Time-sensitive queries never touch the cache
// in either direction.
package answercache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// DefaultCapacity is the cache size when none is configured.
const DefaultCapacity = 100

// IntentClassifier is the slice of the intent package the cache needs.
type IntentClassifier interface {
	Classify(query string) types.QueryIntent
}

// Cache is a fixed-capacity FIFO answer cache. Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]types.Answer
	order      []string
	capacity   int
	classifier IntentClassifier
}

// New creates a cache. A non-positive capacity falls back to the default.
// The classifier gates time-sensitive queries out of the cache; it must not
// be nil.
func New(capacity int, classifier IntentClassifier) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:    make(map[string]types.Answer, capacity),
		order:      make([]string, 0, capacity),
		capacity:   capacity,
		classifier: classifier,
	}
}

// Key normalizes a query and hashes it. Case and surrounding whitespace do
// not produce distinct entries.
func Key(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached answer for a query. Time-sensitive queries always
// miss.
func (c *Cache) Get(query string) (types.Answer, bool) {
	if c.classifier.Classify(query).TimeSensitive() {
		return types.Answer{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	ans, ok := c.entries[Key(query)]
	return ans, ok
}

// Put stores an answer. A no-op for time-sensitive queries. Re-putting an
// existing key overwrites the value without changing its eviction position.
func (c *Cache) Put(query string, answer types.Answer) {
	if c.classifier.Classify(query).TimeSensitive() {
		return
	}

	key := Key(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = answer
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = answer
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
