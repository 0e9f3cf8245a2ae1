// Package config loads and validates the chatbot core configuration.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (EPRBOT_EMBEDDER_PROVIDER, EPRBOT_CACHE_CAPACITY, ...)
//  2. YAML config file
//  3. Defaults
package config

import (
	"fmt"
	"strings"
	"time"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the root configuration for the retrieval core.
type Config struct {
	Store       StoreConfig        `koanf:"store"`
	Collections []CollectionConfig `koanf:"collections"`
	Embedder    EmbedderConfig     `koanf:"embedder"`
	Generator   GeneratorConfig    `koanf:"generator"`
	Retrieval   RetrievalConfig    `koanf:"retrieval"`
	Dedup       DedupConfig        `koanf:"dedup"`
	Cache       CacheConfig        `koanf:"cache"`
	Composer    ComposerConfig     `koanf:"composer"`
	Intent      IntentConfig       `koanf:"intent"`
}

// StoreConfig selects the collection backend.
type StoreConfig struct {
	// Backend is "sqlite" (persistent) or "memory" (chromem-go, volatile).
	Backend string `koanf:"backend"`
	// Path is the SQLite database file. Ignored by the memory backend.
	Path string `koanf:"path"`
}

// CollectionConfig declares one logical collection and its freshness weight.
// Unconfigured collections encountered at query time default to multiplier 1.0.
type CollectionConfig struct {
	ID                 string  `koanf:"id"`
	PriorityMultiplier float64 `koanf:"priority_multiplier"`
}

// EmbedderConfig configures the embedding capability.
type EmbedderConfig struct {
	// Provider is "openai", "ollama", or "local".
	Provider       string `koanf:"provider"`
	APIKey         string `koanf:"api_key"`
	Model          string `koanf:"model"`
	BaseURL        string `koanf:"base_url"`
	Dimension      int    `koanf:"dimension"`
	CacheSize      int    `koanf:"cache_size"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// Timeout returns the bounded timeout for one embedding call.
func (c EmbedderConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GeneratorConfig configures the generative capability.
type GeneratorConfig struct {
	// Provider is "openai" or "ollama".
	Provider       string  `koanf:"provider"`
	APIKey         string  `koanf:"api_key"`
	Model          string  `koanf:"model"`
	BaseURL        string  `koanf:"base_url"`
	MaxTokens      int     `koanf:"max_tokens"`
	Temperature    float64 `koanf:"temperature"`
	TimeoutSeconds int     `koanf:"timeout_seconds"`
}

// Timeout returns the bounded timeout for one generation call.
func (c GeneratorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetrievalConfig tunes the retrieval engine.
type RetrievalConfig struct {
	// PerCollectionK is the per-collection top-k fetched before ranking.
	PerCollectionK int `koanf:"per_collection_k"`
	// TopPassages is how many ranked hits feed the combined context text.
	TopPassages int `koanf:"top_passages"`
	// MinPassageChars drops boilerplate passages shorter than this from the
	// combined text.
	MinPassageChars int `koanf:"min_passage_chars"`
}

// DedupConfig tunes ingestion-time deduplication.
type DedupConfig struct {
	// SimilarityThreshold is the cosine similarity at or above which a
	// document is dropped as a near-duplicate of an already-accepted one.
	SimilarityThreshold float64 `koanf:"similarity_threshold"`
}

// CacheConfig tunes the conversation answer cache.
type CacheConfig struct {
	Capacity int `koanf:"capacity"`
}

// ComposerConfig tunes answer composition.
type ComposerConfig struct {
	// MaxAnswerWords bounds the generative-knowledge answer length.
	MaxAnswerWords int `koanf:"max_answer_words"`
	// FilterAboveChars triggers the trimming pass when a composed answer
	// exceeds this length.
	FilterAboveChars int `koanf:"filter_above_chars"`
	// MinDeadlineContextChars is the minimum retrieved-text length for the
	// verbatim deadline path to engage.
	MinDeadlineContextChars int `koanf:"min_deadline_context_chars"`
	// HandoffAfterTurns sets ShouldOfferHandoff once a session reaches this
	// many turns.
	HandoffAfterTurns int `koanf:"handoff_after_turns"`
	// MaxSessionTurns bounds the per-session conversation ring buffer.
	MaxSessionTurns int `koanf:"max_session_turns"`
}

// IntentConfig externalizes the keyword rule tables so they are configured
// once instead of forked per call site.
type IntentConfig struct {
	DeadlineKeywords   []string `koanf:"deadline_keywords"`
	DefinitionKeywords []string `koanf:"definition_keywords"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendSQLite,
			Path:    "eprbot.db",
		},
		Collections: []CollectionConfig{
			{ID: "epr_base", PriorityMultiplier: 1.0},
			{ID: "epr_merged", PriorityMultiplier: 1.1},
			{ID: "epr_timeline", PriorityMultiplier: 1.25},
		},
		Embedder: EmbedderConfig{
			Provider:       "local",
			Dimension:      768,
			CacheSize:      10000,
			TimeoutSeconds: 30,
		},
		Generator: GeneratorConfig{
			Provider:       "ollama",
			Model:          "llama3",
			MaxTokens:      512,
			Temperature:    0.2,
			TimeoutSeconds: 30,
		},
		Retrieval: RetrievalConfig{
			PerCollectionK:  10,
			TopPassages:     3,
			MinPassageChars: 30,
		},
		Dedup: DedupConfig{
			SimilarityThreshold: 0.95,
		},
		Cache: CacheConfig{
			Capacity: 100,
		},
		Composer: ComposerConfig{
			MaxAnswerWords:          150,
			FilterAboveChars:        150,
			MinDeadlineContextChars: 40,
			HandoffAfterTurns:       3,
			MaxSessionTurns:         20,
		},
		Intent: IntentConfig{
			DeadlineKeywords: []string{
				"deadline", "due date", "filing date", "last date",
				"annual return", "timeline", "by when", "cut-off",
			},
			DefinitionKeywords: []string{
				"what is", "what are", "define", "meaning of",
				"full form", "stands for",
			},
		},
	}
}

// Validate checks the configuration for values the core cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendSQLite && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for the sqlite backend")
	}
	if len(c.Collections) == 0 {
		return fmt.Errorf("at least one collection must be configured")
	}
	seen := make(map[string]struct{}, len(c.Collections))
	for _, col := range c.Collections {
		id := strings.TrimSpace(col.ID)
		if id == "" {
			return fmt.Errorf("collection with empty id")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate collection id %q", id)
		}
		seen[id] = struct{}{}
		if col.PriorityMultiplier < 0 {
			return fmt.Errorf("collection %q has negative priority multiplier", id)
		}
	}
	if c.Embedder.Dimension <= 0 {
		return fmt.Errorf("embedder.dimension must be positive")
	}
	if c.Dedup.SimilarityThreshold <= 0 || c.Dedup.SimilarityThreshold > 1 {
		return fmt.Errorf("dedup.similarity_threshold must be in (0, 1]")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be positive")
	}
	if c.Retrieval.PerCollectionK <= 0 {
		return fmt.Errorf("retrieval.per_collection_k must be positive")
	}
	if c.Retrieval.TopPassages <= 0 {
		return fmt.Errorf("retrieval.top_passages must be positive")
	}
	return nil
}

// PriorityMultipliers returns the configured collection-id to multiplier
// table consumed by the ranker.
func (c *Config) PriorityMultipliers() map[string]float64 {
	out := make(map[string]float64, len(c.Collections))
	for _, col := range c.Collections {
		m := col.PriorityMultiplier
		if m == 0 {
			m = 1.0
		}
		out[col.ID] = m
	}
	return out
}

// CollectionIDs returns the configured collection ids in declaration order.
func (c *Config) CollectionIDs() []string {
	out := make([]string, 0, len(c.Collections))
	for _, col := range c.Collections {
		out = append(out, col.ID)
	}
	return out
}
