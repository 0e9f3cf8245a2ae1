package embedder

import (
	"fmt"
	"os"
	"strings"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
)

// New creates an embedder from configuration. An empty API key falls back to
// the OPENAI_API_KEY environment variable for the openai provider.
func New(cfg config.EmbedderConfig) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return NewOpenAIProvider(apiKey, cfg.Model, cfg.BaseURL, cfg.Dimension, cfg.Timeout(), cache)
	case ProviderOllama:
		return NewOllamaProvider(cfg.Model, cfg.BaseURL, cfg.Dimension, cfg.Timeout(), cache)
	case ProviderLocal:
		return NewLocalProvider(cfg.Dimension, cache)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
