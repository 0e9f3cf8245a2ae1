package vectorstore

import (
	"fmt"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
)

// New creates a store from configuration.
func New(cfg config.StoreConfig, dimension int) (Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return OpenSQLite(cfg.Path, dimension)
	case config.BackendMemory:
		return NewMemoryStore(dimension)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
