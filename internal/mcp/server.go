package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/answercache"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/chunker"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/composer"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/dedup"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/embedder"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/generator"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/ingest"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/intent"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/ranker"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/retrieval"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/session"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/vectorstore"
)

const (
	// ServerName is the MCP server name
	ServerName = "eprbot"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	cfg      *config.Config
	store    vectorstore.Store
	engine   *retrieval.Engine
	composer *composer.Composer
	pipeline *ingest.Pipeline
	embedder embedder.Embedder
	logger   *zap.Logger

	sessionsMu sync.Mutex
	sessions   map[string]*session.Session

	// generations maps a logical collection id to the storage name of the
	// generation currently serving it. Rebuilds write a new generation and
	// repoint the entry after the engine swap.
	genMu       sync.Mutex
	generations map[string]string
}

// NewServer wires the retrieval core and registers its tools.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := vectorstore.New(cfg.Store, cfg.Embedder.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	collections := make([]vectorstore.Collection, 0, len(cfg.Collections))
	generations := make(map[string]string, len(cfg.Collections))
	for _, id := range cfg.CollectionIDs() {
		coll, err := store.Collection(id)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to open collection %s: %w", id, err)
		}
		collections = append(collections, coll)
		generations[id] = id
	}

	emb, err := embedder.New(cfg.Embedder)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	// A missing generator is a degraded mode, not a startup failure: every
	// answer falls back to retrieved text until it comes up.
	gen, err := generator.New(cfg.Generator)
	if err != nil {
		logger.Warn("generator unavailable, answers will use retrieved text only", zap.Error(err))
		gen = nil
	}

	engine := retrieval.New(collections, emb, ranker.New(cfg.PriorityMultipliers()), cfg.Retrieval, logger)
	classifier := intent.New(cfg.Intent)
	cache := answercache.New(cfg.Cache.Capacity, classifier)
	comp := composer.New(engine, gen, cache, classifier, cfg.Composer, cfg.Generator, logger)
	dd := dedup.New(cfg.Dedup.SimilarityThreshold, emb, logger)
	pipeline := ingest.New(chunker.New(), emb, dd, cfg.Embedder.Dimension, logger)

	s := &Server{
		mcp:         server.NewMCPServer(ServerName, ServerVersion),
		cfg:         cfg,
		store:       store,
		engine:      engine,
		composer:    comp,
		pipeline:    pipeline,
		embedder:    emb,
		logger:      logger,
		sessions:    make(map[string]*session.Session),
		generations: generations,
	}
	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		_ = s.embedder.Close()
		_ = s.store.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(askTool(), s.handleAsk)
	s.mcp.AddTool(retrieveTool(), s.handleRetrieve)
	s.mcp.AddTool(ingestDocumentsTool(), s.handleIngestDocuments)
	s.mcp.AddTool(mergeCollectionsTool(), s.handleMergeCollections)
	s.mcp.AddTool(statusTool(), s.handleStatus)
}

// liveCollection opens the generation currently serving a logical collection
// id. Ids with no recorded generation are served from storage of the same
// name.
func (s *Server) liveCollection(id string) (vectorstore.Collection, error) {
	s.genMu.Lock()
	storage, ok := s.generations[id]
	s.genMu.Unlock()
	if !ok {
		storage = id
	}
	return s.store.CollectionAs(id, storage)
}

// sessionFor returns the session for an id, creating it on first use.
func (s *Server) sessionFor(id string) *session.Session {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := session.New(id, s.cfg.Composer.MaxSessionTurns)
	s.sessions[id] = sess
	return sess
}
