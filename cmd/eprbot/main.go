package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/mcp"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/vectorstore"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("EPR Compliance Bot MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", vectorstore.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", vectorstore.DriverName)
		os.Exit(0)
	}

	// Log to stderr; stdout is reserved for the MCP protocol.
	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Getenv("EPRBOT_CONFIG"))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("starting server",
		zap.String("version", version),
		zap.String("build_mode", vectorstore.BuildMode),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("embedder_provider", cfg.Embedder.Provider))

	server, err := mcp.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("server ready, listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}

	logger.Info("server stopped")
}

// newLogger builds a production logger writing to stderr. EPRBOT_LOG_LEVEL
// overrides the default info level.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if lvl := os.Getenv("EPRBOT_LOG_LEVEL"); lvl != "" {
		parsed, err := zap.ParseAtomicLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("invalid EPRBOT_LOG_LEVEL %q: %w", lvl, err)
		}
		cfg.Level = parsed
	}
	return cfg.Build()
}
