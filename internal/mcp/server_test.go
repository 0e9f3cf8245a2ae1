package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Store.Backend = config.BackendMemory
	cfg.Embedder.Provider = "local"
	cfg.Embedder.Dimension = 64
	// No generator: every answer takes the retrieved-text path.
	cfg.Generator.Provider = "none"
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(testConfig(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func callArgs(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestServer_IngestRetrieveAsk(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	ingestRes, err := s.handleIngestDocuments(ctx, callArgs(map[string]interface{}{
		"collection": "epr_timeline",
		"source":     "cpcb_circular.pdf",
		"text":       "Annual return filing for FY 2024-25 must be completed by 31st January 2026 on the central portal.",
	}))
	require.NoError(t, err)
	ingested := resultJSON(t, ingestRes)
	assert.Equal(t, float64(1), ingested["added"])

	retrieveRes, err := s.handleRetrieve(ctx, callArgs(map[string]interface{}{
		"query": "annual return filing deadline",
	}))
	require.NoError(t, err)
	retrieved := resultJSON(t, retrieveRes)
	assert.Equal(t, true, retrieved["found"])
	assert.Contains(t, retrieved["combined_text"], "31st January 2026")

	askRes, err := s.handleAsk(ctx, callArgs(map[string]interface{}{
		"query":      "What is the annual return filing deadline for 2024-25?",
		"session_id": "t1",
	}))
	require.NoError(t, err)
	answered := resultJSON(t, askRes)
	assert.Contains(t, answered["answer"], "31st January 2026")
	assert.Equal(t, "deadline", answered["intent"])
	assert.Equal(t, "database", answered["source"])
}

func TestServer_AskRequiresQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleAsk(context.Background(), callArgs(map[string]interface{}{
		"session_id": "t1",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestServer_RetrieveLimitValidation(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleRetrieve(context.Background(), callArgs(map[string]interface{}{
		"query": "fees",
		"limit": float64(500),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestServer_MergeCollections(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleIngestDocuments(ctx, callArgs(map[string]interface{}{
		"collection": "epr_base",
		"text":       "Producers, importers, and brand owners must register before operating.",
	}))
	require.NoError(t, err)
	_, err = s.handleIngestDocuments(ctx, callArgs(map[string]interface{}{
		"collection": "epr_timeline",
		"text":       "producers, importers, and brand owners must register before operating.",
	}))
	require.NoError(t, err)

	mergeRes, err := s.handleMergeCollections(ctx, callArgs(map[string]interface{}{
		"sources": []interface{}{"epr_base", "epr_timeline"},
		"target":  "epr_merged",
	}))
	require.NoError(t, err)
	merged := resultJSON(t, mergeRes)
	assert.Equal(t, float64(2), merged["input"])
	assert.Equal(t, float64(1), merged["added"])

	statusRes, err := s.handleStatus(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	status := resultJSON(t, statusRes)
	assert.Equal(t, ServerName, status["server"])
	assert.Equal(t, float64(1), collectionCount(t, status, "epr_merged"))
}

// collectionCount extracts the document count for one collection from a
// status response.
func collectionCount(t *testing.T, status map[string]interface{}, id string) float64 {
	t.Helper()
	entries, ok := status["collections"].([]interface{})
	require.True(t, ok)
	for _, raw := range entries {
		entry, ok := raw.(map[string]interface{})
		require.True(t, ok)
		if entry["id"] == id {
			return entry["documents"].(float64)
		}
	}
	t.Fatalf("collection %s missing from status", id)
	return 0
}

func TestServer_MergeReplacesPreviousGeneration(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = config.BackendSQLite
	cfg.Store.Path = filepath.Join(t.TempDir(), "eprbot.db")
	s, err := NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.store.Close() })
	ctx := context.Background()

	_, err = s.handleIngestDocuments(ctx, callArgs(map[string]interface{}{
		"collection": "epr_base",
		"text":       "Producers must register on the portal before placing packaging on the market.",
	}))
	require.NoError(t, err)

	// Merging twice exercises the generation handover: the second merge
	// rebuilds the target while the first generation is still live.
	for i := 0; i < 2; i++ {
		mergeRes, err := s.handleMergeCollections(ctx, callArgs(map[string]interface{}{
			"sources": []interface{}{"epr_base"},
			"target":  "epr_merged",
		}))
		require.NoError(t, err)
		merged := resultJSON(t, mergeRes)
		assert.Equal(t, float64(1), merged["added"])
	}

	// The rebuilt collection serves queries under its logical id, without
	// accumulating documents from replaced generations.
	retrieveRes, err := s.handleRetrieve(ctx, callArgs(map[string]interface{}{
		"query": "who must register on the portal",
	}))
	require.NoError(t, err)
	retrieved := resultJSON(t, retrieveRes)
	assert.Equal(t, true, retrieved["found"])
	var collectionIDs []string
	for _, raw := range retrieved["hits"].([]interface{}) {
		collectionIDs = append(collectionIDs, raw.(map[string]interface{})["collection_id"].(string))
	}
	assert.Contains(t, collectionIDs, "epr_merged")

	statusRes, err := s.handleStatus(ctx, mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.Equal(t, float64(1), collectionCount(t, resultJSON(t, statusRes), "epr_merged"))
}

func TestServer_Sessions(t *testing.T) {
	s := newTestServer(t)

	a := s.sessionFor("alpha")
	b := s.sessionFor("beta")
	assert.NotSame(t, a, b)
	assert.Same(t, a, s.sessionFor("alpha"))
}
