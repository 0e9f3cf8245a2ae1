package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/vectorstore"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32001 // Query parameter is empty
	ErrorCodeIngestFailed  = -32002 // Document ingestion failed
	ErrorCodeMergeFailed   = -32003 // Collection merge failed
)

// handleAsk handles the ask tool invocation
func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}
	sessionID := getStringDefault(args, "session_id", "default")

	answer, err := s.composer.Answer(ctx, query, s.sessionFor(sessionID))
	if err != nil {
		if errors.Is(err, types.ErrMalformedQuery) {
			return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be empty or whitespace", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "failed to compose answer", map[string]interface{}{
			"error": err.Error(),
		})
	}

	provenance := make([]map[string]interface{}, 0, len(answer.Provenance))
	for _, p := range answer.Provenance {
		provenance = append(provenance, map[string]interface{}{
			"document_id":   p.DocumentID,
			"collection_id": p.CollectionID,
			"source":        p.Source,
			"final_score":   p.FinalScore,
		})
	}

	response := map[string]interface{}{
		"answer":               answer.Text,
		"source":               string(answer.Source),
		"intent":               string(answer.Intent),
		"suggestions":          answer.Suggestions,
		"provenance":           provenance,
		"should_offer_handoff": answer.ShouldOfferHandoff,
		"cached":               answer.Cached,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRetrieve handles the retrieve tool invocation
func (s *Server) handleRetrieve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	result, err := s.engine.Retrieve(ctx, query)
	if err != nil {
		if errors.Is(err, types.ErrMalformedQuery) {
			return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be empty or whitespace", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "retrieval failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	hits := result.Hits
	if len(hits) > limit {
		hits = hits[:limit]
	}

	formatted := make([]map[string]interface{}, 0, len(hits))
	for _, h := range hits {
		formatted = append(formatted, map[string]interface{}{
			"document_id":         h.Document.ID,
			"collection_id":       h.CollectionID,
			"text":                h.Document.Text,
			"source":              h.Document.Metadata.GetString(types.MetaSource),
			"raw_distance":        h.RawDistance,
			"semantic_score":      h.SemanticScore,
			"priority_multiplier": h.PriorityMultiplier,
			"final_score":         h.FinalScore,
		})
	}

	response := map[string]interface{}{
		"found":         result.Found,
		"hits":          formatted,
		"combined_text": result.CombinedText,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIngestDocuments handles the ingest_documents tool invocation
func (s *Server) handleIngestDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	collection, ok := args["collection"].(string)
	if !ok || collection == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "collection parameter is required", map[string]interface{}{
			"param":  "collection",
			"reason": "missing or empty",
		})
	}
	text, ok := args["text"].(string)
	if !ok || text == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]interface{}{
			"param":  "text",
			"reason": "missing or empty",
		})
	}
	source := getStringDefault(args, "source", "manual")

	coll, err := s.liveCollection(collection)
	if err != nil {
		return nil, newMCPError(ErrorCodeIngestFailed, "failed to open collection", map[string]interface{}{
			"collection": collection,
			"error":      err.Error(),
		})
	}

	stats, err := s.pipeline.IngestText(ctx, coll, source, text)
	if err != nil {
		return nil, newMCPError(ErrorCodeIngestFailed, "ingestion failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"collection":    collection,
		"source":        source,
		"passages":      stats.Passages,
		"added":         stats.Added,
		"exact_dropped": stats.ExactDropped,
		"near_dropped":  stats.NearDropped,
		"rejected":      stats.Rejected,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleMergeCollections handles the merge_collections tool invocation.
// The merge writes into a fresh generation of the target collection, swaps it
// into the live engine, then drops the previous generation. Queries running
// concurrently with the merge read the old generation until the swap and the
// new one after it, never a partial state.
func (s *Server) handleMergeCollections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	sources := getStringSlice(args, "sources")
	if len(sources) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "sources parameter is required", map[string]interface{}{
			"param":  "sources",
			"reason": "missing or empty",
		})
	}
	target, ok := args["target"].(string)
	if !ok || target == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "target parameter is required", map[string]interface{}{
			"param":  "target",
			"reason": "missing or empty",
		})
	}

	srcColls := make([]vectorstore.Collection, 0, len(sources))
	for _, id := range sources {
		coll, err := s.liveCollection(id)
		if err != nil {
			return nil, newMCPError(ErrorCodeMergeFailed, "failed to open source collection", map[string]interface{}{
				"collection": id,
				"error":      err.Error(),
			})
		}
		srcColls = append(srcColls, coll)
	}

	storage := fmt.Sprintf("%s@%s", target, uuid.NewString()[:8])
	fresh, err := s.store.CollectionAs(target, storage)
	if err != nil {
		return nil, newMCPError(ErrorCodeMergeFailed, "failed to create target generation", map[string]interface{}{
			"error": err.Error(),
		})
	}

	stats, err := s.pipeline.MergeCollections(ctx, srcColls, fresh)
	if err != nil {
		_ = s.store.DropCollection(ctx, storage)
		return nil, newMCPError(ErrorCodeMergeFailed, "merge failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.engine.SwapCollection(target, fresh)

	s.genMu.Lock()
	previous, had := s.generations[target]
	s.generations[target] = storage
	s.genMu.Unlock()
	if !had {
		previous = target
	}
	if previous != storage {
		if err := s.store.DropCollection(ctx, previous); err != nil {
			s.logger.Warn("failed to drop previous generation",
				zap.String("collection", target),
				zap.String("storage", previous),
				zap.Error(err))
		}
	}

	response := map[string]interface{}{
		"sources":       sources,
		"target":        target,
		"input":         stats.Passages,
		"added":         stats.Added,
		"exact_dropped": stats.ExactDropped,
		"near_dropped":  stats.NearDropped,
		"rejected":      stats.Rejected,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleStatus handles the status tool invocation
func (s *Server) handleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collections := make([]map[string]interface{}, 0, len(s.cfg.Collections))
	multipliers := s.cfg.PriorityMultipliers()
	for _, id := range s.cfg.CollectionIDs() {
		coll, err := s.liveCollection(id)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to open collection", map[string]interface{}{
				"collection": id,
				"error":      err.Error(),
			})
		}
		count, err := coll.Count(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to count collection", map[string]interface{}{
				"collection": id,
				"error":      err.Error(),
			})
		}
		collections = append(collections, map[string]interface{}{
			"id":                  id,
			"documents":           count,
			"priority_multiplier": multipliers[id],
		})
	}

	response := map[string]interface{}{
		"server":  ServerName,
		"version": ServerVersion,
		"store": map[string]interface{}{
			"backend":    s.cfg.Store.Backend,
			"build_mode": vectorstore.BuildMode,
		},
		"embedder": map[string]interface{}{
			"provider":  s.embedder.Provider(),
			"dimension": s.embedder.Dimension(),
		},
		"collections": collections,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter
func getStringSlice(args map[string]interface{}, key string) []string {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
