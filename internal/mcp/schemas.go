package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// askTool returns the tool definition for ask
func askTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ask",
		Description: "Ask an EPR compliance question and receive a composed answer with provenance and follow-up suggestions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "The compliance question, in natural language",
				},
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Conversation identifier; turns with the same id share history and suggestion state",
					"default":     "default",
				},
			},
			Required: []string{"query"},
		},
	}
}

// retrieveTool returns the tool definition for retrieve
func retrieveTool() mcp.Tool {
	return mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the best supporting passages for a query across all collections, with scores and provenance",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of ranked hits to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// ingestDocumentsTool returns the tool definition for ingest_documents
func ingestDocumentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ingest_documents",
		Description: "Chunk, embed, deduplicate, and store a source document into a collection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"collection": map[string]interface{}{
					"type":        "string",
					"description": "Target collection id",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Raw document text to ingest",
				},
				"source": map[string]interface{}{
					"type":        "string",
					"description": "Origin of the document (file name or URL), stored as provenance metadata",
					"default":     "manual",
				},
			},
			Required: []string{"collection", "text"},
		},
	}
}

// mergeCollectionsTool returns the tool definition for merge_collections
func mergeCollectionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "merge_collections",
		Description: "Deduplicate and merge source collections into a target collection, then swap it into the live query path",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sources": map[string]interface{}{
					"type":        "array",
					"description": "Collection ids to merge, in precedence order (first-seen documents win deduplication)",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Collection id to write the merged result into (must not be a source)",
				},
			},
			Required: []string{"sources", "target"},
		},
	}
}

// statusTool returns the tool definition for status
func statusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "status",
		Description: "Report server configuration, store backend, and per-collection document counts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"detail": map[string]interface{}{
					"type":        "boolean",
					"description": "Reserved; currently ignored",
					"default":     false,
				},
			},
		},
	}
}
