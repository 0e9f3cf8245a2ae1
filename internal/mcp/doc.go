// Package mcp implements the Model Context Protocol (MCP) server for the
// EPR compliance chatbot core.
//
// The server exposes five tools over JSON-RPC 2.0 on stdio:
//   - ask: answer a compliance question with provenance and follow-up
//     suggestions
//   - retrieve: return the ranked supporting passages for a query
//   - ingest_documents: chunk, embed, deduplicate, and store a document
//   - merge_collections: deduplicate and merge collections, then swap the
//     result into the live query path
//   - status: report configuration and per-collection document counts
//
// # Tool: ask
//
//	Request:
//	{
//	  "name": "ask",
//	  "arguments": {
//	    "query": "What is the annual return filing deadline for 2024-25?",
//	    "session_id": "web-7f3a"
//	  }
//	}
//
//	Response:
//	{
//	  "answer": "Annual return filing for FY 2024-25 closes on 31st January 2026.",
//	  "source": "database",
//	  "intent": "deadline",
//	  "suggestions": ["...", "...", "...", "Talk to our compliance team"],
//	  "provenance": [{"document_id": "...", "collection_id": "epr_timeline", ...}],
//	  "should_offer_handoff": false,
//	  "cached": false
//	}
//
// # Error Handling
//
// Failures are returned as JSON-RPC errors:
//   - -32602: invalid params (missing/invalid arguments)
//   - -32603: internal error
//   - -32001: empty query
//   - -32002: ingestion failed
//   - -32003: merge failed
//
// External-capability failures (embedder, generator) never reach the client
// as errors from the ask tool; the composer resolves them into fallback
// answers.
//
// # Logging
//
// The server logs to stderr; stdout is reserved for the MCP protocol.
package mcp
