package tools

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/raphaelgruber/recipescape-go/internal/service"
)

// ErrorResult creates a tool error result with optional recovery hint.
// If hint is non-empty, formats as "{msg}. {hint}".
// Returns IsError=true so LLM can see the error and self-correct.
func ErrorResult(msg, hint string) *mcp.CallToolResult {
	text := msg
	if hint != "" {
		text = msg + ". " + hint
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// TextResult creates a success result with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// JSONResult creates a success result with v as indented JSON.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult(fmt.Sprintf("Failed to encode result: %v", err), "")
	}
	return TextResult(string(data))
}

// serviceError turns a service error into a tool result. Not-found errors
// carry their message and the hint; anything else is logged and reported
// as unavailable storage.
func serviceError(deps *Dependencies, tool string, err error, notFoundHint string) *mcp.CallToolResult {
	if errors.Is(err, service.ErrNotFound) {
		return ErrorResult(err.Error(), notFoundHint)
	}
	deps.Logger.Error("tool failed", "tool", tool, "error", err)
	return ErrorResult("Request failed", "Database may be unavailable")
}
