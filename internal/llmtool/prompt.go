package llmtool

import (
	"bytes"
	"encoding/json"

	"arna/internal/mcp"
)

// FormatToolSpecs renders a compact JSON block of tool specs for prompt inclusion.
func FormatToolSpecs(tools []mcp.ToolSpec) string {
	if tools == nil {
		tools = []mcp.ToolSpec{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(tools)
	return buf.String()
}

// FormatToolResults renders tool results as a JSON block.
func FormatToolResults(results []ToolResult) string {
	if results == nil {
		results = []ToolResult{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(results)
	return buf.String()
}
