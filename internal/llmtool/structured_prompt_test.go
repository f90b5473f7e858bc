package llmtool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"arna/internal/mcp"
)

func TestStructuredPromptBuilder_RendersSections(t *testing.T) {
	spec := ApplyPresets(StructuredPromptSpec{
		Purpose:      "Design a project structure.",
		Background:   "The user describes a program in prose.",
		OutputFormat: "JSON only.",
		OutputFields: []PromptField{
			{Name: "plan", Type: "string", Required: true, Description: "YAML document."},
			{Name: "notes", Type: "string"},
		},
		Rules: []string{"Be concise."},
		Examples: []PromptExample{
			{Input: `{"request":"calc"}`, Output: `{"action":"final","final":{"plan":"name: calc"}}`},
		},
	}, PresetActionEnvelope(), PresetToolsOnly())

	state := &ToolState{
		Input: map[string]any{"request": "todo app"},
		ToolResults: []ToolResult{
			{Name: "add_function", Input: json.RawMessage(`{"name":"add"}`), Output: json.RawMessage(`{"path":"add"}`)},
		},
	}
	tools := []mcp.ToolSpec{{Name: "add_function"}}

	out, err := StructuredPromptBuilder(spec)(context.Background(), state, tools)
	if err != nil {
		t.Fatalf("builder error: %v", err)
	}
	for _, sec := range []string{
		"[PURPOSE]", "[BACKGROUND]", "[INPUT]", "[OUTPUT]", "[CONSTRAINTS]",
		"[RULES]", "[OUTPUT_FORMAT]", "[TOOLS]", "[TOOL_RESULTS]", "[EXAMPLES]",
	} {
		if !strings.Contains(out, sec) {
			t.Fatalf("expected section %s in prompt", sec)
		}
	}
	if !strings.Contains(out, "- plan (string, required): YAML document.") {
		t.Fatalf("missing output field line:\n%s", out)
	}
	if !strings.Contains(out, "Reply with exactly one JSON object") {
		t.Fatalf("preset constraint missing")
	}
	if strings.Index(out, "Change the project only") > strings.Index(out, "Be concise.") {
		t.Fatalf("preset rules should come first")
	}
}

func TestStructuredPromptBuilder_OmitsEmptySections(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "p",
		OutputFields: []PromptField{{Name: "x", Type: "string", Required: true}},
	}
	out, err := StructuredPromptBuilder(spec)(context.Background(), &ToolState{}, nil)
	if err != nil {
		t.Fatalf("builder error: %v", err)
	}
	for _, sec := range []string{"[BACKGROUND]", "[RULES]", "[TOOL_RESULTS]", "[EXAMPLES]"} {
		if strings.Contains(out, sec) {
			t.Fatalf("unexpected section %s", sec)
		}
	}
}

func TestStructuredPromptBuilder_RequiresPurpose(t *testing.T) {
	_, err := StructuredPromptBuilder(StructuredPromptSpec{})(context.Background(), &ToolState{}, nil)
	if err == nil {
		t.Fatalf("expected error for empty purpose")
	}
}
