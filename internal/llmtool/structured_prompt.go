package llmtool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"arna/internal/mcp"
)

// PromptField describes one field of the expected final output.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

// PromptExample pairs an optional example input with its expected output.
type PromptExample struct {
	Input  string
	Output string
}

// StructuredPromptSpec defines the sections of a structured prompt. Empty
// sections are omitted from the rendered prompt.
type StructuredPromptSpec struct {
	Purpose      string
	Background   string
	OutputFields []PromptField
	Constraints  []string
	Rules        []string
	OutputFormat string
	Examples     []PromptExample
}

// StructuredPromptBuilder renders the spec as bracketed sections followed
// by the offered tools and the results gathered so far.
func StructuredPromptBuilder(spec StructuredPromptSpec) PromptBuilder {
	return func(_ context.Context, state *ToolState, tools []mcp.ToolSpec) (string, error) {
		if strings.TrimSpace(spec.Purpose) == "" {
			return "", fmt.Errorf("llmtool: purpose is empty")
		}
		if len(spec.OutputFields) == 0 {
			return "", fmt.Errorf("llmtool: output fields are empty")
		}
		var input any
		if state != nil {
			input = state.Input
		}
		inputJSON, err := formatAnyJSON(input)
		if err != nil {
			return "", fmt.Errorf("llmtool: encode input: %w", err)
		}

		var buf bytes.Buffer
		writeSection(&buf, "PURPOSE", spec.Purpose)
		writeSection(&buf, "BACKGROUND", spec.Background)
		writeSection(&buf, "INPUT", inputJSON)
		writeSection(&buf, "OUTPUT", formatFields(spec.OutputFields))
		writeSection(&buf, "CONSTRAINTS", formatList(spec.Constraints))
		writeSection(&buf, "RULES", formatList(spec.Rules))
		writeSection(&buf, "OUTPUT_FORMAT", spec.OutputFormat)
		writeSection(&buf, "TOOLS", FormatToolSpecs(tools))
		if state != nil && len(state.ToolResults) > 0 {
			writeSection(&buf, "TOOL_RESULTS", FormatToolResults(state.ToolResults))
		}
		writeSection(&buf, "EXAMPLES", formatExamples(spec.Examples))
		return strings.TrimSpace(buf.String()) + "\n", nil
	}
}

func formatAnyJSON(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatFields(fields []PromptField) string {
	var buf strings.Builder
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		req := "optional"
		if f.Required {
			req = "required"
		}
		fmt.Fprintf(&buf, "- %s (%s, %s)", name, f.Type, req)
		if f.Description != "" {
			buf.WriteString(": " + f.Description)
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatList(items []string) string {
	var buf strings.Builder
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			fmt.Fprintf(&buf, "- %s\n", item)
		}
	}
	return strings.TrimRight(buf.String(), "\n")
}

func formatExamples(examples []PromptExample) string {
	var buf strings.Builder
	for i, ex := range examples {
		fmt.Fprintf(&buf, "Example %d:\n", i+1)
		if s := strings.TrimSpace(ex.Input); s != "" {
			buf.WriteString("INPUT:\n" + s + "\n")
		}
		if s := strings.TrimSpace(ex.Output); s != "" {
			buf.WriteString("OUTPUT:\n" + s + "\n")
		}
		buf.WriteString("\n")
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[" + title + "]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
