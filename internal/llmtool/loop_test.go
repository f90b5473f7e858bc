package llmtool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"arna/internal/mcp"
	"arna/internal/structure"
)

type fakeLLM struct {
	responses []json.RawMessage
	prompts   []string
}

func (f *fakeLLM) Name() string                { return "fake" }
func (f *fakeLLM) Close() error                { return nil }
func (f *fakeLLM) CountTokens(text string) int { return len(text) }
func (f *fakeLLM) TokenCapacity() int          { return 1000 }
func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.prompts = append(f.prompts, prompt)
	if len(f.responses) == 0 {
		return json.RawMessage(`{}`), nil
	}
	out := f.responses[0]
	f.responses = f.responses[1:]
	return out, nil
}

type fakeTools struct {
	specs []mcp.ToolSpec
	calls []string
	fail  map[string]*structure.Error
}

func (f *fakeTools) Specs() []mcp.ToolSpec { return f.specs }
func (f *fakeTools) Invoke(ctx context.Context, name string, input json.RawMessage) mcp.Result {
	f.calls = append(f.calls, name)
	if err, ok := f.fail[name]; ok {
		return mcp.Result{Error: err}
	}
	return mcp.Result{OK: true, Result: json.RawMessage(`{"path":"add"}`)}
}

var testPrompt = StructuredPromptBuilder(StructuredPromptSpec{
	Purpose:      "Build the requested project.",
	OutputFields: []PromptField{{Name: "result", Type: "string", Required: true}},
})

func TestToolLoop_ToolThenFinal(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"add_function","tool_input":{"name":"add"}}`),
			json.RawMessage(`{"action":"final","final":{"result":"done"}}`),
		},
	}
	tools := &fakeTools{specs: []mcp.ToolSpec{{Name: "add_function"}}}
	var observed []string
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 3, OnToolResult: func(tr ToolResult) {
		observed = append(observed, tr.Name)
	}}
	out, state, err := loop.Run(context.Background(), map[string]any{"x": 1}, testPrompt)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if state == nil || len(state.ToolResults) != 1 {
		t.Fatalf("expected 1 tool result, got %+v", state)
	}
	if string(out) != `{"result":"done"}` {
		t.Fatalf("unexpected final: %s", string(out))
	}
	if len(observed) != 1 || observed[0] != "add_function" {
		t.Fatalf("OnToolResult not called: %v", observed)
	}
	if !strings.Contains(llm.prompts[1], "[TOOL_RESULTS]") {
		t.Fatalf("second prompt should carry tool results")
	}
}

func TestToolLoop_ToolErrorsAreFedBack(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"add_parameter","tool_input":{"function_path":"add","name":"a"}}`),
			json.RawMessage(`{"action":"final","final":{}}`),
		},
	}
	tools := &fakeTools{
		specs: []mcp.ToolSpec{{Name: "add_parameter"}},
		fail: map[string]*structure.Error{
			"add_parameter": structure.Errorf(structure.KindDuplicateName, "add", "parameter %q already exists", "a"),
		},
	}
	loop := &ToolLoop{LLM: llm, Tools: tools}
	_, state, err := loop.Run(context.Background(), nil, testPrompt)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if state.ToolResults[0].Error == nil || state.ToolResults[0].Error.Kind != structure.KindDuplicateName {
		t.Fatalf("expected recorded DuplicateName, got %+v", state.ToolResults[0])
	}
	if !strings.Contains(llm.prompts[1], `"kind":"DuplicateName"`) {
		t.Fatalf("error kind should be visible to the model:\n%s", llm.prompts[1])
	}
}

func TestToolLoop_AllowedList(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"save","tool_input":{"file_path":"x"}}`),
		},
	}
	tools := &fakeTools{specs: []mcp.ToolSpec{{Name: "save"}, {Name: "add_function"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 1, Allowed: []string{"add_function"}}
	_, _, err := loop.Run(context.Background(), nil, testPrompt)
	if !errors.Is(err, ErrToolNotAllowed) {
		t.Fatalf("expected ErrToolNotAllowed, got %v", err)
	}
	if len(tools.calls) != 0 {
		t.Fatalf("disallowed tool must not be invoked")
	}
	if strings.Contains(llm.prompts[0], `"name":"save"`) {
		t.Fatalf("disallowed tools should not be offered")
	}
}

func TestToolLoop_MaxIterations(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"show_summary"}`),
			json.RawMessage(`{"action":"tool","tool_name":"show_summary"}`),
		},
	}
	tools := &fakeTools{specs: []mcp.ToolSpec{{Name: "show_summary"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 1}
	_, _, err := loop.Run(context.Background(), nil, testPrompt)
	if err != ErrMaxIterations {
		t.Fatalf("expected ErrMaxIterations, got %v", err)
	}
}

func TestParseActionFallsBackToFinal(t *testing.T) {
	env, err := ParseAction(json.RawMessage(`{"plan":"x"}`))
	if err != nil {
		t.Fatalf("ParseAction: %v", err)
	}
	if env.Action != "final" || string(env.Final) != `{"plan":"x"}` {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if _, err := ParseAction(json.RawMessage(`{"action":"dance"}`)); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}
