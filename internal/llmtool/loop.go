package llmtool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"arna/internal/llmclient"
	"arna/internal/mcp"
	"arna/internal/structure"
)

var (
	ErrMaxIterations  = errors.New("llmtool: max iterations reached")
	ErrUnknownAction  = errors.New("llmtool: unknown action")
	ErrToolNotAllowed = errors.New("llmtool: tool not allowed")
)

// ToolProvider abstracts tool registry calls. Invoke never fails; tool
// errors come back inside the result envelope.
type ToolProvider interface {
	Specs() []mcp.ToolSpec
	Invoke(ctx context.Context, name string, input json.RawMessage) mcp.Result
}

// PromptBuilder builds the LLM prompt given tool specs and current tool state.
type PromptBuilder func(ctx context.Context, state *ToolState, tools []mcp.ToolSpec) (string, error)

// ToolLoop runs tool-call iterations until a final response is returned.
// When Allowed is non-empty, only those tools are offered to the model and
// any other tool request stops the loop with ErrToolNotAllowed.
type ToolLoop struct {
	LLM      llmclient.LLMClient
	Tools    ToolProvider
	MaxIters int
	Allowed  []string
	// OnToolResult, when set, observes every tool call as it completes.
	OnToolResult func(ToolResult)
}

// ToolState captures tool results across iterations.
type ToolState struct {
	Input       any
	Iterations  int
	ToolResults []ToolResult
}

// ToolResult captures the output of a tool call.
type ToolResult struct {
	Name   string           `json:"name"`
	Input  json.RawMessage  `json:"input,omitempty"`
	Output json.RawMessage  `json:"output,omitempty"`
	Error  *structure.Error `json:"error,omitempty"`
}

// Run executes the tool loop and returns the final JSON result.
func (l *ToolLoop) Run(ctx context.Context, input any, build PromptBuilder) (json.RawMessage, *ToolState, error) {
	if l == nil || l.LLM == nil || l.Tools == nil {
		return nil, nil, fmt.Errorf("llmtool: missing LLM or tools")
	}
	if build == nil {
		return nil, nil, fmt.Errorf("llmtool: prompt builder is nil")
	}
	max := l.MaxIters
	if max <= 0 {
		max = 8
	}
	allowed := make(map[string]struct{}, len(l.Allowed))
	for _, a := range l.Allowed {
		a = strings.TrimSpace(a)
		if a != "" {
			allowed[a] = struct{}{}
		}
	}

	state := &ToolState{Input: input}
	tools := l.offered(allowed)
	for i := 0; i < max; i++ {
		if err := ctx.Err(); err != nil {
			return nil, state, err
		}
		state.Iterations = i + 1
		prompt, err := build(ctx, state, tools)
		if err != nil {
			return nil, state, err
		}
		raw, err := l.LLM.GenerateJSON(ctx, prompt, input)
		if err != nil {
			return nil, state, err
		}
		action, err := ParseAction(raw)
		if err != nil {
			return nil, state, err
		}
		switch action.Action {
		case "final":
			return action.Final, state, nil
		case "tool":
			if action.ToolName == "" {
				return nil, state, fmt.Errorf("llmtool: tool_name required")
			}
			if len(allowed) > 0 {
				if _, ok := allowed[action.ToolName]; !ok {
					return nil, state, fmt.Errorf("%w: %s", ErrToolNotAllowed, action.ToolName)
				}
			}
			res := l.Tools.Invoke(ctx, action.ToolName, action.ToolInput)
			tr := ToolResult{
				Name:   action.ToolName,
				Input:  action.ToolInput,
				Output: res.Result,
				Error:  res.Error,
			}
			state.ToolResults = append(state.ToolResults, tr)
			if l.OnToolResult != nil {
				l.OnToolResult(tr)
			}
		default:
			return nil, state, ErrUnknownAction
		}
	}
	return nil, state, ErrMaxIterations
}

func (l *ToolLoop) offered(allowed map[string]struct{}) []mcp.ToolSpec {
	specs := l.Tools.Specs()
	if len(allowed) == 0 {
		return specs
	}
	out := make([]mcp.ToolSpec, 0, len(allowed))
	for _, s := range specs {
		if _, ok := allowed[s.Name]; ok {
			out = append(out, s)
		}
	}
	return out
}
