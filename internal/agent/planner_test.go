package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"arna/internal/codetools"
	"arna/internal/llmtool"
	"arna/internal/mcp"
)

type scriptedLLM struct {
	replies []string
	prompts []string
}

func (s *scriptedLLM) Name() string                { return "scripted" }
func (s *scriptedLLM) Close() error                { return nil }
func (s *scriptedLLM) CountTokens(text string) int { return len(text) }
func (s *scriptedLLM) TokenCapacity() int          { return 4096 }
func (s *scriptedLLM) GenerateJSON(_ context.Context, prompt string, _ any) (json.RawMessage, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return json.RawMessage(`{"action":"final","final":{}}`), nil
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return json.RawMessage(r), nil
}

func newPlanner(t *testing.T, replies ...string) (*Planner, *codetools.Session, *scriptedLLM) {
	t.Helper()
	session, err := codetools.NewSession(codetools.Options{})
	require.NoError(t, err)
	reg := mcp.NewRegistry()
	mcp.RegisterDefaultTools(reg, mcp.Host{Session: session})
	llm := &scriptedLLM{replies: replies}
	return &Planner{
		LLM:          llm,
		Session:      session,
		Tools:        reg,
		OnToolResult: func(llmtool.ToolResult) {},
	}, session, llm
}

func TestPlanBuildsThroughTools(t *testing.T) {
	p, session, llm := newPlanner(t,
		`{"action":"tool","tool_name":"create_project","tool_input":{"name":"calc","description":"simple calculator"}}`,
		`{"action":"tool","tool_name":"add_function","tool_input":{"name":"add","description":"adds"}}`,
		`{"action":"tool","tool_name":"add_parameter","tool_input":{"function_path":"add","name":"a","description":"first"}}`,
		`{"action":"final","final":{"summary":"one function"}}`,
	)
	res, err := p.Plan(context.Background(), "a calculator that adds")
	require.NoError(t, err)
	require.Equal(t, "calc", res.Project)
	require.Equal(t, 3, res.ToolCalls)
	require.False(t, res.FromPlan)
	require.Equal(t, "one function", res.Summary)

	snap := session.Snapshot()
	require.NotNil(t, snap)
	require.Equal(t, 1, snap.FunctionCount())

	require.Contains(t, llm.prompts[0], "[PURPOSE]")
	require.Contains(t, llm.prompts[0], "a calculator that adds")
	require.NotContains(t, llm.prompts[0], `"name":"save"`)
}

func TestPlanAppliesFinalYAML(t *testing.T) {
	final, err := json.Marshal(map[string]any{
		"action": "final",
		"final": map[string]string{
			"plan": "```yaml\nname: todo\ndescription: todo list\ncode_structure:\n  - function:\n      name: add_item\n      description: adds an item\n      parameters:\n        - name: text\n          description: item text\n```",
		},
	})
	require.NoError(t, err)
	p, session, _ := newPlanner(t, string(final))

	res, err := p.Plan(context.Background(), "a todo list")
	require.NoError(t, err)
	require.True(t, res.FromPlan)
	require.Equal(t, "todo", res.Project)
	require.Contains(t, session.ShowStructure(), "param text: item text")
}

func TestPlanRejectsStorageTools(t *testing.T) {
	p, _, _ := newPlanner(t,
		`{"action":"tool","tool_name":"save","tool_input":{"file_path":"x.yaml"}}`,
	)
	_, err := p.Plan(context.Background(), "anything")
	require.True(t, errors.Is(err, llmtool.ErrToolNotAllowed), "got %v", err)
}

func TestPlanWithoutProject(t *testing.T) {
	p, _, _ := newPlanner(t, `{"action":"final","final":{"summary":"nothing"}}`)
	_, err := p.Plan(context.Background(), "anything")
	require.ErrorIs(t, err, ErrNoProject)
}

func TestPlanEmptySpecification(t *testing.T) {
	p, _, llm := newPlanner(t)
	_, err := p.Plan(context.Background(), "   ")
	require.Error(t, err)
	require.Empty(t, llm.prompts)
}
