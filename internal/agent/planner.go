// Package agent turns a prose specification into a project structure by
// letting an LLM drive the structure tools.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"arna/internal/codetools"
	"arna/internal/llm"
	"arna/internal/llmclient"
	"arna/internal/llmtool"
	"arna/internal/mcp"
	"arna/internal/structure"
)

// ErrNoProject is returned when the model finishes without building or
// returning a project.
var ErrNoProject = errors.New("agent: planner produced no project")

// PlanningTools are the tools offered to the model. Storage and code
// output stay with the caller.
var PlanningTools = []string{
	mcp.ToolCreateProject,
	mcp.ToolAddFunction,
	mcp.ToolAddParameter,
	mcp.ToolAddReturn,
	mcp.ToolAddLogic,
	mcp.ToolShowStructure,
	mcp.ToolShowSummary,
	mcp.ToolDocument,
}

const planSchema = `name: <name>
description: <description>
code_structure:
  - function:
      name: <name>
      description: <description>
      parameters:
        - name: <name>
          description: <description>
      returns:
        description: <description>
      logic:
        description: <description>
      code_structure:
        - nested functions`

var plannerPromptSpec = llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Plan the function structure of a program from the user's specification.",
	Background: "The structure is a project holding nested functions. Each function has parameters, an optional return description and an optional logic description. Code is generated from it later.",
	OutputFields: []llmtool.PromptField{
		{Name: "plan", Type: "string", Description: "Optional YAML document of the whole project. When set it replaces whatever the tools built."},
		{Name: "summary", Type: "string", Description: "One or two sentences on the design."},
	},
	Constraints: []string{
		"Function and parameter names are identifiers: letters, digits and underscores, not starting with a digit.",
		"Sibling functions and the parameters of one function have unique names.",
		"Function paths join names with '/', for example main/parse_args.",
	},
	Rules: []string{
		"Start with create_project, then add functions top-down.",
		"Give every function a return and a logic description.",
		"Check the result with show_structure before finishing.",
	},
	OutputFormat: "JSON only. A plan, when given, must follow this YAML layout:\n" + planSchema,
}, llmtool.PresetActionEnvelope(), llmtool.PresetToolsOnly())

// Planner runs the tool loop against a session.
type Planner struct {
	LLM      llmclient.LLMClient
	Session  *codetools.Session
	Tools    llmtool.ToolProvider
	MaxIters int
	// OnToolResult observes each tool call; nil logs it.
	OnToolResult func(llmtool.ToolResult)
}

// Result summarizes a planning run.
type Result struct {
	Project   string `json:"project"`
	Summary   string `json:"summary,omitempty"`
	ToolCalls int    `json:"tool_calls"`
	FromPlan  bool   `json:"from_plan"`
}

type finalOutput struct {
	Plan    string `json:"plan"`
	Summary string `json:"summary"`
}

// Plan asks the model to build a project for specification. A YAML plan in
// the final answer is applied to the session; otherwise the project built
// through tool calls is kept.
func (p *Planner) Plan(ctx context.Context, specification string) (Result, error) {
	var zero Result
	specification = strings.TrimSpace(specification)
	if specification == "" {
		return zero, structure.Errorf(structure.KindInvalidArgument, "", "specification is empty")
	}
	if p == nil || p.LLM == nil || p.Session == nil || p.Tools == nil {
		return zero, fmt.Errorf("agent: planner is not configured")
	}

	observe := p.OnToolResult
	if observe == nil {
		observe = logToolResult
	}
	loop := &llmtool.ToolLoop{
		LLM:          p.LLM,
		Tools:        p.Tools,
		MaxIters:     p.MaxIters,
		Allowed:      PlanningTools,
		OnToolResult: observe,
	}
	llmCtx := llm.WithWorker(ctx, "planner")
	payload := map[string]any{"specification": specification}
	raw, state, err := loop.Run(llmCtx, payload, llmtool.StructuredPromptBuilder(plannerPromptSpec))
	if err != nil {
		return zero, fmt.Errorf("agent: plan: %w", err)
	}

	res := Result{}
	if state != nil {
		res.ToolCalls = len(state.ToolResults)
	}
	var out finalOutput
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return zero, fmt.Errorf("agent: decode final output: %w", err)
		}
	}
	res.Summary = strings.TrimSpace(out.Summary)

	if strings.TrimSpace(out.Plan) != "" {
		name, err := p.Session.ApplyPlan(out.Plan)
		if err != nil {
			return zero, err
		}
		res.Project, res.FromPlan = name, true
		return res, nil
	}
	snap := p.Session.Snapshot()
	if snap == nil {
		return zero, ErrNoProject
	}
	res.Project = snap.Name
	return res, nil
}

func logToolResult(tr llmtool.ToolResult) {
	if tr.Error != nil {
		log.Printf("agent: %s failed: %v", tr.Name, tr.Error)
		return
	}
	log.Printf("agent: %s ok", tr.Name)
}
