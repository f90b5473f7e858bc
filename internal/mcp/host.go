package mcp

import (
	"context"
	"encoding/json"

	"arna/internal/codetools"
)

// Host wires the active editing session into the tools.
type Host struct {
	Session *codetools.Session
}

// Tool names exposed by RegisterDefaultTools.
const (
	ToolCreateProject = "create_project"
	ToolAddFunction   = "add_function"
	ToolAddParameter  = "add_parameter"
	ToolAddReturn     = "add_return"
	ToolAddLogic      = "add_logic"
	ToolShowStructure = "show_structure"
	ToolShowSummary   = "show_summary"
	ToolSave          = "save"
	ToolLoad          = "load"
	ToolGenerateCode  = "generate_code"
	ToolApplyPlan     = "apply_plan"
	ToolDocument      = "document"
)

// RegisterDefaultTools installs the structure tool set into a registry.
func RegisterDefaultTools(r *Registry, h Host) {
	if r == nil || h.Session == nil {
		return
	}
	s := h.Session
	r.Register(&funcTool[createProjectInput]{
		spec: ToolSpec{
			Name:         ToolCreateProject,
			Description:  "Start a new project, discarding the current one.",
			InputSchema:  schema(`{"type":"object","properties":{"name":{"type":"string"},"description":{"type":"string"}},"required":["name"]}`),
			OutputSchema: projectSchema,
			Mutates:      true,
		},
		call: func(_ context.Context, in createProjectInput) (any, error) {
			name, err := s.CreateProject(in.Name, in.Description)
			return projectOutput{Project: name}, err
		},
	})
	r.Register(&funcTool[addFunctionInput]{
		spec: ToolSpec{
			Name:         ToolAddFunction,
			Description:  "Add a function at the top level or under parent_path (names joined by '/' or '.').",
			InputSchema:  schema(`{"type":"object","properties":{"name":{"type":"string"},"description":{"type":"string"},"parent_path":{"type":"string"}},"required":["name"]}`),
			OutputSchema: pathSchema,
			Mutates:      true,
		},
		call: func(_ context.Context, in addFunctionInput) (any, error) {
			p, err := s.AddFunction(in.Name, in.Description, in.ParentPath)
			return pathOutput{Path: p}, err
		},
	})
	r.Register(&funcTool[addParameterInput]{
		spec: ToolSpec{
			Name:         ToolAddParameter,
			Description:  "Append a parameter to the function at function_path.",
			InputSchema:  schema(`{"type":"object","properties":{"function_path":{"type":"string"},"name":{"type":"string"},"description":{"type":"string"}},"required":["function_path","name"]}`),
			OutputSchema: pathSchema,
			Mutates:      true,
		},
		call: func(_ context.Context, in addParameterInput) (any, error) {
			p, err := s.AddParameter(in.FunctionPath, in.Name, in.Description)
			return pathOutput{Path: p}, err
		},
	})
	r.Register(&funcTool[describeInput]{
		spec: ToolSpec{
			Name:         ToolAddReturn,
			Description:  "Set or replace the return description of the function at function_path.",
			InputSchema:  describeSchema,
			OutputSchema: pathSchema,
			Mutates:      true,
		},
		call: func(_ context.Context, in describeInput) (any, error) {
			p, err := s.AddReturn(in.FunctionPath, in.Description)
			return pathOutput{Path: p}, err
		},
	})
	r.Register(&funcTool[describeInput]{
		spec: ToolSpec{
			Name:         ToolAddLogic,
			Description:  "Set or replace the logic description of the function at function_path.",
			InputSchema:  describeSchema,
			OutputSchema: pathSchema,
			Mutates:      true,
		},
		call: func(_ context.Context, in describeInput) (any, error) {
			p, err := s.AddLogic(in.FunctionPath, in.Description)
			return pathOutput{Path: p}, err
		},
	})
	r.Register(&funcTool[noInput]{
		spec: ToolSpec{
			Name:         ToolShowStructure,
			Description:  "Show the full project tree.",
			InputSchema:  emptySchema,
			OutputSchema: textSchema,
		},
		call: func(context.Context, noInput) (any, error) {
			return textOutput{Text: s.ShowStructure()}, nil
		},
	})
	r.Register(&funcTool[noInput]{
		spec: ToolSpec{
			Name:         ToolShowSummary,
			Description:  "Show the project name, description and function count.",
			InputSchema:  emptySchema,
			OutputSchema: textSchema,
		},
		call: func(context.Context, noInput) (any, error) {
			return textOutput{Text: s.ShowSummary()}, nil
		},
	})
	r.Register(&funcTool[noInput]{
		spec: ToolSpec{
			Name:         ToolDocument,
			Description:  "Return the project serialized as YAML.",
			InputSchema:  emptySchema,
			OutputSchema: textSchema,
		},
		call: func(context.Context, noInput) (any, error) {
			doc, err := s.Document()
			return textOutput{Text: doc}, err
		},
	})
	r.Register(&funcTool[fileInput]{
		spec: ToolSpec{
			Name:         ToolSave,
			Description:  "Save the project as a YAML document.",
			InputSchema:  fileSchema,
			OutputSchema: pathSchema,
		},
		call: func(ctx context.Context, in fileInput) (any, error) {
			p, err := s.Save(ctx, in.FilePath)
			return pathOutput{Path: p}, err
		},
	})
	r.Register(&funcTool[fileInput]{
		spec: ToolSpec{
			Name:         ToolLoad,
			Description:  "Replace the project with a saved YAML document.",
			InputSchema:  fileSchema,
			OutputSchema: projectSchema,
			Mutates:      true,
		},
		call: func(ctx context.Context, in fileInput) (any, error) {
			name, err := s.Load(ctx, in.FilePath)
			return projectOutput{Project: name}, err
		},
	})
	r.Register(&funcTool[generateInput]{
		spec: ToolSpec{
			Name:         ToolGenerateCode,
			Description:  "Generate source code for the project into output_path.",
			InputSchema:  schema(`{"type":"object","properties":{"output_path":{"type":"string"}},"required":["output_path"]}`),
			OutputSchema: schema(`{"type":"object","properties":{"files":{"type":"array","items":{"type":"string"}}}}`),
		},
		call: func(ctx context.Context, in generateInput) (any, error) {
			files, err := s.GenerateCode(ctx, in.OutputPath)
			return filesOutput{Files: files}, err
		},
	})
	r.Register(&funcTool[planInput]{
		spec: ToolSpec{
			Name:         ToolApplyPlan,
			Description:  "Replace the project with the YAML plan embedded in text.",
			InputSchema:  schema(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`),
			OutputSchema: projectSchema,
			Mutates:      true,
		},
		call: func(_ context.Context, in planInput) (any, error) {
			name, err := s.ApplyPlan(in.Text)
			return projectOutput{Project: name}, err
		},
	})
}

type noInput struct{}

type createProjectInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type addFunctionInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ParentPath  string `json:"parent_path"`
}

type addParameterInput struct {
	FunctionPath string `json:"function_path" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
}

type describeInput struct {
	FunctionPath string `json:"function_path" validate:"required"`
	Description  string `json:"description"`
}

type fileInput struct {
	FilePath string `json:"file_path" validate:"required"`
}

type generateInput struct {
	OutputPath string `json:"output_path" validate:"required"`
}

type planInput struct {
	Text string `json:"text" validate:"required"`
}

type projectOutput struct {
	Project string `json:"project"`
}

type pathOutput struct {
	Path string `json:"path"`
}

type textOutput struct {
	Text string `json:"text"`
}

type filesOutput struct {
	Files []string `json:"files"`
}

func schema(s string) json.RawMessage { return json.RawMessage(s) }

var (
	emptySchema    = schema(`{"type":"object","properties":{}}`)
	fileSchema     = schema(`{"type":"object","properties":{"file_path":{"type":"string"}},"required":["file_path"]}`)
	describeSchema = schema(`{"type":"object","properties":{"function_path":{"type":"string"},"description":{"type":"string"}},"required":["function_path"]}`)
	projectSchema  = schema(`{"type":"object","properties":{"project":{"type":"string"}}}`)
	pathSchema     = schema(`{"type":"object","properties":{"path":{"type":"string"}}}`)
	textSchema     = schema(`{"type":"object","properties":{"text":{"type":"string"}}}`)
)
