package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"arna/internal/app"
	"arna/internal/config"
	"arna/internal/mcp"
	"arna/internal/structure"
)

type CLI struct {
	Workspace string `help:"Workspace root for documents and generated code (overrides ARNA_WORKSPACE)."`
	Store     string `help:"Document store backend: file, memory, s3 or postgres (overrides ARNA_DOC_STORE)."`
	Target    string `help:"Code generation target: python or go (overrides ARNA_CODEGEN_TARGET)."`

	Serve    ServeCmd    `cmd:"" help:"Serve the structure tools over HTTP and websocket."`
	Show     ShowCmd     `cmd:"" help:"Print the structure of a saved project."`
	Summary  SummaryCmd  `cmd:"" help:"Print the summary of a saved project."`
	Generate GenerateCmd `cmd:"" help:"Generate code from a saved project."`
	Call     CallCmd     `cmd:"" help:"Invoke one structure tool, optionally against a saved project."`
	Plan     PlanCmd     `cmd:"" help:"Plan a project from a prose specification with the configured LLM."`
}

func (c *CLI) apply(cfg *config.Config) {
	if v := strings.TrimSpace(c.Workspace); v != "" {
		cfg.Workspace = v
	}
	if v := strings.TrimSpace(c.Store); v != "" {
		cfg.DocStore.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(c.Target); v != "" {
		cfg.Codegen.Target = v
	}
}

type runtime struct {
	cfg *config.Config
	out io.Writer
}

func (r *runtime) open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, r.cfg)
}

// invoke runs a tool and turns a failed envelope into an error.
func invoke(ctx context.Context, a *app.App, tool string, input any) (json.RawMessage, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	res := a.Registry.Invoke(ctx, tool, raw)
	if !res.OK {
		return nil, res.Error
	}
	return res.Result, nil
}

func printText(w io.Writer, raw json.RawMessage) error {
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, out.Text)
	return err
}

type ServeCmd struct {
	Port string `help:"Listen address, e.g. :8081 (overrides PORT)."`
}

func (c *ServeCmd) Run(rt *runtime) error {
	if p := strings.TrimSpace(c.Port); p != "" {
		if !strings.Contains(p, ":") {
			p = ":" + p
		}
		rt.cfg.Port = p
	}
	a, err := rt.open(context.Background())
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("Server exiting")
	return nil
}

type ShowCmd struct {
	Doc string `arg:"" help:"Document key or path inside the workspace."`
}

func (c *ShowCmd) Run(rt *runtime) error {
	return viewDocument(rt, c.Doc, mcp.ToolShowStructure)
}

type SummaryCmd struct {
	Doc string `arg:"" help:"Document key or path inside the workspace."`
}

func (c *SummaryCmd) Run(rt *runtime) error {
	return viewDocument(rt, c.Doc, mcp.ToolShowSummary)
}

func viewDocument(rt *runtime, doc, tool string) error {
	ctx := context.Background()
	a, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if _, err := invoke(ctx, a, mcp.ToolLoad, map[string]string{"file_path": doc}); err != nil {
		return err
	}
	raw, err := invoke(ctx, a, tool, struct{}{})
	if err != nil {
		return err
	}
	return printText(rt.out, raw)
}

type GenerateCmd struct {
	Doc string `arg:"" help:"Document key or path inside the workspace."`
	Out string `arg:"" help:"Output directory inside the workspace."`
}

func (c *GenerateCmd) Run(rt *runtime) error {
	ctx := context.Background()
	a, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if _, err := invoke(ctx, a, mcp.ToolLoad, map[string]string{"file_path": c.Doc}); err != nil {
		return err
	}
	raw, err := invoke(ctx, a, mcp.ToolGenerateCode, map[string]string{"output_path": c.Out})
	if err != nil {
		return err
	}
	var out struct {
		Files []string `json:"files"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	for _, f := range out.Files {
		fmt.Fprintln(rt.out, f)
	}
	return nil
}

type CallCmd struct {
	Tool  string `arg:"" help:"Tool name, e.g. add_function."`
	Input string `arg:"" optional:"" help:"JSON input for the tool."`
	Doc   string `help:"Project document to load first; saved back when the tool changes the project."`
}

func (c *CallCmd) Run(rt *runtime) error {
	ctx := context.Background()
	a, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	spec, ok := a.Registry.Lookup(c.Tool)
	if !ok {
		return structure.Errorf(structure.KindNotFound, "", "unknown tool %q", c.Tool)
	}
	if c.Doc != "" {
		_, err := invoke(ctx, a, mcp.ToolLoad, map[string]string{"file_path": c.Doc})
		// A missing document is fine when the call starts a new project.
		if err != nil && !(errors.Is(err, structure.ErrNotFound) && c.Tool == mcp.ToolCreateProject) {
			return err
		}
	}

	res := a.Registry.Invoke(ctx, c.Tool, json.RawMessage(c.Input))
	enc := json.NewEncoder(rt.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if !res.OK {
		return res.Error
	}
	if spec.Mutates && c.Doc != "" {
		if _, err := invoke(ctx, a, mcp.ToolSave, map[string]string{"file_path": c.Doc}); err != nil {
			return err
		}
	}
	return nil
}

type PlanCmd struct {
	Specification string `arg:"" help:"Prose description of the program."`
	Out           string `help:"Document to save the planned project to." default:"plan.yaml"`
}

func (c *PlanCmd) Run(rt *runtime) error {
	ctx := context.Background()
	a, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Plan(ctx, c.Specification)
	if err != nil {
		return err
	}
	if _, err := invoke(ctx, a, mcp.ToolSave, map[string]string{"file_path": c.Out}); err != nil {
		return err
	}
	log.Printf("planned %q with %d tool calls, saved to %s", res.Project, res.ToolCalls, c.Out)
	raw, err := invoke(ctx, a, mcp.ToolShowStructure, struct{}{})
	if err != nil {
		return err
	}
	return printText(rt.out, raw)
}
