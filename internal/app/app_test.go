package app

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arna/internal/config"
	"arna/internal/mcp"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	return &config.Config{
		Port:      ":0",
		Env:       "test",
		Workspace: t.TempDir(),
		DocStore:  config.DocStoreConfig{Backend: backend, CacheSize: 8},
		Codegen:   config.CodegenConfig{Target: "python"},
	}
}

func invoke(t *testing.T, a *App, tool, input string) mcp.Result {
	t.Helper()
	return a.Registry.Invoke(context.Background(), tool, json.RawMessage(input))
}

func TestNewFileBackendSavesUnderWorkspace(t *testing.T) {
	cfg := testConfig(t, config.StoreFile)
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if res := invoke(t, a, mcp.ToolCreateProject, `{"name":"calc"}`); !res.OK {
		t.Fatalf("create_project: %+v", res.Error)
	}
	if res := invoke(t, a, mcp.ToolSave, `{"file_path":"docs/calc.yaml"}`); !res.OK {
		t.Fatalf("save: %+v", res.Error)
	}
	if _, err := os.Stat(filepath.Join(cfg.Workspace, "docs", "calc.yaml")); err != nil {
		t.Fatalf("expected saved document: %v", err)
	}
	if res := invoke(t, a, mcp.ToolGenerateCode, `{"output_path":"out"}`); !res.OK {
		t.Fatalf("generate_code: %+v", res.Error)
	}
	if _, err := os.Stat(filepath.Join(cfg.Workspace, "out", "calc.py")); err != nil {
		t.Fatalf("expected generated file: %v", err)
	}
}

func TestFileBackendLoadSeesDiskEdits(t *testing.T) {
	cfg := testConfig(t, config.StoreFile)
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	for _, call := range []struct{ tool, input string }{
		{mcp.ToolCreateProject, `{"name":"calc"}`},
		{mcp.ToolSave, `{"file_path":"calc.yaml"}`},
		{mcp.ToolCreateProject, `{"name":"edited"}`},
		{mcp.ToolSave, `{"file_path":"edited.yaml"}`},
		{mcp.ToolLoad, `{"file_path":"./calc.yaml"}`},
	} {
		if res := invoke(t, a, call.tool, call.input); !res.OK {
			t.Fatalf("%s: %+v", call.tool, res.Error)
		}
	}

	edited, err := os.ReadFile(filepath.Join(cfg.Workspace, "edited.yaml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Workspace, "calc.yaml"), edited, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if res := invoke(t, a, mcp.ToolLoad, `{"file_path":"calc.yaml"}`); !res.OK {
		t.Fatalf("load: %+v", res.Error)
	}
	res := invoke(t, a, mcp.ToolShowSummary, `{}`)
	if !res.OK || !strings.Contains(string(res.Result), "edited") {
		t.Fatalf("expected the on-disk edit to be loaded, got %s", res.Result)
	}
}

func TestNewS3FallsBackToFile(t *testing.T) {
	cfg := testConfig(t, config.StoreS3)
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if res := invoke(t, a, mcp.ToolCreateProject, `{"name":"p"}`); !res.OK {
		t.Fatalf("create_project: %+v", res.Error)
	}
	if res := invoke(t, a, mcp.ToolSave, `{"file_path":"p.yaml"}`); !res.OK {
		t.Fatalf("save: %+v", res.Error)
	}
	if _, err := os.Stat(filepath.Join(cfg.Workspace, "p.yaml")); err != nil {
		t.Fatalf("expected file fallback: %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(context.Background(), testConfig(t, "floppy")); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if _, err := New(context.Background(), testConfig(t, config.StorePostgres)); err == nil {
		t.Fatalf("expected error for postgres without dsn")
	}
	cfg := testConfig(t, config.StoreMemory)
	cfg.Codegen.Target = "cobol"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown codegen target")
	}
	cfg = testConfig(t, config.StoreMemory)
	cfg.LLM.Provider = "mystery"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown llm provider")
	}
}

func TestPlanWithoutProvider(t *testing.T) {
	a, err := New(context.Background(), testConfig(t, config.StoreMemory))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if a.Planner != nil {
		t.Fatalf("planner should be nil without a provider")
	}
	if _, err := a.Plan(context.Background(), "anything"); !errors.Is(err, ErrNoPlanner) {
		t.Fatalf("expected ErrNoPlanner, got %v", err)
	}
}
