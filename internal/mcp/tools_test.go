package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"arna/internal/codetools"
	"arna/internal/docstore"
	"arna/internal/safeio"
	"arna/internal/structure"
)

func setupRegistry(t *testing.T) (*Registry, *safeio.SafeFS) {
	t.Helper()
	fsys, err := safeio.NewSafeFS(t.TempDir())
	if err != nil {
		t.Fatalf("workspace fs: %v", err)
	}
	session, err := codetools.NewSession(codetools.Options{Store: docstore.NewFileStore(fsys), Output: fsys})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	r := NewRegistry()
	RegisterDefaultTools(r, Host{Session: session})
	return r, fsys
}

func mustInvoke(t *testing.T, r *Registry, name, input string) json.RawMessage {
	t.Helper()
	res := r.Invoke(context.Background(), name, json.RawMessage(input))
	if !res.OK {
		t.Fatalf("%s failed: %+v", name, res.Error)
	}
	return res.Result
}

func TestSpecsInRegistrationOrder(t *testing.T) {
	r, _ := setupRegistry(t)
	specs := r.Specs()
	want := []string{
		ToolCreateProject, ToolAddFunction, ToolAddParameter, ToolAddReturn, ToolAddLogic,
		ToolShowStructure, ToolShowSummary, ToolDocument, ToolSave, ToolLoad, ToolGenerateCode, ToolApplyPlan,
	}
	if len(specs) != len(want) {
		t.Fatalf("expected %d specs, got %d", len(want), len(specs))
	}
	for i, s := range specs {
		if s.Name != want[i] {
			t.Fatalf("spec %d = %s, want %s", i, s.Name, want[i])
		}
		if !json.Valid(s.InputSchema) {
			t.Fatalf("%s: input schema is not valid JSON", s.Name)
		}
	}
	if spec, ok := r.Lookup(ToolAddFunction); !ok || !spec.Mutates {
		t.Fatalf("add_function should be registered as mutating")
	}
	if spec, ok := r.Lookup(ToolShowSummary); !ok || spec.Mutates {
		t.Fatalf("show_summary should be read-only")
	}
}

func TestCalcThroughTools(t *testing.T) {
	r, _ := setupRegistry(t)
	mustInvoke(t, r, ToolCreateProject, `{"name":"calc","description":"simple calculator"}`)
	raw := mustInvoke(t, r, ToolAddFunction, `{"name":"add","description":"adds two numbers"}`)
	var p pathOutput
	if err := json.Unmarshal(raw, &p); err != nil || p.Path != "add" {
		t.Fatalf("add_function result = %s (%v)", raw, err)
	}
	mustInvoke(t, r, ToolAddParameter, `{"function_path":"add","name":"a","description":"first operand"}`)
	mustInvoke(t, r, ToolAddParameter, `{"function_path":"add","name":"b","description":"second operand"}`)
	mustInvoke(t, r, ToolAddReturn, `{"function_path":"add","description":"sum of a and b"}`)

	var summary textOutput
	if err := json.Unmarshal(mustInvoke(t, r, ToolShowSummary, ``), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Text != "Project: calc\nDescription: simple calculator\nFunctions: 1" {
		t.Fatalf("unexpected summary %q", summary.Text)
	}

	var files filesOutput
	if err := json.Unmarshal(mustInvoke(t, r, ToolGenerateCode, `{"output_path":"out"}`), &files); err != nil {
		t.Fatalf("decode files: %v", err)
	}
	if len(files.Files) != 1 {
		t.Fatalf("expected one generated file, got %v", files.Files)
	}

	mustInvoke(t, r, ToolSave, `{"file_path":"calc.yaml"}`)
	mustInvoke(t, r, ToolCreateProject, `{"name":"other"}`)
	mustInvoke(t, r, ToolLoad, `{"file_path":"calc.yaml"}`)
	var doc textOutput
	if err := json.Unmarshal(mustInvoke(t, r, ToolDocument, `{}`), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if want := "name: calc\n"; len(doc.Text) < len(want) || doc.Text[:len(want)] != want {
		t.Fatalf("document does not start with %q: %q", want, doc.Text)
	}
}

func TestInvokeReportsStructuredErrors(t *testing.T) {
	r, _ := setupRegistry(t)
	mustInvoke(t, r, ToolCreateProject, `{"name":"calc"}`)
	mustInvoke(t, r, ToolAddFunction, `{"name":"add"}`)
	mustInvoke(t, r, ToolAddParameter, `{"function_path":"add","name":"a"}`)

	cases := []struct {
		name  string
		tool  string
		input string
		kind  structure.Kind
		path  string
	}{
		{"duplicate parameter", ToolAddParameter, `{"function_path":"add","name":"a","description":"dup"}`, structure.KindDuplicateName, "add"},
		{"missing parent", ToolAddFunction, `{"name":"x","parent_path":"add/nope"}`, structure.KindNotFound, "add/nope"},
		{"missing required argument", ToolAddParameter, `{"function_path":"add"}`, structure.KindInvalidArgument, ""},
		{"unknown argument", ToolAddReturn, `{"function_path":"add","bogus":1}`, structure.KindInvalidArgument, ""},
		{"malformed json", ToolAddLogic, `{"function_path":`, structure.KindInvalidArgument, ""},
		{"unknown tool", "delete_function", `{}`, structure.KindNotFound, ""},
		{"missing document", ToolLoad, `{"file_path":"nope.yaml"}`, structure.KindNotFound, "nope.yaml"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Invoke(context.Background(), tc.tool, json.RawMessage(tc.input))
			if res.OK || res.Error == nil {
				t.Fatalf("expected failure, got %s", res.Result)
			}
			if res.Error.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s (%v)", res.Error.Kind, tc.kind, res.Error)
			}
			if res.Error.Path != tc.path {
				t.Fatalf("path = %q, want %q", res.Error.Path, tc.path)
			}
		})
	}
}

func TestResultEnvelopeJSON(t *testing.T) {
	r, _ := setupRegistry(t)
	res := r.Invoke(context.Background(), ToolAddFunction, json.RawMessage(`{"name":"f"}`))
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["ok"] != false {
		t.Fatalf("expected ok=false, got %v", decoded["ok"])
	}
	errObj, _ := decoded["error"].(map[string]any)
	if errObj["kind"] != string(structure.KindInvalidArgument) {
		t.Fatalf("unexpected error object %v", errObj)
	}
	if _, ok := decoded["result"]; ok {
		t.Fatalf("failed result should omit result field")
	}
}

type panicTool struct{}

func (panicTool) Spec() ToolSpec { return ToolSpec{Name: "boom"} }

func (panicTool) Call(context.Context, json.RawMessage) (json.RawMessage, error) {
	panic("boom")
}

func TestInvokeRecoversPanics(t *testing.T) {
	r := NewRegistry(panicTool{})
	res := r.Invoke(context.Background(), "boom", nil)
	if res.OK || res.Error == nil || res.Error.Kind != structure.KindInternal {
		t.Fatalf("expected internal error, got %+v", res)
	}
}
