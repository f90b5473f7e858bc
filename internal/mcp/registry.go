package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"arna/internal/structure"
)

// ToolSpec documents a tool's contract (name + schemas).
type ToolSpec struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	InputSchema  json.RawMessage `json:"input_schema,omitempty"`
	OutputSchema json.RawMessage `json:"output_schema,omitempty"`
	// Mutates marks tools that change the active project.
	Mutates bool `json:"mutates,omitempty"`
}

// Tool is a minimal in-process MCP-style tool.
type Tool interface {
	Spec() ToolSpec
	Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error)
}

// Result is the envelope returned to remote callers and to the LLM loop.
// Exactly one of Result and Error is set.
type Result struct {
	OK     bool             `json:"ok"`
	Result json.RawMessage  `json:"result,omitempty"`
	Error  *structure.Error `json:"error,omitempty"`
}

// Registry holds tool registrations and dispatches calls. Specs are
// listed in registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry and registers any provided tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: map[string]Tool{}}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds or replaces a tool by name.
func (r *Registry) Register(t Tool) {
	if r == nil || t == nil {
		return
	}
	spec := t.Spec()
	if spec.Name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tools == nil {
		r.tools = map[string]Tool{}
	}
	if _, exists := r.tools[spec.Name]; !exists {
		r.order = append(r.order, spec.Name)
	}
	r.tools[spec.Name] = t
}

// Lookup returns the spec of a registered tool.
func (r *Registry) Lookup(name string) (ToolSpec, bool) {
	if r == nil {
		return ToolSpec{}, false
	}
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return ToolSpec{}, false
	}
	return t.Spec(), true
}

// Call invokes a registered tool.
func (r *Registry) Call(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	if r == nil {
		return nil, fmt.Errorf("mcp: registry is nil")
	}
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, structure.Errorf(structure.KindNotFound, "", "unknown tool %q", name)
	}
	return t.Call(ctx, input)
}

// Invoke calls a tool and folds any failure, including a panic, into the
// result envelope.
func (r *Registry) Invoke(ctx context.Context, name string, input json.RawMessage) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("mcp: tool %s panicked: %v\n%s", name, p, debug.Stack())
			res = Result{Error: structure.Errorf(structure.KindInternal, "", "tool %s failed unexpectedly", name)}
		}
	}()
	out, err := r.Call(ctx, name, input)
	if err != nil {
		return Result{Error: structure.AsError(err)}
	}
	return Result{OK: true, Result: out}
}

// Specs returns the current tool specs in registration order.
func (r *Registry) Specs() []ToolSpec {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Spec())
	}
	return out
}
