// Package codegen emits source text from a project tree. Each function is
// rendered through the target's template; nested functions are rendered
// first and placed, indented, inside their parent's body. Logic
// descriptions are prose and are emitted as comments only.
package codegen

import (
	"bytes"
	"strings"

	"arna/internal/structure"
)

// Options configures a Generator.
type Options struct {
	// Target names the output language; empty selects DefaultTarget.
	Target string
	// Strict requires every function to carry both a return and a logic
	// description.
	Strict bool
}

type Generator struct {
	target *Target
	strict bool
}

// New returns a generator for the configured target.
func New(opts Options) (*Generator, error) {
	name := opts.Target
	if strings.TrimSpace(name) == "" {
		name = DefaultTarget
	}
	t, ok := LookupTarget(name)
	if !ok {
		return nil, structure.Errorf(structure.KindInvalidArgument, "", "unknown generation target %q (supported: %s)", name, strings.Join(Targets(), ", "))
	}
	return &Generator{target: t, strict: opts.Strict}, nil
}

// Target returns the generator's output language.
func (g *Generator) Target() *Target { return g.target }

// FileName is the output file name for the project: the lower-cased
// project name with spaces replaced by underscores, plus the extension.
func (g *Generator) FileName(t *structure.Tree) string {
	base := strings.ToLower(strings.TrimSpace(t.Name))
	base = strings.NewReplacer(" ", "_", "/", "_", "\\", "_").Replace(base)
	if base == "" || base == "." || base == ".." {
		base = "project"
	}
	return base + g.target.Extension
}

// Validate checks every name against the target language and, in strict
// mode, the presence of return and logic descriptions.
func (g *Generator) Validate(t *structure.Tree) error {
	if t == nil {
		return structure.Errorf(structure.KindInvalidArgument, "", "no project to generate")
	}
	return t.Walk(func(f structure.Function, _ int) error {
		path := t.PathOf(f.ID)
		if !structure.ValidIdentifier(f.Name) || g.target.IsKeyword(f.Name) {
			return structure.Errorf(structure.KindInvalidArgument, path, "%q is not a valid %s function name", f.Name, g.target.Name)
		}
		for _, p := range f.Parameters {
			if !structure.ValidIdentifier(p.Name) || g.target.IsKeyword(p.Name) {
				return structure.Errorf(structure.KindInvalidArgument, path, "%q is not a valid %s parameter name", p.Name, g.target.Name)
			}
		}
		if err := g.validateClosure(t, f, path); err != nil {
			return err
		}
		if g.strict {
			if f.Return == nil {
				return structure.Errorf(structure.KindIncompleteDefinition, path, "function %q has no return description", f.Name)
			}
			if f.Logic == nil {
				return structure.Errorf(structure.KindIncompleteDefinition, path, "function %q has no logic description", f.Name)
			}
		}
		return nil
	})
}

// validateClosure rejects nested names that cannot be declared with :=
// in the parent's body: the blank identifier and the parent's own
// parameters, which already live in that scope.
func (g *Generator) validateClosure(t *structure.Tree, f structure.Function, path string) error {
	if !g.target.Closures || f.Parent == structure.RootID {
		return nil
	}
	if f.Name == "_" {
		return structure.Errorf(structure.KindInvalidArgument, path, "%q cannot name a nested %s function", f.Name, g.target.Name)
	}
	parent, _ := t.Function(f.Parent)
	for _, p := range parent.Parameters {
		if p.Name == f.Name {
			return structure.Errorf(structure.KindInvalidArgument, path, "nested function %q collides with a parameter of %q", f.Name, parent.Name)
		}
	}
	return nil
}

// Generate renders the whole project. The same tree always yields
// byte-identical output.
func (g *Generator) Generate(t *structure.Tree) (string, error) {
	if err := g.Validate(t); err != nil {
		return "", err
	}
	view := moduleView{
		Package: g.target.pkg(t.Name),
		Header:  g.target.header(t.Name, t.Description),
	}
	for _, id := range t.Roots() {
		text, err := g.function(t, id, false)
		if err != nil {
			return "", err
		}
		view.Functions = append(view.Functions, text)
	}
	out, err := g.execute("module", view)
	if err != nil {
		return "", err
	}
	return out + "\n", nil
}

func (g *Generator) function(t *structure.Tree, id structure.NodeID, nested bool) (string, error) {
	f, _ := t.Function(id)
	names := make([]string, 0, len(f.Parameters))
	doc := funcDoc{Name: f.Name, Description: f.Description}
	for _, p := range f.Parameters {
		names = append(names, p.Name)
		doc.Params = append(doc.Params, paramDoc{Name: p.Name, Description: p.Description})
	}
	var logic *string
	if f.Logic != nil {
		logic = &f.Logic.Description
	}
	if f.Return != nil {
		doc.Returns = &f.Return.Description
	}
	view := functionView{
		Name:      f.Name,
		Closure:   nested,
		Params:    names,
		ParamList: g.target.params(names),
		Result:    g.target.result(f.Return != nil),
		HasReturn: f.Return != nil,
		Doc:       g.target.doc(doc),
		Body:      g.target.body(logic),
	}
	for _, child := range f.Children {
		text, err := g.function(t, child, true)
		if err != nil {
			return "", err
		}
		view.Nested = append(view.Nested, text)
	}
	return g.execute("function", view)
}

func (g *Generator) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := g.target.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", structure.Wrap(structure.KindInternal, "", err, "render "+name+" template")
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
