package codegen

import (
	"strings"
	"text/template"

	"github.com/lithammer/dedent"
)

// Target describes one output language: its templates, indentation unit
// and reserved words.
type Target struct {
	Name      string
	Extension string
	Indent    string
	Keywords  map[string]struct{}
	// Closures marks targets that bind nested functions as local
	// variables in the parent's body.
	Closures bool

	tmpl *template.Template

	// language hooks used to build template views
	header func(name, description string) []string
	doc    func(d funcDoc) []string
	body   func(logic *string) []string
	params func(names []string) string
	result func(hasReturn bool) string
	pkg    func(projectName string) string
}

// funcDoc carries the text a target assembles into a doc comment.
type funcDoc struct {
	Name        string
	Description string
	Params      []paramDoc
	Returns     *string
}

type paramDoc struct {
	Name        string
	Description string
}

type moduleView struct {
	Package   string
	Header    []string
	Functions []string
}

type functionView struct {
	Name      string
	Closure   bool
	Params    []string
	ParamList string
	Result    string
	HasReturn bool
	Doc       []string
	Body      []string
	Nested    []string
}

func (t *Target) funcs() template.FuncMap {
	return template.FuncMap{
		"join": strings.Join,
		"pad": func(line string) string {
			if line == "" {
				return ""
			}
			return t.Indent + line
		},
		"indent": func(text string) string {
			lines := strings.Split(text, "\n")
			for i, l := range lines {
				if l != "" {
					lines[i] = t.Indent + l
				}
			}
			return strings.Join(lines, "\n")
		},
	}
}

func (t *Target) parse(module, function string) *Target {
	tmpl := template.New(t.Name).Funcs(t.funcs())
	template.Must(tmpl.New("module").Parse(strings.TrimPrefix(dedent.Dedent(module), "\n")))
	template.Must(tmpl.New("function").Parse(strings.TrimPrefix(dedent.Dedent(function), "\n")))
	t.tmpl = tmpl
	return t
}

// IsKeyword reports whether name is reserved in the target language.
func (t *Target) IsKeyword(name string) bool {
	_, ok := t.Keywords[name]
	return ok
}

func keywords(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// DefaultTarget is used when no target is configured.
const DefaultTarget = "python"

var targets = map[string]*Target{
	"python": pythonTarget(),
	"go":     goTarget(),
}

// Targets lists the supported target names.
func Targets() []string {
	return []string{"go", "python"}
}

// LookupTarget returns the named target.
func LookupTarget(name string) (*Target, bool) {
	t, ok := targets[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

func splitLines(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
