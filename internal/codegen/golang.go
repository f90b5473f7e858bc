package codegen

import (
	"strings"
	"unicode"
)

const goModule = `
	{{range .Header}}{{.}}
	{{end}}package {{.Package}}
	{{- range .Functions}}

	{{.}}
	{{- end}}
`

const goFunction = `
	{{range .Doc}}{{.}}
	{{end}}{{if .Closure}}{{.Name}} := func{{else}}func {{.Name}}{{end}}({{.ParamList}}){{.Result}} {
	{{- range .Body}}
	{{pad .}}
	{{- end}}
	{{- range .Nested}}
	{{indent .}}
	{{- end}}
	{{- if .HasReturn}}
		return nil
	{{- end}}
	}
	{{- if .Closure}}
	_ = {{.Name}}
	{{- end}}
`

var goKeywords = keywords(
	"break", "case", "chan", "const", "continue", "default", "defer",
	"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return", "select", "struct",
	"switch", "type", "var",
)

func goTarget() *Target {
	t := &Target{
		Name:      "go",
		Extension: ".go",
		Indent:    "\t",
		Keywords:  goKeywords,
		Closures:  true,
		header: func(name, description string) []string {
			lines := []string{"// Package " + goPackageName(name) + " implements " + name + "."}
			if desc := splitLines(description); len(desc) > 0 {
				lines = append(lines, "//")
				lines = append(lines, goComment(desc)...)
			}
			return lines
		},
		doc:  goDoc,
		body: commentBody("//"),
		params: func(names []string) string {
			if len(names) == 0 {
				return ""
			}
			return strings.Join(names, ", ") + " any"
		},
		result: func(hasReturn bool) string {
			if hasReturn {
				return " any"
			}
			return ""
		},
		pkg: goPackageName,
	}
	return t.parse(goModule, goFunction)
}

func goDoc(d funcDoc) []string {
	var out []string
	section := func(lines ...string) {
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, lines...)
	}
	if desc := splitLines(d.Description); len(desc) > 0 {
		desc[0] = d.Name + " " + desc[0]
		section(desc...)
	}
	if len(d.Params) > 0 {
		lines := []string{"Parameters:"}
		for _, p := range d.Params {
			line := "  - " + p.Name
			if desc := strings.Join(splitLines(p.Description), " "); desc != "" {
				line += ": " + desc
			}
			lines = append(lines, line)
		}
		section(lines...)
	}
	if d.Returns != nil {
		ret := splitLines(*d.Returns)
		if len(ret) == 0 {
			section("Returns a value.")
		} else {
			ret[0] = "Returns: " + ret[0]
			section(ret...)
		}
	}
	return goComment(out)
}

func goComment(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			out[i] = "//"
			continue
		}
		out[i] = "// " + l
	}
	return out
}

func goPackageName(project string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(project) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "_"):
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "project"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "p" + name
	}
	if _, ok := goKeywords[name]; ok {
		name += "pkg"
	}
	return name
}
