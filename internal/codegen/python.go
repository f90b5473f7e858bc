package codegen

import "strings"

const pythonModule = `
	"""
	{{join .Header "\n"}}
	"""
	{{- range .Functions}}


	{{.}}
	{{- end}}


	if __name__ == "__main__":
	    # Main execution
	    pass
`

const pythonFunction = `
	def {{.Name}}({{.ParamList}}):
	{{- if .Doc}}
	    """
	{{- range .Doc}}
	{{pad .}}
	{{- end}}
	    """
	{{- end}}
	{{- range .Body}}
	{{pad .}}
	{{- end}}
	{{- range .Nested}}

	{{indent .}}
	{{- end}}
	{{- if .Nested}}
	{{end}}
	    pass
`

func pythonTarget() *Target {
	t := &Target{
		Name:      "python",
		Extension: ".py",
		Indent:    "    ",
		Keywords: keywords(
			"False", "None", "True", "and", "as", "assert", "async", "await",
			"break", "class", "continue", "def", "del", "elif", "else", "except",
			"finally", "for", "from", "global", "if", "import", "in", "is",
			"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
			"while", "with", "yield",
		),
		header: func(name, description string) []string {
			lines := []string{pyEscape(name)}
			if desc := splitLines(description); len(desc) > 0 {
				lines = append(lines, "")
				for _, l := range desc {
					lines = append(lines, pyEscape(l))
				}
			}
			return lines
		},
		doc:    pythonDoc,
		body:   commentBody("#"),
		params: func(names []string) string { return strings.Join(names, ", ") },
		result: func(bool) string { return "" },
		pkg:    func(string) string { return "" },
	}
	return t.parse(pythonModule, pythonFunction)
}

func pythonDoc(d funcDoc) []string {
	var out []string
	section := func(lines ...string) {
		if len(out) > 0 {
			out = append(out, "")
		}
		out = append(out, lines...)
	}
	if desc := splitLines(d.Description); len(desc) > 0 {
		section(desc...)
	}
	if len(d.Params) > 0 {
		lines := []string{"Args:"}
		for _, p := range d.Params {
			line := "    " + p.Name
			if desc := strings.Join(splitLines(p.Description), " "); desc != "" {
				line += ": " + desc
			}
			lines = append(lines, line)
		}
		section(lines...)
	}
	if d.Returns != nil {
		lines := []string{"Returns:"}
		for _, l := range splitLines(*d.Returns) {
			lines = append(lines, "    "+l)
		}
		section(lines...)
	}
	for i, l := range out {
		out[i] = pyEscape(l)
	}
	return out
}

// pyEscape makes s safe inside a non-raw triple-quoted string.
func pyEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"""`, `\"\"\"`)
}

// commentBody renders the logic description as line comments. Logic is
// prose, so it is never turned into statements.
func commentBody(marker string) func(logic *string) []string {
	return func(logic *string) []string {
		var lines []string
		if logic != nil {
			lines = splitLines(*logic)
		}
		if len(lines) == 0 {
			return []string{marker + " Logic not described yet."}
		}
		out := make([]string, len(lines))
		for i, l := range lines {
			if strings.TrimSpace(l) == "" {
				out[i] = marker
				continue
			}
			out[i] = marker + " " + l
		}
		return out
	}
}
