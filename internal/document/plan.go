package document

import (
	"strings"

	"arna/internal/structure"
)

// ExtractPlan pulls a YAML document out of free-form model output. It
// prefers the first ```yaml (or ```yml) fenced block, then the first fenced
// block of any kind, and otherwise returns the trimmed text itself.
func ExtractPlan(text string) string {
	var (
		firstAny string
		foundAny bool
	)
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := 0; i < len(lines); i++ {
		open := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(open, "```") {
			continue
		}
		lang := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(open, "```")))
		var body []string
		j := i + 1
		for ; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "```" {
				break
			}
			body = append(body, lines[j])
		}
		block := strings.Join(body, "\n")
		if lang == "yaml" || lang == "yml" {
			return block
		}
		if !foundAny {
			firstAny, foundAny = block, true
		}
		i = j
	}
	if foundAny {
		return firstAny
	}
	return strings.TrimSpace(text)
}

// ParsePlan extracts and decodes a project plan from model output.
func ParsePlan(text string) (*structure.Tree, error) {
	plan := ExtractPlan(text)
	if strings.TrimSpace(plan) == "" {
		return nil, structure.Errorf(structure.KindParseError, "", "no plan found in text")
	}
	return Unmarshal([]byte(plan))
}
