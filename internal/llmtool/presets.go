package llmtool

// PromptPreset holds reusable constraints and rules for structured prompts.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints and rules to a prompt spec.
func ApplyPresets(spec StructuredPromptSpec, presets ...PromptPreset) StructuredPromptSpec {
	if len(presets) == 0 {
		return spec
	}
	var merged PromptPreset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	return spec
}

// PresetActionEnvelope describes the tool/final JSON protocol of ToolLoop.
func PresetActionEnvelope() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Reply with exactly one JSON object and nothing else.",
			`To call a tool reply {"action":"tool","tool_name":"<name>","tool_input":{...}}.`,
			`When finished reply {"action":"final","final":{...}}.`,
		},
	}
}

// PresetToolsOnly keeps the model from describing edits it did not make.
func PresetToolsOnly() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Change the project only through the listed tools.",
			"If a tool result carries an error, fix the arguments and try again instead of repeating the same call.",
		},
	}
}
