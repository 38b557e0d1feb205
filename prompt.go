package riskeval

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/weave-labs/riskeval/eval"
)

// baselineSystem asks for the severity-marked output format the extractor
// understands. Both variants share it; the treatment variant appends the
// pattern primer on top.
const baselineSystem = `You are a senior risk analyst. Examine the described system or change and enumerate the concrete failure scenarios you foresee.

For each risk, start a line with its severity in capitals (CRITICAL, HIGH, MEDIUM, or LOW) followed by a confidence percentage in parentheses, then describe the scenario. If the input carries no meaningful risk, say so briefly instead of inventing findings.`

var userTemplate = template.Must(template.New("user").Parse(`Scope:
{{.Scope}}
{{- if .Context}}

Context:
{{.Context}}
{{- end}}
{{- if .Depth}}

Analysis depth: {{.Depth}}
{{- end}}`))

// BuildPrompts assembles the prompt pair for one variant of one case. The
// primer is opaque text handed in as configuration; the case mode only
// adjusts the instruction for how to apply it.
func BuildPrompts(c eval.Case, variant eval.Variant, primer string) (eval.VariantPrompts, error) {
	var user strings.Builder
	if err := userTemplate.Execute(&user, c.Input); err != nil {
		return eval.VariantPrompts{}, fmt.Errorf("render user prompt for %q: %w", c.Name, err)
	}

	system := baselineSystem
	if variant == eval.VariantTreatment && primer != "" {
		system = baselineSystem + "\n\n" + primerInstruction(c.Mode) + "\n\n" + primer
	}

	return eval.VariantPrompts{
		System: system,
		User:   user.String(),
	}, nil
}

func primerInstruction(mode eval.Mode) string {
	switch mode {
	case eval.ModePaired:
		return "Consider the following failure patterns in pairs, looking for risks that emerge from their interaction:"
	case eval.ModeCombined:
		return "Consider all of the following failure patterns together as one combined lens:"
	default:
		return "Consider each of the following failure patterns individually:"
	}
}
