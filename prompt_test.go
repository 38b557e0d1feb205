package riskeval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/riskeval/eval"
)

func TestBuildPromptsBaselineOmitsPrimer(t *testing.T) {
	c := eval.Case{
		Name:  "x",
		Input: eval.CaseInput{Scope: "login flow", Context: "SSO rollout", Depth: "deep"},
	}

	prompts, err := BuildPrompts(c, eval.VariantBaseline, "PRIMER BLOCK")
	require.NoError(t, err)

	assert.NotContains(t, prompts.System, "PRIMER BLOCK")
	assert.Contains(t, prompts.User, "login flow")
	assert.Contains(t, prompts.User, "SSO rollout")
	assert.Contains(t, prompts.User, "Analysis depth: deep")
}

func TestBuildPromptsTreatmentAppendsPrimer(t *testing.T) {
	c := eval.Case{Name: "x", Input: eval.CaseInput{Scope: "login flow"}}

	prompts, err := BuildPrompts(c, eval.VariantTreatment, "PRIMER BLOCK")
	require.NoError(t, err)

	assert.Contains(t, prompts.System, "PRIMER BLOCK")
	assert.Contains(t, prompts.System, "individually")
	// The shared instruction stays in front of the primer.
	assert.Contains(t, prompts.System, "senior risk analyst")
}

func TestBuildPromptsModeSelectsInstruction(t *testing.T) {
	c := eval.Case{Name: "x", Mode: eval.ModePaired, Input: eval.CaseInput{Scope: "s"}}
	prompts, err := BuildPrompts(c, eval.VariantTreatment, "P")
	require.NoError(t, err)
	assert.Contains(t, prompts.System, "in pairs")

	c.Mode = eval.ModeCombined
	prompts, err = BuildPrompts(c, eval.VariantTreatment, "P")
	require.NoError(t, err)
	assert.Contains(t, prompts.System, "combined lens")
}

func TestBuildPromptsTreatmentWithoutPrimerEqualsBaseline(t *testing.T) {
	c := eval.Case{Name: "x", Input: eval.CaseInput{Scope: "s"}}

	treatment, err := BuildPrompts(c, eval.VariantTreatment, "")
	require.NoError(t, err)
	baseline, err := BuildPrompts(c, eval.VariantBaseline, "")
	require.NoError(t, err)

	assert.Equal(t, baseline, treatment)
}

func TestBuildPromptsOmitsEmptySections(t *testing.T) {
	c := eval.Case{Name: "x", Input: eval.CaseInput{Scope: "only scope"}}
	prompts, err := BuildPrompts(c, eval.VariantBaseline, "")
	require.NoError(t, err)

	assert.NotContains(t, prompts.User, "Context:")
	assert.NotContains(t, prompts.User, "Analysis depth:")
}
