package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMarkedBlocks(t *testing.T) {
	raw := `Here is my analysis.

**CRITICAL** (92%): Payment retries are not idempotent, so a network
blip can double-charge a customer.

HIGH [70%] - The webhook handler trusts the caller's amount field.

LOW: Log volume may grow unbounded.`

	findings := Extract(raw, Vocabulary{})
	require.Len(t, findings, 3)

	assert.Equal(t, SeverityCritical, findings[0].Severity)
	assert.InDelta(t, 0.92, findings[0].Confidence, 1e-9)
	assert.Contains(t, findings[0].Scenario, "double-charge")

	assert.Equal(t, SeverityHigh, findings[1].Severity)
	assert.InDelta(t, 0.70, findings[1].Confidence, 1e-9)

	// No figure on the LOW marker: band midpoint.
	assert.Equal(t, SeverityLow, findings[2].Severity)
	assert.InDelta(t, 0.25, findings[2].Confidence, 1e-9)
}

func TestExtractConfidenceDefaults(t *testing.T) {
	tests := []struct {
		marker string
		sev    Severity
		conf   float64
	}{
		{"CRITICAL: no number here", SeverityCritical, 0.90},
		{"High: no number here", SeverityHigh, 0.75},
		{"MEDIUM risk of drift", SeverityMedium, 0.50},
		{"low impact only", SeverityLow, 0.25},
	}

	for _, tt := range tests {
		findings := Extract(tt.marker, Vocabulary{})
		require.Len(t, findings, 1, tt.marker)
		assert.Equal(t, tt.sev, findings[0].Severity, tt.marker)
		assert.InDelta(t, tt.conf, findings[0].Confidence, 1e-9, tt.marker)
	}
}

func TestExtractBlockBoundaries(t *testing.T) {
	raw := `CRITICAL (90%): first scenario
continuation line of the first block

HIGH (65%): second scenario`

	findings := Extract(raw, Vocabulary{})
	require.Len(t, findings, 2)
	assert.Contains(t, findings[0].Scenario, "continuation line")
	assert.NotContains(t, findings[0].Scenario, "second scenario")
}

func TestExtractCategoryTagging(t *testing.T) {
	raw := `CRITICAL (88%): A race condition in the ledger update allows
concurrent withdrawals to overdraw the account.`

	vocab := Vocabulary{
		Categories: []string{"concurrency", "Ledger"},
		Keywords:   []string{"overdraw", "phishing"},
	}

	findings := Extract(raw, vocab)
	require.Len(t, findings, 1)
	assert.ElementsMatch(t, []string{"ledger", "overdraw"}, findings[0].Categories)
}

func TestExtractDegradesToSingleFinding(t *testing.T) {
	raw := "The system looks mostly fine, though the cache could go stale."

	findings := Extract(raw, Vocabulary{Categories: []string{"cache"}})
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityMedium, findings[0].Severity)
	assert.InDelta(t, 0.50, findings[0].Confidence, 1e-9)
	assert.Equal(t, raw, findings[0].Scenario)
	assert.Equal(t, []string{"cache"}, findings[0].Categories)
}

func TestExtractFallbackInfersSeverityFromConfidence(t *testing.T) {
	raw := "I am about 95% sure the migration will lock the orders table."

	findings := Extract(raw, Vocabulary{})
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityCritical, findings[0].Severity)
	assert.InDelta(t, 0.95, findings[0].Confidence, 1e-9)
}

func TestExtractBlankInput(t *testing.T) {
	assert.Empty(t, Extract("", Vocabulary{}))
	assert.Empty(t, Extract("   \n\t  ", Vocabulary{}))
}

func TestExtractNeverPanicsOnAdversarialInput(t *testing.T) {
	inputs := []string{
		"CRITICAL CRITICAL CRITICAL",
		"((((90%))))",
		"[HIGH [nested [markers]]] (12345%)",
		"critical\nhigh\nmedium\nlow",
		"\x00\x01 CRITICAL (50%)",
	}
	for _, raw := range inputs {
		assert.NotPanics(t, func() {
			Extract(raw, Vocabulary{Categories: []string{"x"}})
		}, raw)
	}
}

func TestExtractOutOfRangePercentUsesDefault(t *testing.T) {
	findings := Extract("HIGH (250%): impossible confidence", Vocabulary{})
	require.Len(t, findings, 1)
	assert.InDelta(t, 0.75, findings[0].Confidence, 1e-9)
}
