package eval

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *GlobalReport {
	results := []CaseResult{
		NewCaseResult(
			Case{Name: "sample", DomainTags: []string{"fintech"}},
			[]Trial{
				{CaseName: "sample", Variant: VariantTreatment, RawResponse: "CRITICAL (90%): x", Score: 1, Passed: true},
				{CaseName: "sample", Variant: VariantTreatment, Excluded: true, FailureKind: FailureRateLimit, Err: "throttled"},
			},
			[]Trial{
				{CaseName: "sample", Variant: VariantBaseline, RawResponse: "nothing found", Score: 0, Passed: false},
			},
		),
	}
	report := Aggregate(results)
	report.Generator = "mock"
	report.StartedAt = time.Now().Add(-time.Minute)
	report.FinishedAt = time.Now()
	return report
}

func TestWriteAndReadReport(t *testing.T) {
	dir := t.TempDir()
	report := sampleReport()

	path, err := WriteReport(dir, report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "riskeval-"))
	assert.NotEmpty(t, report.RunID)

	back, err := ReadReport(path)
	require.NoError(t, err)

	assert.Equal(t, report.RunID, back.RunID)
	assert.Equal(t, report.Verdicts, back.Verdicts)
	require.Len(t, back.Results, 1)

	// Raw responses survive the round trip so trials stay auditable.
	assert.Equal(t, "CRITICAL (90%): x", back.Results[0].TreatmentTrials[0].RawResponse)
	assert.True(t, back.Results[0].TreatmentTrials[1].Excluded)
	assert.Equal(t, FailureRateLimit, back.Results[0].TreatmentTrials[1].FailureKind)
}

func TestWriteReportSchemaSidecar(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteReport(dir, sampleReport())
	require.NoError(t, err)

	schemaPath := strings.TrimSuffix(path, ".json") + ".schema.json"
	data, err := os.ReadFile(schemaPath)
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(data, &schema))
}

func TestReportSummarySeparatesFailureClasses(t *testing.T) {
	report := sampleReport()
	report.RunID = "test-run"
	summary := report.Summary()

	assert.Contains(t, summary, "Trials excluded (infrastructure failure): 1")
	assert.Contains(t, summary, "Trials with genuine zero score:           1")
	assert.Contains(t, summary, "Treatment wins: 1")
	assert.Contains(t, summary, "fintech")
}

func TestReadReportMissingFile(t *testing.T) {
	_, err := ReadReport(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
