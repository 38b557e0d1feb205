package eval

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
)

// WriteReport serializes the full report to a timestamped JSON artifact in
// dir, plus a schema sidecar so the artifact format stays verifiable after
// it drifts. Returns the artifact path.
func WriteReport(dir string, report *GlobalReport) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}

	stamp := report.FinishedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	base := fmt.Sprintf("riskeval-%s-%s", stamp.Format("20060102-150405"), report.RunID[:8])
	path := filepath.Join(dir, base+".json")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	if err := writeSchema(filepath.Join(dir, base+".schema.json")); err != nil {
		return path, fmt.Errorf("write report schema: %w", err)
	}

	return path, nil
}

// ReadReport loads a previously written artifact, for post-hoc audits of
// individual trials.
func ReadReport(path string) (*GlobalReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	var report GlobalReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &report, nil
}

// Summary renders the run-level outcome as plain text. Trials excluded for
// infrastructure reasons are reported separately from trials that genuinely
// scored zero.
func (r *GlobalReport) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Run %s (%s)\n", r.RunID, r.Generator)
	fmt.Fprintf(&sb, "Cases: %d", r.Cases)
	if len(r.SkippedCases) > 0 {
		fmt.Fprintf(&sb, " (skipped %d malformed: %s)", len(r.SkippedCases), strings.Join(r.SkippedCases, ", "))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Treatment wins: %d (%.1f%%)\n", r.Verdicts.TreatmentWins, r.TreatmentPct)
	fmt.Fprintf(&sb, "Baseline wins:  %d (%.1f%%)\n", r.Verdicts.BaselineWins, r.BaselinePct)
	fmt.Fprintf(&sb, "Ties:           %d (%.1f%%)\n", r.Verdicts.Ties, r.TiePct)

	if len(r.Domains) > 0 {
		sb.WriteString("\nBy domain:\n")
		tags := make([]string, 0, len(r.Domains))
		for tag := range r.Domains {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			c := r.Domains[tag]
			fmt.Fprintf(&sb, "  %-20s treatment %d / baseline %d / tie %d\n",
				tag, c.TreatmentWins, c.BaselineWins, c.Ties)
		}
	}

	fmt.Fprintf(&sb, "\nTrials excluded (infrastructure failure): %d\n", r.ExcludedTrials)
	fmt.Fprintf(&sb, "Trials failed (generator error/timeout):  %d\n", r.FailedTrials)
	fmt.Fprintf(&sb, "Trials with genuine zero score:           %d\n", r.ZeroScoreTrials)

	return sb.String()
}

// ReportSchema returns the JSON schema of the report artifact.
func ReportSchema() ([]byte, error) {
	schema := jsonschema.Reflect(&GlobalReport{})
	return json.MarshalIndent(schema, "", "  ")
}

func writeSchema(path string) error {
	data, err := ReportSchema()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
