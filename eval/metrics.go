package eval

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Coefficient is a float that survives JSON encoding when the underlying
// value is infinite or NaN (CV is undefined at mean 0; reports carry "inf"
// rather than crashing the encoder).
type Coefficient float64

func (c Coefficient) MarshalJSON() ([]byte, error) {
	v := float64(c)
	if math.IsInf(v, 1) {
		return json.Marshal("inf")
	}
	if math.IsInf(v, -1) {
		return json.Marshal("-inf")
	}
	if math.IsNaN(v) {
		return json.Marshal("nan")
	}
	return json.Marshal(v)
}

func (c *Coefficient) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "inf":
			*c = Coefficient(math.Inf(1))
		case "-inf":
			*c = Coefficient(math.Inf(-1))
		case "nan":
			*c = Coefficient(math.NaN())
		default:
			return fmt.Errorf("unknown coefficient value %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Coefficient(v)
	return nil
}

// Stats aggregates one variant's trials for one case. All fields are
// computed over included trials only; excluded trials (rate-limit
// exhaustion) are counted separately and never touch the statistics.
type Stats struct {
	Trials   int         `json:"trials"`
	Excluded int         `json:"excluded"`
	Passes   int         `json:"passes"`
	PassRate float64     `json:"pass_rate"`
	PassAt1  bool        `json:"pass_at_1"`
	PassAtK  bool        `json:"pass_at_k"`
	PassPowK bool        `json:"pass_pow_k"`
	Mean     float64     `json:"mean"`
	StdDev   float64     `json:"stddev"`
	CV       Coefficient `json:"cv"`
}

// ComputeStats derives consistency statistics from a trial set.
// pass@1 is whether the first included trial passed, pass@k whether any
// did, pass^k whether all did; by construction pass^k <= pass@1 <= pass@k.
func ComputeStats(trials []Trial) Stats {
	var stats Stats

	included := make([]Trial, 0, len(trials))
	for _, t := range trials {
		if t.Excluded {
			stats.Excluded++
			continue
		}
		included = append(included, t)
	}

	stats.Trials = len(included)
	if len(included) == 0 {
		return stats
	}

	stats.PassAt1 = included[0].Passed
	stats.PassPowK = true

	var sum float64
	for _, t := range included {
		sum += t.Score
		if t.Passed {
			stats.Passes++
			stats.PassAtK = true
		} else {
			stats.PassPowK = false
		}
	}

	n := float64(len(included))
	stats.PassRate = float64(stats.Passes) / n
	stats.Mean = sum / n

	var sq float64
	for _, t := range included {
		d := t.Score - stats.Mean
		sq += d * d
	}
	stats.StdDev = math.Sqrt(sq / n)

	switch {
	case stats.Mean > 0:
		stats.CV = Coefficient(stats.StdDev / stats.Mean)
	case stats.StdDev > 0:
		stats.CV = Coefficient(math.Inf(1))
	default:
		stats.CV = 0
	}

	return stats
}

// CaseResult aggregates both variants' trials for one case. The verdict is
// derived from the stats by Compare, never hand-set.
type CaseResult struct {
	CaseName        string   `json:"case"`
	DomainTags      []string `json:"domains,omitempty"`
	TreatmentTrials []Trial  `json:"treatment_trials"`
	BaselineTrials  []Trial  `json:"baseline_trials"`
	TreatmentStats  Stats    `json:"treatment_stats"`
	BaselineStats   Stats    `json:"baseline_stats"`
	Verdict         Verdict  `json:"verdict"`
}

// NewCaseResult computes stats and verdict from the two trial sets.
func NewCaseResult(c Case, treatment, baseline []Trial) CaseResult {
	tStats := ComputeStats(treatment)
	bStats := ComputeStats(baseline)
	return CaseResult{
		CaseName:        c.Name,
		DomainTags:      c.DomainTags,
		TreatmentTrials: treatment,
		BaselineTrials:  baseline,
		TreatmentStats:  tStats,
		BaselineStats:   bStats,
		Verdict:         Compare(tStats, bStats),
	}
}

// VerdictCounts is a win/tie/loss tally.
type VerdictCounts struct {
	TreatmentWins int `json:"treatment_wins"`
	BaselineWins  int `json:"baseline_wins"`
	Ties          int `json:"ties"`
}

func (v *VerdictCounts) add(verdict Verdict) {
	switch verdict {
	case VerdictTreatmentWin:
		v.TreatmentWins++
	case VerdictBaselineWin:
		v.BaselineWins++
	case VerdictTie:
		v.Ties++
	}
}

// GlobalReport is the full artifact of one harness run: every trial with
// its raw response, per-case stats, and the verdict distribution, enough
// to reconstruct any summary without re-running.
type GlobalReport struct {
	RunID      string    `json:"run_id"`
	Generator  string    `json:"generator"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Cases        int                      `json:"cases"`
	SkippedCases []string                 `json:"skipped_cases,omitempty"`
	Verdicts     VerdictCounts            `json:"verdicts"`
	TreatmentPct float64                  `json:"treatment_win_pct"`
	BaselinePct  float64                  `json:"baseline_win_pct"`
	TiePct       float64                  `json:"tie_pct"`
	Domains      map[string]VerdictCounts `json:"domains,omitempty"`

	// ExcludedTrials counts infrastructure failures (rate-limit
	// exhaustion), kept apart from ZeroScoreTrials, which are genuine
	// zero-scoring responses. Conflating the two has historically
	// skewed win/tie/loss distributions.
	ExcludedTrials  int `json:"excluded_trials"`
	FailedTrials    int `json:"failed_trials"`
	ZeroScoreTrials int `json:"zero_score_trials"`

	Results []CaseResult `json:"results"`
}

// Aggregate folds case results into the global verdict distribution and
// domain breakdown.
func Aggregate(results []CaseResult) *GlobalReport {
	report := &GlobalReport{
		Cases:   len(results),
		Domains: make(map[string]VerdictCounts),
		Results: results,
	}

	for _, r := range results {
		report.Verdicts.add(r.Verdict)
		for _, tag := range r.DomainTags {
			counts := report.Domains[tag]
			counts.add(r.Verdict)
			report.Domains[tag] = counts
		}
		report.tallyTrials(r.TreatmentTrials)
		report.tallyTrials(r.BaselineTrials)
	}

	if report.Cases > 0 {
		n := float64(report.Cases)
		report.TreatmentPct = 100 * float64(report.Verdicts.TreatmentWins) / n
		report.BaselinePct = 100 * float64(report.Verdicts.BaselineWins) / n
		report.TiePct = 100 * float64(report.Verdicts.Ties) / n
	}

	return report
}

func (r *GlobalReport) tallyTrials(trials []Trial) {
	for _, t := range trials {
		switch {
		case t.Excluded:
			r.ExcludedTrials++
		case t.FailureKind != FailureNone:
			r.FailedTrials++
		case t.Score == 0:
			r.ZeroScoreTrials++
		}
	}
}
