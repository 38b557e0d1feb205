package eval

// Verdict is the per-case outcome of the A/B comparison.
type Verdict string

const (
	VerdictTreatmentWin Verdict = "treatment_win"
	VerdictBaselineWin  Verdict = "baseline_win"
	VerdictTie          Verdict = "tie"
)

// Compare decides a case verdict from the two variants' aggregate stats.
//
// The comparison uses pass rates, not raw scores: free-text scoring is
// noisy enough that small score deltas carry no signal, so ties are meant
// to dominate narrow numeric differences. Equal pass rates tie, including
// the case where both variants failed every trial (neither demonstrated
// superiority). The function is symmetric: swapping the arguments mirrors
// the verdict.
//
// A variant with no included trials has an undefined pass rate, not a zero
// one: all its calls were excluded as infrastructure failures, and reading
// that as a loss would let throttling decide the verdict. The comparison
// abstains and ties.
func Compare(treatment, baseline Stats) Verdict {
	if treatment.Trials == 0 || baseline.Trials == 0 {
		return VerdictTie
	}
	switch {
	case treatment.PassRate > baseline.PassRate:
		return VerdictTreatmentWin
	case baseline.PassRate > treatment.PassRate:
		return VerdictBaselineWin
	default:
		return VerdictTie
	}
}
