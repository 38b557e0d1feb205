package eval

import "strings"

// Score evaluates extracted findings against a case's expected criteria.
// The score is the mean of the applicable criterion ratios, each in [0,1],
// so the result is bounded in [0,1]. threshold is the pass fraction in
// [0,1] (see Case.Threshold).
//
// A case with empty criteria always scores 1.0 and passes: negative cases
// exist to confirm the system stays quiet on low-risk input, and silence
// must not read as failure.
func Score(findings []Finding, expected Expected, threshold float64) (float64, bool) {
	if expected.Empty() {
		return 1.0, true
	}

	ratios := []float64{severityFloorRatio(findings, expected)}
	if len(expected.Categories) > 0 {
		ratios = append(ratios, coverageRatio(expected.Categories, findingTags(findings)))
	}
	if len(expected.Keywords) > 0 {
		ratios = append(ratios, keywordRatio(expected.Keywords, findings))
	}

	var sum float64
	for _, r := range ratios {
		sum += r
	}
	score := sum / float64(len(ratios))

	return score, score >= threshold
}

// severityFloorRatio gives partial credit per satisfied floor. Only floors
// with a non-zero requirement count: a zero floor is vacuous and must not
// pad the score, so requiring two criticals and finding none is 0, not 2/3.
// With no non-zero floors the ratio is trivially 1.
func severityFloorRatio(findings []Finding, expected Expected) float64 {
	var critical, high int
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			critical++
		case SeverityHigh:
			high++
		}
	}
	total := len(findings)

	required, satisfied := 0, 0
	if expected.MinCritical > 0 {
		required++
		if critical >= expected.MinCritical {
			satisfied++
		}
	}
	if expected.MinHigh > 0 {
		required++
		if high >= expected.MinHigh {
			satisfied++
		}
	}
	if expected.MinTotal > 0 {
		required++
		if total >= expected.MinTotal {
			satisfied++
		}
	}
	if required == 0 {
		return 1
	}
	return float64(satisfied) / float64(required)
}

func findingTags(findings []Finding) map[string]bool {
	tags := make(map[string]bool)
	for _, f := range findings {
		for _, tag := range f.Categories {
			tags[strings.ToLower(tag)] = true
		}
	}
	return tags
}

func coverageRatio(wanted []string, present map[string]bool) float64 {
	found := 0
	for _, w := range wanted {
		if present[strings.ToLower(strings.TrimSpace(w))] {
			found++
		}
	}
	return float64(found) / float64(len(wanted))
}

// keywordRatio checks keyword presence across the concatenation of all
// scenario texts, case-insensitively.
func keywordRatio(keywords []string, findings []Finding) float64 {
	var sb strings.Builder
	for _, f := range findings {
		sb.WriteString(f.Scenario)
		sb.WriteString("\n")
	}
	corpus := strings.ToLower(sb.String())

	found := 0
	for _, kw := range keywords {
		if strings.Contains(corpus, strings.ToLower(strings.TrimSpace(kw))) {
			found++
		}
	}
	return float64(found) / float64(len(keywords))
}
