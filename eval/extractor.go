package eval

import (
	"regexp"
	"strconv"
	"strings"
)

// Severity is one of the four risk levels a finding can carry.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Finding is one structured risk claim extracted from a raw response.
type Finding struct {
	Severity   Severity `json:"severity"`
	Confidence float64  `json:"confidence"`
	Categories []string `json:"categories,omitempty"`
	Scenario   string   `json:"scenario"`
}

// Vocabulary is the term set findings are tagged against.
type Vocabulary struct {
	Categories []string
	Keywords   []string
}

// Confidence band midpoints used when a marker carries no figure.
var defaultConfidence = map[Severity]float64{
	SeverityCritical: 0.90,
	SeverityHigh:     0.75,
	SeverityMedium:   0.50,
	SeverityLow:      0.25,
}

// markerRe matches a severity token at the start of a line, allowing bullet
// and emphasis prefixes like "- ", "**", "[", "## ".
var markerRe = regexp.MustCompile(`(?i)^[\s\-*#>\x60~\[]*\b(critical|high|medium|low)\b`)

// percentRe matches a confidence figure such as "(92%)", "[85.5%]" or "70%".
var percentRe = regexp.MustCompile(`[(\[]?\s*(\d{1,3}(?:\.\d+)?)\s*%\s*[)\]]?`)

// Extract parses a raw generator response into an ordered list of findings.
// It never fails: unparseable input degrades to a single medium-severity
// finding holding the whole text, and blank input yields no findings, so a
// downstream zero score stays distinguishable from an extraction bug.
func Extract(raw string, vocab Vocabulary) []Finding {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	lines := strings.Split(raw, "\n")

	var findings []Finding
	var block []string
	var current *Finding

	flush := func() {
		if current == nil {
			return
		}
		current.Scenario = strings.TrimSpace(strings.Join(block, "\n"))
		current.Categories = tagCategories(current.Scenario, vocab)
		findings = append(findings, *current)
		current = nil
		block = nil
	}

	for _, line := range lines {
		if m := markerRe.FindStringSubmatch(line); m != nil {
			flush()
			sev := Severity(strings.ToLower(m[1]))
			current = &Finding{
				Severity:   sev,
				Confidence: parseConfidence(line, sev),
			}
			block = append(block, line)
			continue
		}
		if current != nil {
			block = append(block, line)
		}
	}
	flush()

	if len(findings) == 0 {
		// No recognizable structure. Treat the whole response as one
		// medium finding; if the text carries a confidence figure,
		// infer severity from it instead.
		return []Finding{fallbackFinding(raw, vocab)}
	}

	return findings
}

func fallbackFinding(raw string, vocab Vocabulary) Finding {
	text := strings.TrimSpace(raw)
	f := Finding{
		Severity:   SeverityMedium,
		Confidence: defaultConfidence[SeverityMedium],
		Scenario:   text,
		Categories: tagCategories(text, vocab),
	}
	if m := percentRe.FindStringSubmatch(text); m != nil {
		if conf, ok := parsePercent(m[1]); ok {
			f.Confidence = conf
			f.Severity = severityFromConfidence(conf)
		}
	}
	return f
}

// parseConfidence pulls the first percentage off a marker line, defaulting
// to the severity band midpoint when absent or out of range.
func parseConfidence(line string, sev Severity) float64 {
	if m := percentRe.FindStringSubmatch(line); m != nil {
		if conf, ok := parsePercent(m[1]); ok {
			return conf
		}
	}
	return defaultConfidence[sev]
}

func parsePercent(digits string) (float64, bool) {
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil || v < 0 || v > 100 {
		return 0, false
	}
	return v / 100, true
}

// severityFromConfidence infers a level from a bare confidence figure.
// Explicit markers always take precedence over this inference.
func severityFromConfidence(conf float64) Severity {
	switch {
	case conf >= 0.85:
		return SeverityCritical
	case conf >= 0.65:
		return SeverityHigh
	case conf >= 0.40:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// tagCategories returns the vocabulary terms present in the block as
// case-insensitive substrings, categories first, then keywords.
func tagCategories(text string, vocab Vocabulary) []string {
	lower := strings.ToLower(text)
	var tags []string
	seen := make(map[string]bool)
	for _, term := range append(append([]string{}, vocab.Categories...), vocab.Keywords...) {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" || seen[t] {
			continue
		}
		if strings.Contains(lower, t) {
			tags = append(tags, t)
			seen[t] = true
		}
	}
	return tags
}
