// Package eval implements the A/B evaluation pipeline: case loading, risk
// extraction, scoring, trial execution, comparison, metrics, and reporting.
package eval

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Mode selects how patterns are applied to the treatment variant.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModePaired   Mode = "paired"
	ModeCombined Mode = "combined"
)

// Variant labels the two systems under comparison.
type Variant string

const (
	VariantTreatment Variant = "treatment"
	VariantBaseline  Variant = "baseline"
)

// DefaultThreshold is the pass threshold percentage used when a case does
// not set one.
const DefaultThreshold = 70.0

// CaseInput is what the generator is asked to analyze. Threshold is a
// pointer so an explicit 0 (always pass) stays distinct from unset.
type CaseInput struct {
	Scope     string   `yaml:"scope" json:"scope" validate:"required"`
	Context   string   `yaml:"context" json:"context,omitempty"`
	Depth     string   `yaml:"depth" json:"depth,omitempty"`
	Threshold *float64 `yaml:"threshold" json:"threshold,omitempty" validate:"omitempty,min=0,max=100"`
}

// Expected holds the criteria a response is scored against.
type Expected struct {
	MinCritical int      `yaml:"min_critical" json:"min_critical" validate:"min=0"`
	MinHigh     int      `yaml:"min_high" json:"min_high" validate:"min=0"`
	MinTotal    int      `yaml:"min_total" json:"min_total" validate:"min=0"`
	Categories  []string `yaml:"categories" json:"categories,omitempty"`
	Keywords    []string `yaml:"keywords" json:"keywords,omitempty"`
}

// Empty reports whether no criteria are set. Empty criteria mark a negative
// case: the scorer awards a full score so near-silence is not penalized.
func (e Expected) Empty() bool {
	return e.MinCritical == 0 && e.MinHigh == 0 && e.MinTotal == 0 &&
		len(e.Categories) == 0 && len(e.Keywords) == 0
}

// Case is one benchmark scenario. Cases are loaded once per run and
// immutable thereafter.
type Case struct {
	Name       string    `yaml:"-" json:"name" validate:"required"`
	DomainTags []string  `yaml:"domains" json:"domains,omitempty"`
	Mode       Mode      `yaml:"mode" json:"mode,omitempty" validate:"omitempty,oneof=single paired combined"`
	Input      CaseInput `yaml:"input" json:"input"`
	Expected   Expected  `yaml:"expected" json:"expected"`
}

// Threshold returns the pass threshold as a fraction in [0,1].
func (c Case) Threshold() float64 {
	if c.Input.Threshold == nil {
		return DefaultThreshold / 100
	}
	return *c.Input.Threshold / 100
}

// Vocabulary returns the terms the extractor tags findings with: the case's
// category vocabulary plus its expected keywords.
func (c Case) Vocabulary() Vocabulary {
	return Vocabulary{
		Categories: c.Expected.Categories,
		Keywords:   c.Expected.Keywords,
	}
}

// SkippedCase records a malformed definition that was reported and dropped
// without aborting the load.
type SkippedCase struct {
	Name string
	Err  error
}

type suiteFile struct {
	Cases map[string]Case `yaml:"cases"`
}

// LoadSuite reads a case suite from a YAML file. A malformed entry is
// skipped and reported, keyed by its name; only an unreadable file or
// invalid YAML fails the load wholesale.
func LoadSuite(path string) ([]Case, []SkippedCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read suite %s: %w", path, err)
	}
	return ParseSuite(data)
}

// ParseSuite parses suite YAML. See LoadSuite.
func ParseSuite(data []byte) ([]Case, []SkippedCase, error) {
	var file suiteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse suite: %w", err)
	}

	names := make([]string, 0, len(file.Cases))
	for name := range file.Cases {
		names = append(names, name)
	}
	sort.Strings(names)

	var cases []Case
	var skipped []SkippedCase
	for _, name := range names {
		c := file.Cases[name]
		c.Name = name
		if err := validateCase(c); err != nil {
			skipped = append(skipped, SkippedCase{Name: name, Err: err})
			continue
		}
		cases = append(cases, c)
	}

	return cases, skipped, nil
}

func validateCase(c Case) error {
	if c.Name == "" {
		return fmt.Errorf("case has no name")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("case %q: %w", c.Name, err)
	}
	return nil
}
