// Package riskeval is an A/B evaluation harness that decides, with
// statistical rigor, whether pattern-augmented risk prompting (the
// treatment) outperforms unaugmented prompting (the baseline) on a fixed
// suite of scenario cases. It runs repeated independent trials of both
// variants against a rate-limited generator, extracts structured findings
// from the free-text responses, scores them against per-case criteria, and
// aggregates pass rates into per-case verdicts and a global distribution.
package riskeval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weave-labs/riskeval/config"
	"github.com/weave-labs/riskeval/eval"
	"github.com/weave-labs/riskeval/generator"
	"github.com/weave-labs/riskeval/internal/logging"
)

// Harness wires the configuration, generator, and executor into the full
// pipeline. Create one per run with New.
type Harness struct {
	cfg    *config.Config
	gen    generator.Generator
	logger logging.Logger
}

// New builds a harness over gen. Configuration comes from the environment,
// then the supplied options.
func New(gen generator.Generator, opts ...config.ConfigOption) (*Harness, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	config.ApplyOptions(cfg, opts...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Harness{
		cfg:    cfg,
		gen:    gen,
		logger: logging.NewLogger(logging.LogLevelWarn),
	}, nil
}

// SetLogger replaces the harness logger.
func (h *Harness) SetLogger(logger logging.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

// Config exposes the effective configuration.
func (h *Harness) Config() *config.Config {
	return h.cfg
}

// Run loads a case suite and executes the full pipeline, writing the report
// artifact if an output directory is configured.
func (h *Harness) Run(ctx context.Context, suitePath string) (*eval.GlobalReport, error) {
	cases, skipped, err := eval.LoadSuite(suitePath)
	if err != nil {
		return nil, err
	}
	for _, s := range skipped {
		h.logger.Error("skipping malformed case", "case", s.Name, "error", s.Err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("suite %s contains no valid cases", suitePath)
	}

	return h.RunCases(ctx, cases, skipped)
}

// RunCases executes treatment and baseline trials for every case. Cases run
// concurrently; the executor's worker semaphore is the only bound on
// in-flight generation calls.
func (h *Harness) RunCases(ctx context.Context, cases []eval.Case, skipped []eval.SkippedCase) (*eval.GlobalReport, error) {
	started := time.Now()
	executor := eval.NewExecutor(h.gen, h.cfg, h.logger)

	results := make([]eval.CaseResult, len(cases))
	errs := make([]error, len(cases))

	var wg sync.WaitGroup
	for i, c := range cases {
		wg.Add(1)
		go func(index int, c eval.Case) {
			defer wg.Done()
			results[index], errs[index] = h.runCase(ctx, executor, c)
		}(i, c)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("case %q: %w", cases[i].Name, err)
		}
	}

	report := eval.Aggregate(results)
	report.RunID = uuid.NewString()
	report.Generator = h.gen.Name()
	report.StartedAt = started
	report.FinishedAt = time.Now()
	for _, s := range skipped {
		report.SkippedCases = append(report.SkippedCases, s.Name)
	}

	if h.cfg.OutputDir != "" {
		path, err := eval.WriteReport(h.cfg.OutputDir, report)
		if err != nil {
			return report, err
		}
		h.logger.Info("report written", "path", path, "run_id", report.RunID)
	}

	return report, nil
}

// runCase runs both variants' trial sets concurrently and derives the case
// result.
func (h *Harness) runCase(ctx context.Context, executor *eval.Executor, c eval.Case) (eval.CaseResult, error) {
	treatmentPrompts, err := BuildPrompts(c, eval.VariantTreatment, h.cfg.PatternPrimer)
	if err != nil {
		return eval.CaseResult{}, err
	}
	baselinePrompts, err := BuildPrompts(c, eval.VariantBaseline, h.cfg.PatternPrimer)
	if err != nil {
		return eval.CaseResult{}, err
	}

	var treatment, baseline []eval.Trial
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		treatment = executor.RunCase(ctx, c, eval.VariantTreatment, treatmentPrompts)
	}()
	go func() {
		defer wg.Done()
		baseline = executor.RunCase(ctx, c, eval.VariantBaseline, baselinePrompts)
	}()
	wg.Wait()

	result := eval.NewCaseResult(c, treatment, baseline)
	h.logger.Info("case complete",
		"case", c.Name,
		"verdict", result.Verdict,
		"treatment_pass_rate", result.TreatmentStats.PassRate,
		"baseline_pass_rate", result.BaselineStats.PassRate)

	return result, nil
}
