package eval

import (
	"context"
	"sync"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"golang.org/x/time/rate"

	"github.com/weave-labs/riskeval/config"
	"github.com/weave-labs/riskeval/generator"
	"github.com/weave-labs/riskeval/internal/logging"
)

// FailureKind classifies why a trial carries no usable response.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureRateLimit FailureKind = "rate_limit"
	FailureTimeout   FailureKind = "timeout"
	FailureGenerator FailureKind = "generator"
)

// Trial is one execution of one variant against one case. A trial whose
// generation call failed keeps Score 0 and a FailureKind, distinct from a
// trial that genuinely produced zero findings. A rate-limited trial that
// exhausted its retry budget is Excluded: it never enters the statistics.
type Trial struct {
	CaseName    string      `json:"case"`
	Variant     Variant     `json:"variant"`
	Index       int         `json:"trial"`
	RawResponse string      `json:"raw_response,omitempty"`
	Err         string      `json:"error,omitempty"`
	FailureKind FailureKind `json:"failure_kind,omitempty"`
	Excluded    bool        `json:"excluded,omitempty"`
	Findings    []Finding   `json:"findings,omitempty"`
	Score       float64     `json:"score"`
	Passed      bool        `json:"passed"`
	TokensUsed  int         `json:"tokens_used,omitempty"`
	LatencyMS   int64       `json:"latency_ms"`
}

// VariantPrompts is the assembled prompt pair for one variant of one case.
type VariantPrompts struct {
	System string
	User   string
}

const tokenEncoding = "cl100k_base"

// Cap the backoff shift to keep the multiplier from overflowing.
const maxBackoffShift = 10

// Executor runs independent trials against the generator with bounded
// concurrency. Each trial is a self-contained unit of work; the only shared
// state is the semaphore and the optional rate limiter.
type Executor struct {
	gen     generator.Generator
	cfg     *config.Config
	limiter *rate.Limiter
	sem     chan struct{}
	encoder *tiktoken.Tiktoken
	logger  logging.Logger
}

// NewExecutor creates an executor over gen using the harness config.
func NewExecutor(gen generator.Generator, cfg *config.Config, logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NewLogger(logging.LogLevelWarn)
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60), 1)
	}

	// Token accounting is best-effort; a missing encoding file just
	// leaves TokensUsed at zero.
	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		logger.Warn("token encoder unavailable", "encoding", tokenEncoding, "error", err)
		encoder = nil
	}

	return &Executor{
		gen:     gen,
		cfg:     cfg,
		limiter: limiter,
		sem:     make(chan struct{}, cfg.Concurrency),
		encoder: encoder,
		logger:  logger,
	}
}

// RunCase executes exactly cfg.Trials independent generation calls for one
// variant of one case. Calls share nothing beyond the worker semaphore, so
// repeated trials measure genuine output variance rather than caching
// artifacts. The returned slice is ordered by trial index.
func (e *Executor) RunCase(ctx context.Context, c Case, variant Variant, prompts VariantPrompts) []Trial {
	trials := make([]Trial, e.cfg.Trials)

	var wg sync.WaitGroup
	for i := 0; i < e.cfg.Trials; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			e.sem <- struct{}{}
			defer func() { <-e.sem }()
			trials[index] = e.runTrial(ctx, c, variant, index, prompts)
		}(i)
	}
	wg.Wait()

	return trials
}

func (e *Executor) runTrial(ctx context.Context, c Case, variant Variant, index int, prompts VariantPrompts) Trial {
	trial := Trial{
		CaseName: c.Name,
		Variant:  variant,
		Index:    index,
	}

	start := time.Now()
	response, err := e.generateWithRetry(ctx, c.Name, prompts)
	trial.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		trial.Err = err.Error()
		switch {
		case generator.IsRateLimit(err):
			// Retry budget exhausted. Exclude rather than record a
			// loss: counting throttling as model failure silently
			// biases the verdict distribution.
			trial.FailureKind = FailureRateLimit
			trial.Excluded = true
			e.logger.Warn("trial excluded after rate-limit retries",
				"case", c.Name, "variant", variant, "trial", index)
		case generator.IsTimeout(err):
			trial.FailureKind = FailureTimeout
		default:
			trial.FailureKind = FailureGenerator
		}
		return trial
	}

	trial.RawResponse = response
	trial.Findings = Extract(response, c.Vocabulary())
	trial.Score, trial.Passed = Score(trial.Findings, c.Expected, c.Threshold())
	trial.TokensUsed = e.countTokens(prompts.System, prompts.User, response)

	e.logger.Debug("trial complete",
		"case", c.Name, "variant", variant, "trial", index,
		"score", trial.Score, "passed", trial.Passed, "findings", len(trial.Findings))

	return trial
}

// generateWithRetry issues one generation call with a per-call timeout,
// retrying only rate-limit failures with exponential backoff. Every other
// failure class returns immediately.
func (e *Executor) generateWithRetry(ctx context.Context, caseName string, prompts VariantPrompts) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return "", generator.NewError(generator.KindTimeout, "rate limiter wait interrupted", err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
		response, err := e.gen.Generate(callCtx, prompts.System, prompts.User)
		cancel()

		if err == nil {
			return response, nil
		}
		if !generator.IsRateLimit(err) {
			return "", err
		}

		lastErr = err
		if attempt < e.cfg.MaxRetries {
			delay := e.backoffDelay(attempt)
			e.logger.Debug("rate limited, backing off",
				"case", caseName, "attempt", attempt+1, "delay", delay)
			if err := e.wait(ctx, delay); err != nil {
				return "", generator.NewError(generator.KindTimeout, "backoff interrupted", err)
			}
		}
	}

	return "", lastErr
}

func (e *Executor) backoffDelay(attempt int) time.Duration {
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return e.cfg.RetryDelay * time.Duration(1<<attempt)
}

func (e *Executor) wait(ctx context.Context, delay time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func (e *Executor) countTokens(texts ...string) int {
	if e.encoder == nil {
		return 0
	}
	total := 0
	for _, t := range texts {
		total += len(e.encoder.Encode(t, nil, nil))
	}
	return total
}
