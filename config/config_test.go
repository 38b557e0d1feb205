package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 5, cfg.Trials)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 0, cfg.RequestsPerMinute)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("RISKEVAL_MODEL", "gpt-4o")
	t.Setenv("RISKEVAL_TRIALS", "7")
	t.Setenv("RISKEVAL_TIMEOUT", "15s")
	t.Setenv("RISKEVAL_RPM", "30")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 7, cfg.Trials)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
}

func TestApplyOptions(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg,
		SetModel("gpt-4o"),
		SetTrials(10),
		SetConcurrency(2),
		SetRequestsPerMinute(60),
		SetOutputDir(t.TempDir()),
		SetPatternPrimer("## Patterns\n- stale cache invalidation"),
	)

	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 10, cfg.Trials)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, 60, cfg.RequestsPerMinute)
	assert.Contains(t, cfg.PatternPrimer, "stale cache")
}

func TestOptionClamping(t *testing.T) {
	cfg := NewConfig()
	ApplyOptions(cfg, SetTrials(0), SetConcurrency(-1), SetMaxTokens(0))

	assert.Equal(t, 1, cfg.Trials)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 1, cfg.MaxTokens)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := NewConfig()
	cfg.Trials = 0
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.Model = ""
	assert.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.RequestsPerMinute = -5
	assert.Error(t, cfg.Validate())
}
