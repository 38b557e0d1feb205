// Package config holds the harness configuration shared by the executor,
// generator, and report writer.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config controls a harness run. The worker limit is an explicit knob rather
// than derived from GOMAXPROCS: the bottleneck is the generator's rate limit,
// not local CPU.
type Config struct {
	Model             string        `env:"RISKEVAL_MODEL" envDefault:"gpt-4o-mini" validate:"required"`
	APIKey            string        `env:"OPENAI_API_KEY"`
	Trials            int           `env:"RISKEVAL_TRIALS" envDefault:"5" validate:"min=1"`
	Concurrency       int           `env:"RISKEVAL_CONCURRENCY" envDefault:"4" validate:"min=1"`
	Timeout           time.Duration `env:"RISKEVAL_TIMEOUT" envDefault:"60s"`
	MaxRetries        int           `env:"RISKEVAL_MAX_RETRIES" envDefault:"3" validate:"min=0"`
	RetryDelay        time.Duration `env:"RISKEVAL_RETRY_DELAY" envDefault:"2s"`
	RequestsPerMinute int           `env:"RISKEVAL_RPM" envDefault:"0" validate:"min=0"`
	OutputDir         string        `env:"RISKEVAL_OUTPUT_DIR" envDefault:"results"`
	Temperature       float64       `env:"RISKEVAL_TEMPERATURE" envDefault:"0.7"`
	MaxTokens         int           `env:"RISKEVAL_MAX_TOKENS" envDefault:"2048" validate:"min=1"`

	// PatternPrimer is the pre-assembled pattern block injected into the
	// treatment variant's system prompt. The harness treats it as opaque
	// immutable text; catalog assembly happens upstream.
	PatternPrimer string
}

// LoadConfig builds a Config from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig returns a Config with the same defaults as the env tags.
func NewConfig() *Config {
	return &Config{
		Model:       "gpt-4o-mini",
		Trials:      5,
		Concurrency: 4,
		Timeout:     60 * time.Second,
		MaxRetries:  3,
		RetryDelay:  2 * time.Second,
		OutputDir:   "results",
		Temperature: 0.7,
		MaxTokens:   2048,
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

type ConfigOption func(*Config)

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetAPIKey(apiKey string) ConfigOption {
	return func(c *Config) {
		c.APIKey = apiKey
	}
}

func SetTrials(trials int) ConfigOption {
	return func(c *Config) {
		if trials < 1 {
			trials = 1
		}
		c.Trials = trials
	}
}

func SetConcurrency(workers int) ConfigOption {
	return func(c *Config) {
		if workers < 1 {
			workers = 1
		}
		c.Concurrency = workers
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = retryDelay
	}
}

func SetRequestsPerMinute(rpm int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerMinute = rpm
	}
}

func SetOutputDir(dir string) ConfigOption {
	return func(c *Config) {
		c.OutputDir = dir
	}
}

func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func SetMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		if maxTokens < 1 {
			maxTokens = 1
		}
		c.MaxTokens = maxTokens
	}
}

func SetPatternPrimer(primer string) ConfigOption {
	return func(c *Config) {
		c.PatternPrimer = primer
	}
}

func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}
