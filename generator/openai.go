package generator

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/weave-labs/riskeval/config"
	"github.com/weave-labs/riskeval/internal/logging"
)

// OpenAI is a Generator backed by the OpenAI chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
	temp   float32
	tokens int
	logger logging.Logger
}

// NewOpenAI builds an OpenAI-backed generator from the harness config.
func NewOpenAI(cfg *config.Config, logger logging.Logger) *OpenAI {
	if logger == nil {
		logger = logging.NewLogger(logging.LogLevelWarn)
	}
	return &OpenAI{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		temp:   float32(cfg.Temperature),
		tokens: cfg.MaxTokens,
		logger: logger,
	}
}

func (o *OpenAI) Name() string {
	return "openai/" + o.model
}

// Generate runs one chat completion and maps transport failures onto the
// harness error taxonomy.
func (o *OpenAI) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temp,
		MaxTokens:   o.tokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", o.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewError(KindOther, "response contained no choices", nil)
	}

	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			o.logger.Debug("rate limited by backend", "model", o.model)
			return NewError(KindRateLimit, "openai rate limit", err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return NewError(KindAuthentication, "openai auth failure", err)
		case http.StatusBadRequest:
			return NewError(KindRequest, "openai rejected request", err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, "generation call timed out", err)
	}

	return NewError(KindOther, "generation failed", err)
}
