package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"

	"unisync-backend/internal/config"
)

// ErrNotConfigured is returned when no provider key was supplied.
var ErrNotConfigured = errors.New("llm provider not configured")

// Completer turns an instruction + prompt into raw model text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Client calls a langchaingo model with the event system prompt.
type Client struct {
	Provider string
	Model    string

	llm llms.Model
}

func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.LLMConfigured() {
		return nil, ErrNotConfigured
	}

	var (
		model llms.Model
		err   error
	)
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.LLMAPIKey),
			googleai.WithDefaultModel(cfg.LLMModel),
		)
	case config.ProviderOpenAI:
		model, err = openai.New(
			openai.WithToken(cfg.LLMAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.LLMProvider, err)
	}

	return NewWithModel(cfg.LLMProvider, cfg.LLMModel, model), nil
}

// NewWithModel wraps an already constructed langchaingo model.
func NewWithModel(provider, modelName string, model llms.Model) *Client {
	return &Client{Provider: provider, Model: modelName, llm: model}
}

func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c == nil || c.llm == nil {
		return "", ErrNotConfigured
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(0),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("%s generate content: %w", c.Provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.Provider)
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
