package vision

import (
	"context"
	"fmt"
	"net/http"
	"snapsight/app/config"
	"snapsight/app/util/dataurl"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
)

// anthropicProvider is the single-turn variant: every analysis is one
// self-contained user message carrying the instruction text and the image.
type anthropicProvider struct {
	llm       *anthropic.LLM
	prompt    string
	maxTokens int
}

func newAnthropic(cfg *config.Config) (*anthropicProvider, error) {
	opts := []anthropic.Option{
		anthropic.WithToken(cfg.Provider.Anthropic.Token),
		anthropic.WithModel(cfg.Provider.Anthropic.Model),
		anthropic.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
	}

	if cfg.Provider.Anthropic.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Provider.Anthropic.BaseURL))
	}

	llm, err := anthropic.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic client: %w", err)
	}

	return &anthropicProvider{
		llm:       llm,
		prompt:    instructionPrompt(cfg),
		maxTokens: cfg.Provider.Anthropic.MaxTokens,
	}, nil
}

func (p *anthropicProvider) Name() string {
	return "anthropic"
}

func (p *anthropicProvider) Analyze(ctx context.Context, img dataurl.Image) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := p.llm.GenerateContent(ctx, []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(p.prompt),
				llms.BinaryPart(img.MediaType, img.Data),
			},
		},
	}, llms.WithMaxTokens(p.maxTokens))
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return NoResponse, nil
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
