package vision

import (
	"context"
	"fmt"
	"net/http"
	"snapsight/app/config"
	"snapsight/app/service/chat"
	"snapsight/app/util/dataurl"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Short per-turn instruction; the full prompt lives in the system turn.
const followUpPrompt = "Analyze this screenshot and answer concisely."

// openaiProvider is the multi-turn variant: the whole conversation is
// replayed on every call and the assistant reply is appended to it.
type openaiProvider struct {
	client      *openai.Client
	chatSvc     *chat.Service
	prompt      string
	model       string
	maxTokens   int
	temperature float32
}

func newOpenAI(cfg *config.Config, chatSvc *chat.Service) *openaiProvider {
	clientConfig := openai.DefaultConfig(cfg.Provider.OpenAI.Token)

	if cfg.Provider.OpenAI.BaseURL != "" {
		clientConfig.BaseURL = cfg.Provider.OpenAI.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: requestTimeout,
	}

	return &openaiProvider{
		client:      openai.NewClientWithConfig(clientConfig),
		chatSvc:     chatSvc,
		prompt:      instructionPrompt(cfg),
		model:       cfg.Provider.OpenAI.Model,
		maxTokens:   cfg.Provider.OpenAI.MaxTokens,
		temperature: cfg.Provider.OpenAI.Temperature,
	}
}

func (p *openaiProvider) Name() string {
	return "openai"
}

func (p *openaiProvider) Analyze(ctx context.Context, img dataurl.Image) (string, error) {
	turns, err := p.chatSvc.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load conversation: %w", err)
	}

	if len(turns) == 0 {
		turns = append(turns, chat.Turn{Role: chat.RoleSystem, Content: p.prompt})
	}

	turns = append(turns, chat.Turn{
		Role:     chat.RoleUser,
		Content:  followUpPrompt,
		ImageURI: dataurl.Encode(img),
	})

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toMessages(turns),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	answer := NoResponse
	if len(resp.Choices) > 0 && strings.TrimSpace(resp.Choices[0].Message.Content) != "" {
		answer = strings.TrimSpace(resp.Choices[0].Message.Content)
	}

	turns = append(turns, chat.Turn{Role: chat.RoleAssistant, Content: answer})

	if err = p.chatSvc.Save(turns); err != nil {
		return "", fmt.Errorf("failed to save conversation: %w", err)
	}

	return answer, nil
}

func toMessages(turns []chat.Turn) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(turns))

	for _, turn := range turns {
		msg := openai.ChatCompletionMessage{
			Role: string(turn.Role),
		}

		if turn.ImageURI != "" {
			msg.MultiContent = []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeText,
					Text: turn.Content,
				},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: turn.ImageURI,
					},
				},
			}
		} else {
			msg.Content = turn.Content
		}

		result = append(result, msg)
	}

	return result
}
