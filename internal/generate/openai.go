package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	System  string
}

// OpenAI asks a chat-completions endpoint for the candidate markup.
type OpenAI struct {
	client *openai.Client
	model  string
	system string
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai generator: API key not set")
	}
	model := cfg.Model
	if model == "" {
		model = os.Getenv("OPENAI_MODEL")
	}
	if model == "" {
		model = defaultModel
		slog.Warn("OPENAI_MODEL not set, using default", "model", model)
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	slog.Info("initializing openai generator", "model", model, "base_url", clientCfg.BaseURL)
	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		system: cfg.System,
	}, nil
}

func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if o.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: o.system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	slog.Debug("requesting candidate", "model", o.model)
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	slog.Debug("received candidate", "model", o.model, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
