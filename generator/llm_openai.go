package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAILLM implements LLMClient over chat completions. DeepSeek, OpenRouter
// and other OpenAI-compatible gateways are reached through BaseURL.
type OpenAILLM struct {
	model  string
	client openai.Client
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, errors.New("llm config is nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; provide llm.api_key or OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}
	return &OpenAILLM{model: cfg.Model, client: openai.NewClient(opts...)}, nil
}

// Model returns the configured model name.
func (o *OpenAILLM) Model() string { return o.model }

func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: chatMessages(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", o.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", o.model, ErrEmptyResponse)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func chatMessages(p Prompt) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if p.System != "" {
		msgs = append(msgs, openai.SystemMessage(p.System))
	}
	return append(msgs, openai.UserMessage(p.User))
}
