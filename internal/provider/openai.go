package provider

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const openAIName = "openai"

// OpenAI issues a single non-streaming chat completion with a fixed
// generation configuration.
type OpenAI struct {
	apiKey string
	client openai.Client
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		apiKey: apiKey,
		client: openai.NewClient(option.WithAPIKey(apiKey)),
	}
}

func (p *OpenAI) Name() string    { return openAIName }
func (p *OpenAI) Available() bool { return p.apiKey != "" }

func (p *OpenAI) Invoke(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT3_5Turbo,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(1000),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &RequestError{Provider: openAIName, Status: apiErr.StatusCode, Message: apiErr.Message}
		}
		return "", &RequestError{Provider: openAIName, Message: err.Error()}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &RequestError{Provider: openAIName, Message: "no response generated"}
	}
	return resp.Choices[0].Message.Content, nil
}
