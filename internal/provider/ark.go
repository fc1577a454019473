package provider

import (
	"context"
	"log"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const arkName = "ark"

// Ark wraps a Volcengine Ark chat model, the one backend here with native
// incremental output.
type Ark struct {
	chatModel model.ChatModel
}

// NewArk constructs the Ark variant. When credentials are missing or the
// model cannot be created the variant stays registered but unavailable.
func NewArk(ctx context.Context, apiKey, modelID, baseURL, region string) *Ark {
	p := &Ark{}
	if apiKey == "" || modelID == "" {
		return p
	}

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: baseURL,
		Region:  region,
		APIKey:  apiKey,
		Model:   modelID,
	})
	if err != nil {
		log.Printf("[provider] ark model init failed: %v", err)
		return p
	}

	p.chatModel = chatModel
	return p
}

func (p *Ark) Name() string    { return arkName }
func (p *Ark) Available() bool { return p.chatModel != nil }

func (p *Ark) Invoke(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}

	resp, err := p.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", &RequestError{Provider: arkName, Message: err.Error()}
	}
	return resp.Content, nil
}

// Stream decodes the model's native stream into text fragments.
func (p *Ark) Stream(ctx context.Context, prompt string) (FragmentStream, error) {
	if !p.Available() {
		return nil, ErrNotConfigured
	}

	reader, err := p.chatModel.Stream(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return nil, &RequestError{Provider: arkName, Message: err.Error()}
	}
	return &arkStream{reader: reader}, nil
}

type arkStream struct {
	reader *schema.StreamReader[*schema.Message]
}

func (s *arkStream) Recv() (string, error) {
	for {
		chunk, err := s.reader.Recv()
		if err != nil {
			// io.EOF passes through as the end-of-stream marker.
			return "", err
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}
		return chunk.Content, nil
	}
}

func (s *arkStream) Close() { s.reader.Close() }
