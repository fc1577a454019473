package provider

import (
	"context"
	"strings"
	"time"
)

const (
	mockName        = "mock"
	mockInvokeDelay = 500 * time.Millisecond
	mockEchoLimit   = 50
)

// Mock is the synthetic fallback backend: always available, deterministic,
// never fails. It stands in for real providers during development and when
// a real provider dies mid-turn.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Name() string    { return mockName }
func (m *Mock) Available() bool { return true }

// Invoke returns the canned response after an artificial delay emulating
// real backend latency.
func (m *Mock) Invoke(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(mockInvokeDelay):
	}
	return strings.Join(mockFragments(prompt), ""), nil
}

// Stream yields the canned response as a fixed sequence of paced fragments.
// Their concatenation equals the Invoke output.
func (m *Mock) Stream(ctx context.Context, prompt string) (FragmentStream, error) {
	return newCannedStream(ctx, mockFragments(prompt)), nil
}

func mockFragments(prompt string) []string {
	return []string{
		"I'm a mock AI assistant. ",
		"This response is generated for development purposes when no API keys are configured. ",
		"Your message was: \"" + truncateEcho(prompt, mockEchoLimit) + "\" ",
		"To use real AI providers, please configure OPENAI_API_KEY or HUGGINGFACEHUB_API_TOKEN environment variables. ",
		"I can help you test the streaming functionality of this chat platform!",
	}
}

func truncateEcho(prompt string, limit int) string {
	runes := []rune(prompt)
	if len(runes) <= limit {
		return prompt
	}
	return string(runes[:limit]) + "..."
}
