package provider_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/provider"
)

func TestMockAlwaysAvailable(t *testing.T) {
	m := provider.NewMock()
	if !m.Available() {
		t.Fatal("mock provider must always be available")
	}
	if m.Name() != "mock" {
		t.Fatalf("unexpected name %q", m.Name())
	}
}

func TestMockInvokeEchoesPrompt(t *testing.T) {
	m := provider.NewMock()

	response, err := m.Invoke(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Invoke err: %v", err)
	}
	if !strings.Contains(response, "mock AI assistant") {
		t.Fatalf("response missing mock marker: %q", response)
	}
	if !strings.Contains(response, `"Hello"`) {
		t.Fatalf("response missing prompt echo: %q", response)
	}
}

func TestMockInvokeTruncatesLongPrompt(t *testing.T) {
	m := provider.NewMock()
	prompt := strings.Repeat("x", 60)

	response, err := m.Invoke(context.Background(), prompt)
	if err != nil {
		t.Fatalf("Invoke err: %v", err)
	}
	if !strings.Contains(response, strings.Repeat("x", 50)+"...") {
		t.Fatalf("expected truncated echo in %q", response)
	}
	if strings.Contains(response, prompt) {
		t.Fatalf("expected full prompt to be truncated out of %q", response)
	}
}

func TestMockStreamMatchesInvoke(t *testing.T) {
	m := provider.NewMock()
	ctx := context.Background()

	invoked, err := m.Invoke(ctx, "compare me")
	if err != nil {
		t.Fatalf("Invoke err: %v", err)
	}

	stream, err := m.Stream(ctx, "compare me")
	if err != nil {
		t.Fatalf("Stream err: %v", err)
	}
	defer stream.Close()

	var streamed strings.Builder
	count := 0
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv err: %v", err)
		}
		streamed.WriteString(fragment)
		count++
	}

	if count < 2 {
		t.Fatalf("expected multiple fragments, got %d", count)
	}
	if streamed.String() != invoked {
		t.Fatalf("streamed text diverges from invoke output:\n%q\n%q", streamed.String(), invoked)
	}
}
