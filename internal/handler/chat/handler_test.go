package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/model/chat"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/provider"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/store"
)

func setupRouter() (*chi.Mux, *store.MemoryStore) {
	st := store.NewMemoryStore()
	registry := provider.New(context.Background(), provider.Config{})
	handler := New(st, registry)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, st
}

func postChat(t *testing.T, r http.Handler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeEvents(t *testing.T, body string) []turnEvent {
	t.Helper()
	var events []turnEvent
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event turnEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			t.Fatalf("decode event %q: %v", line, err)
		}
		events = append(events, event)
	}
	return events
}

func TestChatTurnDefaultsToMockProvider(t *testing.T) {
	r, st := setupRouter()

	resp := postChat(t, r, map[string]string{"message": "Explain TCP handshakes"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	events := decodeEvents(t, resp.Body.String())
	if len(events) < 2 {
		t.Fatalf("expected fragments plus terminal event, got %d events", len(events))
	}

	var accumulated strings.Builder
	for _, event := range events[:len(events)-1] {
		if event.Done {
			t.Fatalf("unexpected done before terminal event: %+v", event)
		}
		if event.Content == "" {
			t.Fatalf("fragment without content: %+v", event)
		}
		accumulated.WriteString(event.Content)
	}

	terminal := events[len(events)-1]
	if !terminal.Done || terminal.Error != "" {
		t.Fatalf("unexpected terminal event: %+v", terminal)
	}
	if terminal.MessageID == "" || terminal.ConversationID == "" {
		t.Fatalf("terminal event missing identifiers: %+v", terminal)
	}

	conversation, ok, err := st.GetConversation(context.Background(), terminal.ConversationID)
	if err != nil || !ok {
		t.Fatalf("GetConversation ok=%v err=%v", ok, err)
	}
	if len(conversation.Messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(conversation.Messages))
	}

	user := conversation.Messages[0]
	if user.Role != chatModel.RoleUser || user.Content != "Explain TCP handshakes" {
		t.Fatalf("unexpected user message: %+v", user)
	}

	assistant := conversation.Messages[1]
	if assistant.Role != chatModel.RoleAssistant {
		t.Fatalf("unexpected assistant role %q", assistant.Role)
	}
	if assistant.ID != terminal.MessageID {
		t.Fatalf("terminal messageId %q does not match persisted %q", terminal.MessageID, assistant.ID)
	}
	if assistant.Content != strings.TrimSpace(accumulated.String()) {
		t.Fatalf("persisted text diverges from streamed fragments:\n%q\n%q",
			assistant.Content, strings.TrimSpace(accumulated.String()))
	}
	if assistant.Metadata["provider"] != "mock" {
		t.Fatalf("expected mock provider metadata, got %v", assistant.Metadata)
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	r, st := setupRouter()

	for _, message := range []string{"", "   "} {
		resp := postChat(t, r, map[string]string{"message": message})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("message %q: expected 400, got %d", message, resp.Code)
		}
	}

	// Validation failures must leave no trace in the store.
	conversations, err := st.GetConversations(context.Background(), "anonymous")
	if err != nil {
		t.Fatalf("GetConversations err: %v", err)
	}
	if len(conversations) != 0 {
		t.Fatalf("expected no conversations, got %d", len(conversations))
	}
}

func TestChatRejectsInvalidBody(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("not json"))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatAutoTitle(t *testing.T) {
	r, st := setupRouter()

	long := strings.Repeat("a", 60)
	resp := postChat(t, r, map[string]string{"message": "  " + long + "  "})
	events := decodeEvents(t, resp.Body.String())
	terminal := events[len(events)-1]

	conversation, ok, err := st.GetConversation(context.Background(), terminal.ConversationID)
	if err != nil || !ok {
		t.Fatalf("GetConversation ok=%v err=%v", ok, err)
	}
	if want := strings.Repeat("a", 50) + "..."; conversation.Title != want {
		t.Fatalf("unexpected title %q, want %q", conversation.Title, want)
	}

	resp = postChat(t, r, map[string]string{"message": "short message"})
	events = decodeEvents(t, resp.Body.String())
	terminal = events[len(events)-1]

	conversation, ok, err = st.GetConversation(context.Background(), terminal.ConversationID)
	if err != nil || !ok {
		t.Fatalf("GetConversation ok=%v err=%v", ok, err)
	}
	if conversation.Title != "short message" {
		t.Fatalf("unexpected title %q", conversation.Title)
	}
}

func TestChatAppendsToExistingConversation(t *testing.T) {
	r, st := setupRouter()
	ctx := context.Background()

	conversation, err := st.CreateConversation(ctx, "anonymous", "existing")
	if err != nil {
		t.Fatalf("CreateConversation err: %v", err)
	}

	resp := postChat(t, r, map[string]string{
		"message":        "follow-up question",
		"conversationId": conversation.ID,
	})
	events := decodeEvents(t, resp.Body.String())
	terminal := events[len(events)-1]

	if terminal.ConversationID != conversation.ID {
		t.Fatalf("terminal conversationId %q, want %q", terminal.ConversationID, conversation.ID)
	}

	got, ok, err := st.GetConversation(ctx, conversation.ID)
	if err != nil || !ok {
		t.Fatalf("GetConversation ok=%v err=%v", ok, err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got.Messages))
	}
	if got.Title != "existing" {
		t.Fatalf("title changed unexpectedly: %q", got.Title)
	}
}

// A selected backend that cannot produce output must be invisible to the
// client: the turn still completes and persists, served by the fallback.
func TestChatFallbackSubstitution(t *testing.T) {
	r, st := setupRouter()

	// openai is registered but has no key, so obtaining its fragments fails.
	resp := postChat(t, r, map[string]string{
		"message":  "does fallback work?",
		"provider": "openai",
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	events := decodeEvents(t, resp.Body.String())
	terminal := events[len(events)-1]
	if !terminal.Done || terminal.Error != "" || terminal.MessageID == "" {
		t.Fatalf("unexpected terminal event: %+v", terminal)
	}
	if len(events) < 2 {
		t.Fatalf("expected content fragments before terminal event, got %d events", len(events))
	}

	conversation, ok, err := st.GetConversation(context.Background(), terminal.ConversationID)
	if err != nil || !ok {
		t.Fatalf("GetConversation ok=%v err=%v", ok, err)
	}
	assistant := conversation.Messages[len(conversation.Messages)-1]
	if assistant.Metadata["provider"] != "mock" {
		t.Fatalf("expected fallback provider metadata, got %v", assistant.Metadata)
	}
}

func TestChatUnknownProviderAbsorbed(t *testing.T) {
	r, _ := setupRouter()

	resp := postChat(t, r, map[string]string{
		"message":  "hello",
		"provider": "doesnotexist",
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	events := decodeEvents(t, resp.Body.String())
	terminal := events[len(events)-1]
	if !terminal.Done || terminal.Error != "" {
		t.Fatalf("unexpected terminal event: %+v", terminal)
	}
}

func TestTitleFor(t *testing.T) {
	if got := titleFor("hello"); got != "hello" {
		t.Fatalf("short title altered: %q", got)
	}

	exact := strings.Repeat("b", 50)
	if got := titleFor(exact); got != exact {
		t.Fatalf("50-char title should be verbatim, got %q", got)
	}

	if got := titleFor(exact + "c"); got != exact+"..." {
		t.Fatalf("unexpected truncated title %q", got)
	}
}
