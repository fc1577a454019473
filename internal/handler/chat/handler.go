package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/auth"
	chatModel "github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/model/chat"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/provider"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/store"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/pkg/utils"
)

// Maximum title length derived from a conversation's opening message.
const titleLimit = 50

// Handler drives one chat turn end to end: validate, persist the user
// message, stream the selected backend's output to the client and persist
// the assembled reply.
type Handler struct {
	store    store.Store
	registry *provider.Registry
}

func New(st store.Store, registry *provider.Registry) *Handler {
	return &Handler{store: st, registry: registry}
}

// RegisterRoutes mounts the chat turn endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
}

// turnEvent is one SSE payload of a chat turn.
type turnEvent struct {
	Content        string `json:"content,omitempty"`
	Done           bool   `json:"done"`
	MessageID      string `json:"messageId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message        string `json:"message"`
		ConversationID string `json:"conversationId"`
		Provider       string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message cannot be empty")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	owner := auth.Owner(ctx)

	conversationID := strings.TrimSpace(payload.ConversationID)
	if conversationID == "" {
		conversation, err := h.store.CreateConversation(ctx, owner, titleFor(message))
		if err != nil {
			log.Printf("[chat] create conversation failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "failed to start conversation")
			return
		}
		conversationID = conversation.ID
	}

	// The user's input goes durable before any backend is invoked, so it
	// survives a failed generation.
	if _, err := h.store.CreateMessage(ctx, conversationID, chatModel.RoleUser, message, nil); err != nil {
		log.Printf("[chat] save user message failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to save message")
		return
	}

	selected := h.selectProvider(payload.Provider)

	utils.SetupSSEHeaders(w)
	h.streamTurn(ctx, w, flusher, conversationID, message, selected)
}

// selectProvider resolves the requested backend, falling back to the
// registry default when unspecified and to the synthetic provider when the
// name is unknown. A bad name never aborts a turn.
func (h *Handler) selectProvider(name string) provider.Provider {
	name = strings.TrimSpace(name)
	if name == "" {
		name = h.registry.DefaultName()
	}

	selected, err := h.registry.Resolve(name)
	if err != nil {
		log.Printf("[chat] %v, substituting %s", err, h.registry.Fallback().Name())
		return h.registry.Fallback()
	}
	return selected
}

func (h *Handler) streamTurn(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, conversationID, message string, selected provider.Provider) {
	fallback := h.registry.Fallback()
	used := selected

	stream, err := provider.Fragments(ctx, used, message)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if used.Name() == fallback.Name() {
			h.sendEvent(w, flusher, turnEvent{Error: "failed to generate response", Done: true})
			return
		}
		log.Printf("[chat] provider %s failed, substituting %s: %v", used.Name(), fallback.Name(), err)
		used = fallback
		if stream, err = provider.Fragments(ctx, used, message); err != nil {
			h.sendEvent(w, flusher, turnEvent{Error: "failed to generate response", Done: true})
			return
		}
	}
	defer func() { stream.Close() }()

	var accumulated strings.Builder
	clientGone := false

	for {
		fragment, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			if ctx.Err() != nil {
				clientGone = true
				break
			}
			if used.Name() == fallback.Name() {
				h.sendEvent(w, flusher, turnEvent{Error: "failed to generate response", Done: true})
				return
			}

			// Backend died mid-turn: swap in the synthetic fallback for the
			// remainder so the client never sees an aborted stream.
			log.Printf("[chat] provider %s stream failed, substituting %s: %v", used.Name(), fallback.Name(), recvErr)
			stream.Close()
			used = fallback
			replacement, fallbackErr := provider.Fragments(ctx, used, message)
			if fallbackErr != nil {
				h.sendEvent(w, flusher, turnEvent{Error: "failed to generate response", Done: true})
				return
			}
			stream = replacement
			continue
		}
		if fragment == "" {
			continue
		}

		accumulated.WriteString(fragment)
		h.sendEvent(w, flusher, turnEvent{Content: fragment, Done: false})
	}

	// On disconnect, stop writing to the client but still record what was
	// produced; persistence there is best-effort.
	persistCtx := ctx
	if clientGone {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	content := strings.TrimSpace(accumulated.String())
	assistant, err := h.store.CreateMessage(persistCtx, conversationID, chatModel.RoleAssistant, content,
		map[string]any{"provider": used.Name()})
	if err != nil {
		log.Printf("[chat] save assistant message failed: %v", err)
		if !clientGone {
			h.sendEvent(w, flusher, turnEvent{Error: "failed to generate response", Done: true})
		}
		return
	}

	if clientGone {
		log.Printf("[chat] client disconnected mid-turn, persisted partial response for conversation=%s", conversationID)
		return
	}

	h.sendEvent(w, flusher, turnEvent{
		Done:           true,
		MessageID:      assistant.ID,
		ConversationID: conversationID,
	})
}

func (h *Handler) sendEvent(w http.ResponseWriter, flusher http.Flusher, event turnEvent) {
	utils.SendSSEChunk(w, flusher, event)
}

// titleFor derives a conversation title from the opening message.
func titleFor(message string) string {
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit]) + "..."
}
