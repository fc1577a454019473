package conversation

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/auth"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/store"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/pkg/utils"
)

// Handler serves the conversation history API backing the sidebar.
type Handler struct {
	store store.Store
}

func New(st store.Store) *Handler {
	return &Handler{store: st}
}

// RegisterRoutes mounts the conversation CRUD endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/conversations", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{conversationID}", h.handleGet)
		r.Patch("/{conversationID}", h.handleUpdateTitle)
		r.Delete("/{conversationID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.store.GetConversations(r.Context(), auth.Owner(r.Context()))
	if err != nil {
		log.Printf("[conversation] list failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch conversations")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"conversations": conversations})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		utils.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}

	conversation, err := h.store.CreateConversation(r.Context(), auth.Owner(r.Context()), title)
	if err != nil {
		log.Printf("[conversation] create failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to create conversation")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, map[string]any{"conversation": conversation})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	conversation, ok, err := h.store.GetConversation(r.Context(), id)
	if err != nil {
		log.Printf("[conversation] get failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch conversation")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"conversation": conversation})
}

func (h *Handler) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		utils.RespondError(w, http.StatusBadRequest, "title is required")
		return
	}

	conversation, ok, err := h.store.UpdateConversationTitle(r.Context(), id, title)
	if err != nil {
		log.Printf("[conversation] update failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to update conversation")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "conversation not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"conversation": conversation})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	deleted, err := h.store.DeleteConversation(r.Context(), id)
	if err != nil {
		log.Printf("[conversation] delete failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete conversation")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": deleted})
}
