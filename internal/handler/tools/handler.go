package tools

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/pkg/utils"
)

// Handler serves the stateless tool shims: mock generators that stand in for
// real image/search/code backends, plus per-conversation canvas storage.
type Handler struct {
	mu     sync.Mutex
	canvas map[string]json.RawMessage
}

func New() *Handler {
	return &Handler{canvas: make(map[string]json.RawMessage)}
}

// RegisterRoutes mounts the tool endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tools", func(r chi.Router) {
		r.Post("/image", h.handleImage)
		r.Post("/search", h.handleSearch)
		r.Post("/code", h.handleCode)
		r.Get("/canvas", h.handleGetCanvas)
		r.Post("/canvas", h.handleSaveCanvas)
	})
}

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Prompt) == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	label := payload.Prompt
	if runes := []rune(label); len(runes) > 20 {
		label = string(runes[:20])
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"imageUrl": "https://via.placeholder.com/512x512.png?text=" + url.QueryEscape(label),
		"prompt":   payload.Prompt,
		"note":     "This is a mock image. Configure an image generation API key to generate real images.",
	})
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Query) == "" {
		utils.RespondError(w, http.StatusBadRequest, "query is required")
		return
	}

	query := payload.Query
	slug := strings.ToLower(strings.ReplaceAll(query, " ", "-"))
	results := []searchResult{
		{
			Title:   query + " - Wikipedia",
			URL:     "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(query, " ", "_"),
			Snippet: "Learn about " + query + ". This is a mock search result for development purposes. In production, this would use the Tavily API or another search service.",
			Source:  "Mock Search",
		},
		{
			Title:   query + " - Documentation",
			URL:     "https://docs.example.com/" + slug,
			Snippet: "Official documentation for " + query + ". Find guides, tutorials, and API references.",
			Source:  "Mock Search",
		},
		{
			Title:   "How to use " + query,
			URL:     "https://example.com/guides/" + slug,
			Snippet: "A comprehensive guide to " + query + ". Learn best practices and advanced techniques.",
			Source:  "Mock Search",
		},
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) handleCode(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Prompt   string `json:"prompt"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Prompt) == "" {
		utils.RespondError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	language := payload.Language
	if language == "" {
		language = detectLanguage(payload.Prompt)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"code":     codeTemplate(payload.Prompt, language),
		"language": language,
	})
}

func detectLanguage(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "python"), strings.Contains(lower, "py"):
		return "python"
	case strings.Contains(lower, "typescript"), strings.Contains(lower, "ts"):
		return "typescript"
	case strings.Contains(lower, "javascript"), strings.Contains(lower, "js"):
		return "javascript"
	case strings.Contains(lower, "java"):
		return "java"
	case strings.Contains(lower, "golang"), strings.Contains(lower, "go"):
		return "go"
	case strings.Contains(lower, "rust"):
		return "rust"
	case strings.Contains(lower, "html"):
		return "html"
	case strings.Contains(lower, "sql"):
		return "sql"
	}
	return "javascript"
}

func codeTemplate(prompt, language string) string {
	templates := map[string]string{
		"python":     "# Generated Python code for: " + prompt + "\n\ndef main():\n    pass\n\nif __name__ == \"__main__\":\n    main()",
		"javascript": "// Generated JavaScript code for: " + prompt + "\n\nfunction main() {\n}\n\nmain();",
		"typescript": "// Generated TypeScript code for: " + prompt + "\n\nfunction main(): void {\n}\n\nmain();",
		"java":       "// Generated Java code for: " + prompt + "\n\npublic class Main {\n    public static void main(String[] args) {\n    }\n}",
		"go":         "// Generated Go code for: " + prompt + "\n\npackage main\n\nfunc main() {\n}",
		"html":       "<!-- Generated HTML for: " + prompt + " -->\n<!DOCTYPE html>\n<html>\n<head>\n    <title>Page</title>\n</head>\n<body>\n</body>\n</html>",
	}
	if template, ok := templates[language]; ok {
		return template
	}
	return templates["javascript"]
}

func (h *Handler) handleGetCanvas(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversationId")
	if conversationID == "" {
		utils.RespondError(w, http.StatusBadRequest, "conversation id required")
		return
	}

	h.mu.Lock()
	data, ok := h.canvas[conversationID]
	h.mu.Unlock()

	if !ok {
		data = json.RawMessage(`{"drawings":[],"notes":[]}`)
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{"canvasData": data})
}

func (h *Handler) handleSaveCanvas(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ConversationID string          `json:"conversationId"`
		CanvasData     json.RawMessage `json:"canvasData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil ||
		payload.ConversationID == "" || len(payload.CanvasData) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "conversation id and canvas data required")
		return
	}

	h.mu.Lock()
	h.canvas[payload.ConversationID] = payload.CanvasData
	h.mu.Unlock()

	utils.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
