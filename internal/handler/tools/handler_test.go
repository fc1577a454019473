package tools

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New().RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestImageTool(t *testing.T) {
	r := setupRouter()

	resp := doJSON(t, r, http.MethodPost, "/tools/image", map[string]string{"prompt": "a red fox"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(result["imageUrl"], "text=a+red+fox") {
		t.Fatalf("prompt not encoded into url: %q", result["imageUrl"])
	}
	if result["prompt"] != "a red fox" {
		t.Fatalf("prompt not echoed: %q", result["prompt"])
	}

	resp = doJSON(t, r, http.MethodPost, "/tools/image", map[string]string{"prompt": "  "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank prompt, got %d", resp.Code)
	}
}

func TestSearchTool(t *testing.T) {
	r := setupRouter()

	resp := doJSON(t, r, http.MethodPost, "/tools/search", map[string]string{"query": "gRPC streaming"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result struct {
		Results []searchResult `json:"results"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(result.Results))
	}
	for _, entry := range result.Results {
		if !strings.Contains(entry.Title, "gRPC streaming") && !strings.Contains(entry.Snippet, "gRPC streaming") {
			t.Fatalf("result does not mention query: %+v", entry)
		}
	}

	resp = doJSON(t, r, http.MethodPost, "/tools/search", map[string]string{})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing query, got %d", resp.Code)
	}
}

func TestCodeTool(t *testing.T) {
	r := setupRouter()

	resp := doJSON(t, r, http.MethodPost, "/tools/code", map[string]string{
		"prompt":   "binary search",
		"language": "python",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result["language"] != "python" {
		t.Fatalf("expected python, got %q", result["language"])
	}
	if !strings.Contains(result["code"], "binary search") || !strings.Contains(result["code"], "def main") {
		t.Fatalf("unexpected code template: %q", result["code"])
	}
}

func TestDetectLanguage(t *testing.T) {
	cases := []struct {
		prompt string
		want   string
	}{
		{"write python code", "python"},
		{"a golang web server", "go"},
		{"a rust iterator", "rust"},
		{"an html form", "html"},
		{"reverse a word", "javascript"},
	}
	for _, c := range cases {
		if got := detectLanguage(c.prompt); got != c.want {
			t.Fatalf("detectLanguage(%q) = %q, want %q", c.prompt, got, c.want)
		}
	}
}

func TestCanvasRoundTrip(t *testing.T) {
	r := setupRouter()

	// Unknown conversations start from an empty canvas.
	req := httptest.NewRequest(http.MethodGet, "/tools/canvas?conversationId=conv-1", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var empty struct {
		CanvasData struct {
			Drawings []any `json:"drawings"`
			Notes    []any `json:"notes"`
		} `json:"canvasData"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &empty); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(empty.CanvasData.Drawings) != 0 || len(empty.CanvasData.Notes) != 0 {
		t.Fatalf("expected empty canvas, got %+v", empty.CanvasData)
	}

	resp = doJSON(t, r, http.MethodPost, "/tools/canvas", map[string]any{
		"conversationId": "conv-1",
		"canvasData":     map[string]any{"drawings": []string{"circle"}, "notes": []string{}},
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tools/canvas?conversationId=conv-1", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var saved struct {
		CanvasData struct {
			Drawings []string `json:"drawings"`
		} `json:"canvasData"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(saved.CanvasData.Drawings) != 1 || saved.CanvasData.Drawings[0] != "circle" {
		t.Fatalf("canvas not persisted: %+v", saved.CanvasData)
	}
}

func TestCanvasValidation(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/tools/canvas", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without conversation id, got %d", resp.Code)
	}

	resp = doJSON(t, r, http.MethodPost, "/tools/canvas", map[string]any{"conversationId": "conv-1"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without canvas data, got %d", resp.Code)
	}
}
