package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	huggingFaceName = "huggingface"
	// DialoGPT gives better conversational completions than the default
	// text-generation models on the hosted inference API.
	huggingFaceURL = "https://api-inference.huggingface.co/models/microsoft/DialoGPT-large"
)

// HuggingFace calls the hosted inference API. The endpoint only returns
// whole completions, so incremental output comes from re-chunking.
type HuggingFace struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewHuggingFace(apiKey string) *HuggingFace {
	return &HuggingFace{
		apiKey:   apiKey,
		endpoint: huggingFaceURL,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *HuggingFace) Name() string    { return huggingFaceName }
func (p *HuggingFace) Available() bool { return p.apiKey != "" }

func (p *HuggingFace) Invoke(ctx context.Context, prompt string) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{"inputs": prompt})
	if err != nil {
		return "", fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &RequestError{Provider: huggingFaceName, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &RequestError{Provider: huggingFaceName, Status: resp.StatusCode, Message: string(detail)}
	}

	var payload []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &RequestError{Provider: huggingFaceName, Message: "malformed inference response: " + err.Error()}
	}
	if len(payload) == 0 || payload[0].GeneratedText == "" {
		return "", &RequestError{Provider: huggingFaceName, Message: "no response generated"}
	}
	return payload[0].GeneratedText, nil
}
