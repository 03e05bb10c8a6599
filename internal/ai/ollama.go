package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ollama calls a local or remote Ollama server's generate endpoint with
// the JSON output format.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *Ollama) Name() string { return "ollama" }

// WithBaseURL returns a copy pointing at another server. The dashboard
// lets clients target their own Ollama instance per request.
func (o *Ollama) WithBaseURL(baseURL string) *Ollama {
	if baseURL == "" {
		return o
	}
	clone := *o
	clone.baseURL = baseURL
	return &clone
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Format  string         `json:"format"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (o *Ollama) Analyze(ctx context.Context, logs string) (*Analysis, error) {
	if o.baseURL == "" {
		return nil, fmt.Errorf("ollama server URL is not configured")
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  o.model,
		Prompt: fmt.Sprintf(promptTemplate, logs),
		Format: "json",
		Stream: false,
		Options: map[string]any{
			"temperature": 0.7,
			"top_p":       0.9,
			"num_predict": 2000,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, truncate(data, 512))
	}

	var or ollamaResponse
	if err := json.Unmarshal(data, &or); err != nil {
		return nil, fmt.Errorf("malformed ollama response: %w", err)
	}

	return parseAnalysis([]byte(or.Response))
}
