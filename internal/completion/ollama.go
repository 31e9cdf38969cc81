package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaBase = "http://localhost:11434"

// OllamaClient talks to a local Ollama server via /api/generate. Image parts
// are flagged in the prompt text rather than sent inline.
type OllamaClient struct {
	apiBase     string
	model       string
	client      *http.Client
	retryConfig RetryConfig
}

func NewOllamaClient(apiBase, model string) *OllamaClient {
	if apiBase == "" {
		apiBase = defaultOllamaBase
	}
	return &OllamaClient{
		apiBase:     strings.TrimRight(apiBase, "/"),
		model:       model,
		client:      &http.Client{Timeout: 60 * time.Second},
		retryConfig: DefaultRetryConfig(),
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (c *OllamaClient) Generate(ctx context.Context, systemPrompt, userPrompt string, images []ImagePart) (string, error) {
	prompt := userPrompt
	if len(images) > 0 {
		prompt += "\n[Note: This message includes image attachments. Please analyze them if your model supports vision.]"
	}

	body := ollamaRequest{
		Model:  c.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: false,
	}

	return RetryDo(ctx, c.retryConfig, func() (string, error) {
		data, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("ollama: marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/api/generate", bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("ollama: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("ollama: request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			return "", &HTTPError{
				Status:     resp.StatusCode,
				Body:       fmt.Sprintf("ollama: %s", string(respBody)),
				RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			}
		}

		var out ollamaResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return "", fmt.Errorf("ollama: decode response: %w", ErrMalformedResponse)
		}
		if out.Response == "" {
			return "", fmt.Errorf("ollama: empty response: %w", ErrMalformedResponse)
		}
		return strings.TrimSpace(out.Response), nil
	})
}
