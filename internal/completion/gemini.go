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

const defaultGeminiBase = "https://generativelanguage.googleapis.com"

// GeminiClient talks to the generativelanguage generateContent API, or any
// wrapper exposing the same wire format.
type GeminiClient struct {
	apiKey      string
	apiBase     string
	model       string
	client      *http.Client
	retryConfig RetryConfig
}

// NewGeminiClient builds a client for model. An empty apiBase targets the
// Google endpoint; custom wrappers often need no key.
func NewGeminiClient(apiKey, apiBase, model string) *GeminiClient {
	if apiBase == "" {
		apiBase = defaultGeminiBase
	}
	return &GeminiClient{
		apiKey:      apiKey,
		apiBase:     strings.TrimRight(apiBase, "/"),
		model:       model,
		client:      &http.Client{Timeout: 30 * time.Second},
		retryConfig: DefaultRetryConfig(),
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	SystemInstruction geminiContent         `json:"system_instruction"`
	Contents          []geminiContent       `json:"contents"`
	SafetySettings    []geminiSafetySetting `json:"safetySettings"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var geminiSafetyOff = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string, images []ImagePart) (string, error) {
	parts := make([]geminiPart, 0, 1+len(images))
	parts = append(parts, geminiPart{Text: userPrompt})
	for _, img := range images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{MimeType: img.MimeType, Data: img.Data},
		})
	}

	body := geminiRequest{
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents:          []geminiContent{{Role: "user", Parts: parts}},
		SafetySettings:    geminiSafetyOff,
	}

	return RetryDo(ctx, c.retryConfig, func() (string, error) {
		respBody, err := c.doRequest(ctx, body)
		if err != nil {
			return "", err
		}
		defer respBody.Close()

		var resp geminiResponse
		if err := json.NewDecoder(respBody).Decode(&resp); err != nil {
			return "", fmt.Errorf("gemini: decode response: %w", ErrMalformedResponse)
		}
		if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("gemini: empty candidates: %w", ErrMalformedResponse)
		}
		return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
	})
}

func (c *GeminiClient) doRequest(ctx context.Context, body any) (io.ReadCloser, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.apiBase, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := strings.TrimSpace(c.apiKey); key != "" {
		req.Header.Set("x-goog-api-key", key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &HTTPError{
			Status:     resp.StatusCode,
			Body:       fmt.Sprintf("gemini: %s", string(respBody)),
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return resp.Body, nil
}
