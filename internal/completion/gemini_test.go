package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func geminiOK(text string) []byte {
	resp := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
	data, _ := json.Marshal(resp)
	return data
}

func TestGeminiGenerate(t *testing.T) {
	var gotReq geminiRequest
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write(geminiOK("  answer text  "))
	}))
	defer srv.Close()

	c := NewGeminiClient("test-key", srv.URL, "gemini-2.0-flash")
	got, err := c.Generate(context.Background(), "system", "user", []ImagePart{{MimeType: "image/png", Data: "aGk="}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "answer text" {
		t.Errorf("Generate = %q, want trimmed answer", got)
	}
	if gotKey != "test-key" {
		t.Errorf("x-goog-api-key = %q", gotKey)
	}
	if gotReq.SystemInstruction.Parts[0].Text != "system" {
		t.Errorf("system_instruction = %+v", gotReq.SystemInstruction)
	}
	parts := gotReq.Contents[0].Parts
	if len(parts) != 2 || parts[0].Text != "user" || parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/png" {
		t.Errorf("contents parts = %+v", parts)
	}
	if len(gotReq.SafetySettings) != 4 {
		t.Errorf("safety settings = %d, want 4", len(gotReq.SafetySettings))
	}
}

func TestGeminiOmitsKeyWhenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header[http.CanonicalHeaderKey("x-goog-api-key")]; ok {
			t.Error("x-goog-api-key sent despite empty key")
		}
		w.Write(geminiOK("ok"))
	}))
	defer srv.Close()

	c := NewGeminiClient("  ", srv.URL, "m")
	if _, err := c.Generate(context.Background(), "s", "u", nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestGeminiRetriesOn429(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(geminiOK("recovered"))
	}))
	defer srv.Close()

	c := NewGeminiClient("k", srv.URL, "m")
	c.retryConfig = RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}

	got, err := c.Generate(context.Background(), "s", "u", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "recovered" || calls != 3 {
		t.Errorf("got %q after %d calls, want recovered after 3", got, calls)
	}
}

func TestGeminiGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewGeminiClient("k", srv.URL, "m")
	c.retryConfig = RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}

	_, err := c.Generate(context.Background(), "s", "u", nil)
	if !IsRateLimited(err) {
		t.Errorf("err = %v, want rate-limited", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGeminiNoRetryOnClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewGeminiClient("k", srv.URL, "m")
	c.retryConfig = RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}

	if _, err := c.Generate(context.Background(), "s", "u", nil); err == nil {
		t.Fatal("expected error on 400")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 400)", calls)
	}
}

func TestGeminiMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	c := NewGeminiClient("k", srv.URL, "m")
	_, err := c.Generate(context.Background(), "s", "u", nil)
	if !IsMalformed(err) {
		t.Errorf("err = %v, want malformed", err)
	}
}
