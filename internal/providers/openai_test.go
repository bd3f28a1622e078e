package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const chatCompletionBody = `{
	"id":"chatcmpl-1",
	"object":"chat.completion",
	"created":1,
	"model":"gpt-4-1106-preview",
	"choices":[{"index":0,"finish_reason":"stop","logprobs":null,
		"message":{"role":"assistant","content":"{\"name\":\"Old Fashioned\"}","refusal":null}}],
	"usage":{"prompt_tokens":42,"completion_tokens":7,"total_tokens":49}
}`

func TestOpenAIChatSuccess(t *testing.T) {
	var payload map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatCompletionBody))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	rf, err := NewJSONSchemaFormat(map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "cocktails",
			"strict": true,
			"schema": map[string]any{"type": "object"},
		},
	})
	if err != nil {
		t.Fatalf("NewJSONSchemaFormat() error = %v", err)
	}

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "classify"},
			{Role: "user", Content: "cocktail : Old Fashioned"},
		},
		ResponseFormat: rf,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success result")
	}
	if result.Content != `{"name":"Old Fashioned"}` {
		t.Fatalf("unexpected content %q", result.Content)
	}
	if len(result.ParsedJSON) == 0 {
		t.Fatal("expected ParsedJSON to be populated")
	}
	if result.PromptTokens != 42 || result.CompletionTokens != 7 || result.TotalTokens != 49 {
		t.Fatalf("unexpected token counts %+v", result)
	}
	if result.RequestID == "" {
		t.Fatal("expected generated request id")
	}

	if got, _ := payload["model"].(string); got != OpenAIDefaultModel {
		t.Fatalf("expected default model %s, got %q", OpenAIDefaultModel, got)
	}
	msgs, _ := payload["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if role, _ := msgs[0].(map[string]any)["role"].(string); role != "system" {
		t.Fatalf("expected first message role system, got %q", role)
	}
	format, _ := payload["response_format"].(map[string]any)
	if typ, _ := format["type"].(string); typ != "json_schema" {
		t.Fatalf("expected response_format json_schema, got %v", format)
	}
	js, _ := format["json_schema"].(map[string]any)
	if name, _ := js["name"].(string); name != "cocktails" {
		t.Fatalf("expected schema name cocktails, got %v", js["name"])
	}
	if strict, _ := js["strict"].(bool); !strict {
		t.Fatalf("expected strict schema, got %v", js["strict"])
	}
}

func TestOpenAIChatAuthErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","param":"","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "YOUR_API_KEY_HERE", BaseURL: server.URL})

	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", apiErr.StatusCode)
	}
	if result == nil || result.Success {
		t.Fatal("expected failed result alongside error")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected exactly one request, got %d", n)
	}
}

func TestOpenAIChatRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit","type":"rate_limit_error","param":"","code":"rate_limit"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "hi"}},
	})
	rle, ok := IsRateLimitError(err)
	if !ok {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if rle.RetryAfter != 3*time.Second {
		t.Fatalf("expected RetryAfter=3s, got %v", rle.RetryAfter)
	}
}

func TestOpenAIChatRejectsUnknownRole(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: "http://127.0.0.1:0"})
	_, err := client.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "narrator", Content: "hi"}},
	})
	if err == nil {
		t.Fatal("expected error for unsupported role")
	}
}
