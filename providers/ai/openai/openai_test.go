package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leofalp/toonboard/internal/utils"
	"github.com/leofalp/toonboard/providers/ai"
)

func TestSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("expected bearer auth, got %q", got)
		}

		var body chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal("failed to decode request body: " + err.Error())
		}
		if body.Model != "gpt-4.1" {
			t.Errorf("expected model gpt-4.1, got %q", body.Model)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "plot" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		if body.MaxTokens == nil || *body.MaxTokens != 4000 {
			t.Errorf("expected max_tokens 4000, got %v", body.MaxTokens)
		}
		if body.Temperature == nil || *body.Temperature < 0.69 || *body.Temperature > 0.71 {
			t.Errorf("expected temperature 0.7, got %v", body.Temperature)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4.1",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  {\"a\":1}\n"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)
	}))
	defer server.Close()

	p := New().WithAPIKey("test-key").WithBaseURL(server.URL + "/")

	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{
		Model:            "gpt-4.1",
		SystemPrompt:     "you write storyboards",
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: "plot"}},
		GenerationConfig: &ai.GenerationConfig{MaxTokens: 4000, Temperature: 0.7},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Content is passed through untouched so recovery sees the raw text.
	if resp.Content != "  {\"a\":1}\n" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.FinishReason != "stop" || !p.IsStopMessage(resp) {
		t.Errorf("expected stop finish reason, got %q", resp.FinishReason)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 15 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestSendMessageMissingAPIKey(t *testing.T) {
	_, err := New().SendMessage(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestSendMessageNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"empty","choices":[]}`)
	}))
	defer server.Close()

	_, err := New().WithAPIKey("k").WithBaseURL(server.URL).SendMessage(context.Background(), ai.ChatRequest{})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestSendMessageStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer server.Close()

	_, err := New().WithAPIKey("k").WithBaseURL(server.URL).SendMessage(context.Background(), ai.ChatRequest{})
	var statusErr *utils.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}

func TestRequestToChatCompletionPrefersMaxOutputTokens(t *testing.T) {
	req := requestToChatCompletion(ai.ChatRequest{
		GenerationConfig: &ai.GenerationConfig{MaxTokens: 10, MaxOutputTokens: 20},
		ResponseFormat:   &ai.ResponseFormat{Type: "json_object"},
	})
	if req.MaxTokens != nil {
		t.Errorf("expected legacy max_tokens unset, got %d", *req.MaxTokens)
	}
	if req.MaxCompletionTokens == nil || *req.MaxCompletionTokens != 20 {
		t.Errorf("expected max_completion_tokens 20, got %v", req.MaxCompletionTokens)
	}
	if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
		t.Errorf("expected json_object response format, got %+v", req.ResponseFormat)
	}
	if len(req.Messages) != 0 {
		t.Errorf("expected no messages without system prompt, got %d", len(req.Messages))
	}
}

func TestIsStopMessage(t *testing.T) {
	p := New()
	tests := []struct {
		name string
		msg  *ai.ChatResponse
		want bool
	}{
		{"nil", nil, true},
		{"stop", &ai.ChatResponse{Content: "x", FinishReason: "stop"}, true},
		{"length", &ai.ChatResponse{Content: "x", FinishReason: "length"}, true},
		{"empty content", &ai.ChatResponse{}, true},
		{"in progress", &ai.ChatResponse{Content: "x", FinishReason: ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsStopMessage(tt.msg); got != tt.want {
				t.Errorf("IsStopMessage() = %v, want %v", got, tt.want)
			}
		})
	}
}
