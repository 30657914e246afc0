package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dailybriefing/internal/models"
)

func newAnthropicTestServer(t *testing.T, status int, body string, captured *anthropicRequest, headers *http.Header) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if headers != nil {
			*headers = r.Header.Clone()
		}
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(raw, captured); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAnthropicClient_CreateMessage(t *testing.T) {
	responseBody := `{
		"id": "msg_01",
		"model": "claude-sonnet-4-5-20250929",
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 120, "output_tokens": 3400},
		"content": [
			{"type": "thinking", "thinking": "Planning the briefing", "signature": "sig"},
			{"type": "text", "text": "Let me search for news."},
			{"type": "server_tool_use", "id": "srvtoolu_1", "name": "web_search", "input": {"query": "ai news"}},
			{"type": "web_search_tool_result", "tool_use_id": "srvtoolu_1", "content": [{"type": "web_search_result", "url": "https://example.com"}]},
			{"type": "text", "text": "# AI Research Briefing\nBody"}
		]
	}`

	var captured anthropicRequest
	var headers http.Header
	server := newAnthropicTestServer(t, http.StatusOK, responseBody, &captured, &headers)

	client := NewAnthropicClient("test-api-key", server.URL)
	resp, err := client.CreateMessage(context.Background(), ModelRequest{
		Model:            "claude-sonnet-4-5-20250929",
		Prompt:           "Brief me on January 13, 2026",
		MaxTokens:        16000,
		ThinkingBudget:   10000,
		WebSearch:        true,
		WebSearchMaxUses: 5,
	})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	// Request shape
	if headers.Get("x-api-key") != "test-api-key" {
		t.Errorf("x-api-key header = %q", headers.Get("x-api-key"))
	}
	if headers.Get("anthropic-version") != anthropicAPIVersion {
		t.Errorf("anthropic-version header = %q", headers.Get("anthropic-version"))
	}
	if captured.MaxTokens != 16000 {
		t.Errorf("max_tokens = %d", captured.MaxTokens)
	}
	if captured.Thinking == nil || captured.Thinking.Type != "enabled" || captured.Thinking.BudgetTokens != 10000 {
		t.Errorf("thinking = %+v", captured.Thinking)
	}
	if len(captured.Tools) != 1 || captured.Tools[0].Type != webSearchToolType || captured.Tools[0].MaxUses != 5 {
		t.Errorf("tools = %+v", captured.Tools)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" || captured.Messages[0].Content != "Brief me on January 13, 2026" {
		t.Errorf("messages = %+v", captured.Messages)
	}

	// Response mapping
	wantKinds := []models.SegmentKind{
		models.SegmentReasoning,
		models.SegmentText,
		models.SegmentToolUse,
		models.SegmentToolResult,
		models.SegmentText,
	}
	if len(resp.Segments) != len(wantKinds) {
		t.Fatalf("got %d segments, want %d", len(resp.Segments), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if resp.Segments[i].Kind != kind {
			t.Errorf("segment %d kind = %s, want %s", i, resp.Segments[i].Kind, kind)
		}
	}
	if resp.Segments[0].Text != "Planning the briefing" {
		t.Errorf("reasoning text = %q", resp.Segments[0].Text)
	}
	if resp.Usage.OutputTokens != 3400 || resp.Usage.InputTokens != 120 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.StopReason != "end_turn" {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
}

func TestAnthropicClient_OmitsOptionalFeatures(t *testing.T) {
	var captured anthropicRequest
	server := newAnthropicTestServer(t, http.StatusOK, `{"content":[{"type":"text","text":"ok"}]}`, &captured, nil)

	client := NewAnthropicClient("k", server.URL)
	if _, err := client.CreateMessage(context.Background(), ModelRequest{Model: "m", Prompt: "p", MaxTokens: 100}); err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}

	if captured.Thinking != nil {
		t.Errorf("thinking should be omitted, got %+v", captured.Thinking)
	}
	if len(captured.Tools) != 0 {
		t.Errorf("tools should be omitted, got %+v", captured.Tools)
	}
}

func TestAnthropicClient_APIError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantClass string
	}{
		{
			name:      "overloaded",
			status:    529,
			body:      `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`,
			wantClass: ErrorClassOverloaded,
		},
		{
			name:      "rate limited",
			status:    http.StatusTooManyRequests,
			body:      `{"type":"error","error":{"type":"rate_limit_error","message":"Number of request tokens has exceeded your per-minute rate limit"}}`,
			wantClass: ErrorClassRateLimit,
		},
		{
			name:      "bad key",
			status:    http.StatusUnauthorized,
			body:      `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			wantClass: ErrorClassAuth,
		},
		{
			name:      "low credit",
			status:    http.StatusBadRequest,
			body:      `{"type":"error","error":{"type":"invalid_request_error","message":"Your credit balance is too low"}}`,
			wantClass: ErrorClassQuota,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newAnthropicTestServer(t, tt.status, tt.body, nil, nil)
			client := NewAnthropicClient("k", server.URL)

			_, err := client.CreateMessage(context.Background(), ModelRequest{Model: "m", Prompt: "p", MaxTokens: 10})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", apiErr.StatusCode, tt.status)
			}
			if apiErr.Class() != tt.wantClass {
				t.Errorf("class = %s, want %s", apiErr.Class(), tt.wantClass)
			}
		})
	}
}

func TestAnthropicClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewAnthropicClient("k", url)
	_, err := client.CreateMessage(context.Background(), ModelRequest{Model: "m", Prompt: "p", MaxTokens: 10})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure should not be an APIError: %v", err)
	}
}
