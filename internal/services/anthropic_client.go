package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"dailybriefing/internal/models"

	"github.com/go-resty/resty/v2"
)

const (
	anthropicAPIVersion   = "2023-06-01"
	anthropicMessagesPath = "/v1/messages"
	webSearchToolType     = "web_search_20250305"
	webSearchToolName     = "web_search"
)

// ModelRequest describes a single generation call
type ModelRequest struct {
	Model            string
	Prompt           string
	MaxTokens        int
	ThinkingBudget   int // 0 disables extended thinking
	WebSearch        bool
	WebSearchMaxUses int
}

// ModelClient issues one blocking generation request
type ModelClient interface {
	CreateMessage(ctx context.Context, req ModelRequest) (*models.ModelResponse, error)
}

// AnthropicClient calls the Anthropic Messages API.
// It performs no retries and sets no timeout of its own; the caller's context bounds the call.
type AnthropicClient struct {
	http *resty.Client
}

// NewAnthropicClient creates a client for the given credential and base URL
func NewAnthropicClient(apiKey, baseURL string) *AnthropicClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", anthropicAPIVersion).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	return &AnthropicClient{http: client}
}

type anthropicThinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Thinking  *anthropicThinking `json:"thinking,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
	Tools     []anthropicTool    `json:"tools,omitempty"`
}

type anthropicContentBlock struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	Thinking string          `json:"thinking,omitempty"`
	Name     string          `json:"name,omitempty"`
	Input    json.RawMessage `json:"input,omitempty"`
	Content  json.RawMessage `json:"content,omitempty"`
}

type anthropicResponse struct {
	ID         string                  `json:"id"`
	Model      string                  `json:"model"`
	Content    []anthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func buildAnthropicRequest(req ModelRequest) anthropicRequest {
	body := anthropicRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}

	if req.ThinkingBudget > 0 {
		body.Thinking = &anthropicThinking{Type: "enabled", BudgetTokens: req.ThinkingBudget}
	}

	if req.WebSearch {
		body.Tools = []anthropicTool{{
			Type:    webSearchToolType,
			Name:    webSearchToolName,
			MaxUses: req.WebSearchMaxUses,
		}}
	}

	return body
}

// CreateMessage sends the prompt and returns the typed content segments
func (c *AnthropicClient) CreateMessage(ctx context.Context, req ModelRequest) (*models.ModelResponse, error) {
	var result anthropicResponse
	var apiErr anthropicErrorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(buildAnthropicRequest(req)).
		SetResult(&result).
		SetError(&apiErr).
		Post(anthropicMessagesPath)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.IsError() {
		log.Printf("⚠️ [ANTHROPIC] API error (status %d): %s", resp.StatusCode(), apiErr.Error.Message)
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Type:       apiErr.Error.Type,
			Message:    apiErr.Error.Message,
			Body:       resp.String(),
		}
	}

	return result.toModelResponse(), nil
}

func (r *anthropicResponse) toModelResponse() *models.ModelResponse {
	out := &models.ModelResponse{
		ID:         r.ID,
		Model:      r.Model,
		StopReason: r.StopReason,
		Segments:   make([]models.Segment, 0, len(r.Content)),
		Usage: models.TokenUsage{
			InputTokens:  r.Usage.InputTokens,
			OutputTokens: r.Usage.OutputTokens,
		},
	}

	for _, block := range r.Content {
		out.Segments = append(out.Segments, block.toSegment())
	}
	return out
}

func (b anthropicContentBlock) toSegment() models.Segment {
	switch b.Type {
	case "text":
		return models.Segment{Kind: models.SegmentText, Text: b.Text}
	case "thinking":
		return models.Segment{Kind: models.SegmentReasoning, Text: b.Thinking}
	case "redacted_thinking":
		return models.Segment{Kind: models.SegmentReasoning}
	case "tool_use", "server_tool_use":
		return models.Segment{Kind: models.SegmentToolUse, Text: strings.TrimSpace(b.Name + " " + string(b.Input))}
	case "tool_result", "web_search_tool_result":
		return models.Segment{Kind: models.SegmentToolResult, Text: string(b.Content)}
	}
	return models.Segment{Kind: models.SegmentUnknown}
}
