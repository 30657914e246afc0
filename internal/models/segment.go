package models

// SegmentKind classifies a block of model output
type SegmentKind string

const (
	SegmentReasoning  SegmentKind = "reasoning"
	SegmentText       SegmentKind = "text"
	SegmentToolUse    SegmentKind = "tool_use"
	SegmentToolResult SegmentKind = "tool_result"
	SegmentUnknown    SegmentKind = "unknown"
)

// Segment is one typed block of a model response, in response order
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text,omitempty"`
}

// TokenUsage reports token accounting for a single generation call
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ModelResponse is the provider-neutral result of one generation call
type ModelResponse struct {
	ID         string     `json:"id"`
	Model      string     `json:"model"`
	Segments   []Segment  `json:"segments"`
	StopReason string     `json:"stop_reason"`
	Usage      TokenUsage `json:"usage"`
}

// ReasoningSegment builds a reasoning segment
func ReasoningSegment(text string) Segment {
	return Segment{Kind: SegmentReasoning, Text: text}
}

// TextSegment builds a text segment
func TextSegment(text string) Segment {
	return Segment{Kind: SegmentText, Text: text}
}
