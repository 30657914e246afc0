package models

import (
	"time"
)

// BriefingDateLayout formats the date label used in the prompt, subject and email header
const BriefingDateLayout = "January 02, 2006"

// Briefing is a finalized, cleaned briefing ready for rendering and dispatch.
// It is built once per run and never mutated afterwards.
type Briefing struct {
	Date             string    `json:"date"`
	Body             string    `json:"briefing"`
	ReasoningExcerpt *string   `json:"thinking_summary,omitempty"`
	Model            string    `json:"model"`
	GeneratedAt      time.Time `json:"timestamp"`
}

// FormatBriefingDate returns the date label for t
func FormatBriefingDate(t time.Time) string {
	return t.Format(BriefingDateLayout)
}

// HasReasoning reports whether a reasoning excerpt was captured
func (b *Briefing) HasReasoning() bool {
	return b.ReasoningExcerpt != nil
}
