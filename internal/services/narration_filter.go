package services

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"dailybriefing/internal/models"

	"gopkg.in/yaml.v3"
)

// ReasoningExcerptLimit bounds the reasoning excerpt kept on a briefing (in runes)
const ReasoningExcerptLimit = 500

//go:embed narration_phrases.yaml
var defaultNarrationPhrasesRaw []byte

// NarrationPhrases configures the narration filter
type NarrationPhrases struct {
	DocumentStart string   `yaml:"document_start"`
	Skip          []string `yaml:"skip"`
	Inline        []string `yaml:"inline"`
}

// DefaultNarrationPhrases returns the embedded phrase sets
func DefaultNarrationPhrases() NarrationPhrases {
	phrases, err := parseNarrationPhrases(defaultNarrationPhrasesRaw)
	if err != nil {
		panic(fmt.Sprintf("embedded narration phrases are invalid: %v", err))
	}
	return phrases
}

// LoadNarrationPhrases reads phrase sets from a YAML file.
// An empty path returns the embedded defaults.
func LoadNarrationPhrases(path string) (NarrationPhrases, error) {
	if path == "" {
		return DefaultNarrationPhrases(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return NarrationPhrases{}, fmt.Errorf("failed to read narration phrases file: %w", err)
	}

	phrases, err := parseNarrationPhrases(data)
	if err != nil {
		return NarrationPhrases{}, fmt.Errorf("failed to parse narration phrases file %s: %w", path, err)
	}
	return phrases, nil
}

func parseNarrationPhrases(data []byte) (NarrationPhrases, error) {
	var phrases NarrationPhrases
	if err := yaml.Unmarshal(data, &phrases); err != nil {
		return NarrationPhrases{}, err
	}
	return phrases, nil
}

// Extraction is the cleaned document plus the optional reasoning excerpt
type Extraction struct {
	Body             string
	ReasoningExcerpt *string
}

// NarrationFilter turns raw model segments into a publishable document.
//
// Lines are classified by a two-state machine. While not skipping, a line
// matching a skip phrase switches to skipping and a line matching an inline
// phrase is dropped alone. While skipping, every line is dropped until a
// heading, which is kept and ends the skip. Headings never match a phrase, so
// filtering already-clean output is a no-op.
type NarrationFilter struct {
	documentStart string
	skip          []string
	inline        []string
}

// NewNarrationFilter creates a filter for the given phrase sets
func NewNarrationFilter(phrases NarrationPhrases) *NarrationFilter {
	return &NarrationFilter{
		documentStart: phrases.DocumentStart,
		skip:          normalizePhrases(phrases.Skip),
		inline:        normalizePhrases(phrases.Inline),
	}
}

func normalizePhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Extract builds the document body from text segments and captures the reasoning excerpt
func (f *NarrationFilter) Extract(segments []models.Segment) Extraction {
	var texts []string
	var excerpt *string

	for _, seg := range segments {
		switch seg.Kind {
		case models.SegmentText:
			texts = append(texts, seg.Text)
		case models.SegmentReasoning:
			if excerpt == nil && seg.Text != "" {
				truncated := truncateRunes(seg.Text, ReasoningExcerptLimit)
				excerpt = &truncated
			}
		}
	}

	buffer := strings.Join(texts, "\n")
	buffer = f.trimPreamble(buffer)

	return Extraction{
		Body:             f.FilterLines(buffer),
		ReasoningExcerpt: excerpt,
	}
}

// trimPreamble drops everything before the first document-start marker
func (f *NarrationFilter) trimPreamble(buffer string) string {
	if f.documentStart == "" {
		return buffer
	}
	if idx := strings.Index(buffer, f.documentStart); idx >= 0 {
		return buffer[idx:]
	}
	return buffer
}

// FilterLines runs the narration state machine over buffer and trims the result
func (f *NarrationFilter) FilterLines(buffer string) string {
	lines := strings.Split(buffer, "\n")
	kept := make([]string, 0, len(lines))
	skipping := false

	for _, line := range lines {
		normalized := strings.ToLower(strings.TrimSpace(line))
		heading := isHeading(normalized)

		if skipping {
			if heading {
				skipping = false
				kept = append(kept, line)
			}
			continue
		}

		if heading {
			kept = append(kept, line)
			continue
		}

		if containsAny(normalized, f.skip) {
			skipping = true
			continue
		}

		if containsAny(normalized, f.inline) {
			continue
		}

		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isHeading(normalized string) bool {
	return strings.HasPrefix(normalized, "#")
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
