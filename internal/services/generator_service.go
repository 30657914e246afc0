package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"dailybriefing/internal/models"
)

const (
	// TemplateDelimiter separates machine-usable prompt content from trailing human notes
	TemplateDelimiter = "---"
	// DatePlaceholder is substituted with the briefing date
	DatePlaceholder = "{date}"
)

// GeneratorConfig holds the generation settings for one run
type GeneratorConfig struct {
	PromptFile       string
	Model            string
	MaxTokens        int
	ThinkingBudget   int
	WebSearch        bool
	WebSearchMaxUses int
}

// GeneratorService builds the prompt, calls the model and extracts the briefing
type GeneratorService struct {
	client  ModelClient
	cfg     GeneratorConfig
	filter  *NarrationFilter
	metrics *Metrics
	now     func() time.Time
}

// NewGeneratorService creates a new generator
func NewGeneratorService(client ModelClient, cfg GeneratorConfig, filter *NarrationFilter) *GeneratorService {
	if filter == nil {
		filter = NewNarrationFilter(DefaultNarrationPhrases())
	}
	return &GeneratorService{
		client: client,
		cfg:    cfg,
		filter: filter,
		now:    time.Now,
	}
}

// WithMetrics attaches metrics recording
func (s *GeneratorService) WithMetrics(m *Metrics) *GeneratorService {
	s.metrics = m
	return s
}

// LoadPromptTemplate reads the template at path and strips everything after the first delimiter
func LoadPromptTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w at %s", ErrTemplateMissing, path)
		}
		return "", fmt.Errorf("%w: %v", ErrTemplateUnreadable, err)
	}

	content, _, _ := strings.Cut(string(data), TemplateDelimiter)
	return strings.TrimSpace(content), nil
}

// LoadTemplate loads the configured prompt template
func (s *GeneratorService) LoadTemplate() (string, error) {
	return LoadPromptTemplate(s.cfg.PromptFile)
}

// BuildPrompt substitutes the date label into the template
func BuildPrompt(template, date string) string {
	return strings.ReplaceAll(template, DatePlaceholder, date)
}

// CallModel issues the single generation request
func (s *GeneratorService) CallModel(ctx context.Context, prompt string) (*models.ModelResponse, error) {
	start := time.Now()
	resp, err := s.client.CreateMessage(ctx, ModelRequest{
		Model:            s.cfg.Model,
		Prompt:           prompt,
		MaxTokens:        s.cfg.MaxTokens,
		ThinkingBudget:   s.cfg.ThinkingBudget,
		WebSearch:        s.cfg.WebSearch,
		WebSearchMaxUses: s.cfg.WebSearchMaxUses,
	})
	s.metrics.ObserveGeneration(time.Since(start), resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return resp, nil
}

// ExtractDocument cleans the response segments into a document body
func (s *GeneratorService) ExtractDocument(segments []models.Segment) Extraction {
	return s.filter.Extract(segments)
}

// Generate runs the full generation pipeline and returns the briefing
func (s *GeneratorService) Generate(ctx context.Context) (*models.Briefing, error) {
	date := models.FormatBriefingDate(s.now())

	template, err := s.LoadTemplate()
	if err != nil {
		return nil, err
	}
	prompt := BuildPrompt(template, date)

	log.Printf("🧠 [GENERATOR] Requesting briefing for %s (model: %s, thinking budget: %d, web search: %v)",
		date, s.cfg.Model, s.cfg.ThinkingBudget, s.cfg.WebSearch)

	resp, err := s.CallModel(ctx, prompt)
	if err != nil {
		return nil, err
	}

	extraction := s.ExtractDocument(resp.Segments)
	log.Printf("✅ [GENERATOR] Received %d segments (stop: %s, output tokens: %d), document is %d chars",
		len(resp.Segments), resp.StopReason, resp.Usage.OutputTokens, len(extraction.Body))

	return &models.Briefing{
		Date:             date,
		Body:             extraction.Body,
		ReasoningExcerpt: extraction.ReasoningExcerpt,
		Model:            s.cfg.Model,
		GeneratedAt:      s.now(),
	}, nil
}
