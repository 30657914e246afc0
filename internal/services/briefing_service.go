package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"dailybriefing/internal/config"
	"dailybriefing/internal/logging"
	"dailybriefing/internal/mail"
	"dailybriefing/internal/models"

	"github.com/google/uuid"
)

// NotificationTimeout bounds the failure notification, which runs detached
// from the run context so it still goes out after a timeout or shutdown.
const NotificationTimeout = 30 * time.Second

// Generator produces one cleaned briefing
type Generator interface {
	Generate(ctx context.Context) (*models.Briefing, error)
}

// Dispatcher delivers briefings and failure notifications
type Dispatcher interface {
	Dispatch(ctx context.Context, b *models.Briefing) (string, error)
	SendErrorNotification(ctx context.Context, message string)
}

// BriefingService runs the generate → dispatch pipeline once per trigger
type BriefingService struct {
	generator  Generator
	dispatcher Dispatcher
	metrics    *Metrics
	now        func() time.Time
}

// NewBriefingService wires a generator and dispatcher together
func NewBriefingService(generator Generator, dispatcher Dispatcher) *BriefingService {
	return &BriefingService{
		generator:  generator,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// WithMetrics attaches metrics recording
func (s *BriefingService) WithMetrics(m *Metrics) *BriefingService {
	s.metrics = m
	return s
}

// NewBriefingServiceFromConfig validates cfg and builds every client it needs.
// Validation runs first so missing settings never reach the network.
func NewBriefingServiceFromConfig(ctx context.Context, cfg *config.Config, metrics *Metrics) (*BriefingService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	phrases, err := LoadNarrationPhrases(cfg.NarrationPhrasesFile)
	if err != nil {
		return nil, err
	}

	sender, err := mail.NewSender(ctx, cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail sender: %w", err)
	}

	client := NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL)
	generator := NewGeneratorService(client, GeneratorConfig{
		PromptFile:       cfg.PromptFile,
		Model:            cfg.ModelID,
		MaxTokens:        cfg.MaxTokens,
		ThinkingBudget:   cfg.ThinkingBudgetTokens,
		WebSearch:        cfg.WebSearchEnabled,
		WebSearchMaxUses: cfg.WebSearchMaxUses,
	}, NewNarrationFilter(phrases)).WithMetrics(metrics)

	dispatcher := NewDispatchService(sender, cfg.SenderEmail, cfg.RecipientEmail).WithMetrics(metrics)

	return NewBriefingService(generator, dispatcher).WithMetrics(metrics), nil
}

// Run executes one briefing run. Every failure is caught here exactly once:
// it is logged, one failure notification is attempted and a 500 result returned.
func (s *BriefingService) Run(ctx context.Context, trigger string) models.RunResult {
	runID := uuid.NewString()
	logger := logging.WithRun(runID, trigger)
	date := models.FormatBriefingDate(s.now())
	start := time.Now()

	logger.Info("briefing run started", "date", date)
	log.Printf("🚀 [BRIEFING] Starting daily briefing generation (run: %s, trigger: %s)", runID, trigger)

	messageID, err := s.generateAndDispatch(ctx)
	s.metrics.ObserveRun(err)

	if err != nil {
		msg := fmt.Sprintf("Error generating daily briefing: %v", err)
		log.Printf("❌ [BRIEFING] %s", msg)
		logger.Error("briefing run failed", "error", err, "error_class", ClassifyError(err), "duration", time.Since(start))

		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotificationTimeout)
		defer cancel()
		s.dispatcher.SendErrorNotification(notifyCtx, msg)
		return models.NewFailureResult(date, err)
	}

	logger.Info("briefing run completed", "message_id", messageID, "duration", time.Since(start))
	log.Printf("✅ [BRIEFING] Briefing for %s generated and sent (message id: %s)", date, messageID)
	return models.NewSuccessResult(date, messageID)
}

func (s *BriefingService) generateAndDispatch(ctx context.Context) (string, error) {
	briefing, err := s.generator.Generate(ctx)
	if err != nil {
		return "", err
	}
	log.Printf("📝 [BRIEFING] Briefing generated successfully for %s", briefing.Date)

	return s.dispatcher.Dispatch(ctx, briefing)
}

// RunOnce builds the pipeline from cfg and runs it. Construction failures
// produce a 500 result without a notification since no transport exists yet.
func RunOnce(ctx context.Context, cfg *config.Config, metrics *Metrics, trigger string) models.RunResult {
	svc, err := NewBriefingServiceFromConfig(ctx, cfg, metrics)
	if err != nil {
		log.Printf("❌ [BRIEFING] Failed to initialize: %v", err)
		metrics.ObserveRun(err)
		return models.NewFailureResult(models.FormatBriefingDate(time.Now()), err)
	}
	return svc.Run(ctx, trigger)
}
