package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"dailybriefing/internal/jobs"
	"dailybriefing/internal/models"

	"github.com/gofiber/fiber/v2"
)

// BriefingTrigger starts a briefing run on demand
type BriefingTrigger interface {
	Trigger(ctx context.Context, trigger string) (models.RunResult, error)
	LastResult() (*models.RunResult, time.Time)
}

// ScheduleReporter reports scheduled job state
type ScheduleReporter interface {
	GetStatus() map[string]jobs.JobStatus
}

// BriefingHandler exposes manual runs and schedule status
type BriefingHandler struct {
	trigger   BriefingTrigger
	scheduler ScheduleReporter
}

// NewBriefingHandler creates a new briefing handler
func NewBriefingHandler(trigger BriefingTrigger, scheduler ScheduleReporter) *BriefingHandler {
	return &BriefingHandler{trigger: trigger, scheduler: scheduler}
}

// Run executes a briefing immediately and returns the run result.
// POST /api/briefing/run
func (h *BriefingHandler) Run(c *fiber.Ctx) error {
	log.Printf("📨 [BRIEFING-API] Manual run requested from %s", c.IP())

	result, err := h.trigger.Trigger(c.UserContext(), "api")
	if errors.Is(err, jobs.ErrRunInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(result.StatusCode).SendString(result.Body)
}

// Schedule returns the scheduled jobs and the last run outcome.
// GET /api/briefing/schedule
func (h *BriefingHandler) Schedule(c *fiber.Ctx) error {
	response := fiber.Map{
		"jobs": h.scheduler.GetStatus(),
	}

	if last, at := h.trigger.LastResult(); last != nil {
		summary, err := last.Summary()
		if err != nil {
			summary = models.RunSummary{Message: last.Body}
		}
		response["last_run"] = fiber.Map{
			"status_code": last.StatusCode,
			"started_at":  at.Format(time.RFC3339),
			"summary":     summary,
		}
	}

	return c.JSON(response)
}
