package preflight

import (
	"fmt"
	"log"
	"strings"

	"dailybriefing/internal/config"
	"dailybriefing/internal/jobs"
	"dailybriefing/internal/services"
)

// Check statuses
const (
	StatusPass    = "pass"
	StatusFail    = "fail"
	StatusWarning = "warning"
)

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Name    string
	Status  string // "pass", "fail", "warning"
	Message string
	Error   error
}

// Checker verifies configuration and local resources before a run or server start.
// No check touches the network.
type Checker struct {
	cfg *config.Config
}

// NewChecker creates a new preflight checker
func NewChecker(cfg *config.Config) *Checker {
	return &Checker{cfg: cfg}
}

// RunAll runs all preflight checks and returns results
func (c *Checker) RunAll() []CheckResult {
	log.Println("🔍 Running pre-flight checks...")

	results := []CheckResult{
		c.checkConfiguration(),
		c.checkPromptTemplate(),
		c.checkNarrationPhrases(),
		c.checkSchedule(),
		c.checkMailTransport(),
	}

	logSummary(results)
	return results
}

// QuickCheck runs only the checks a one-shot run cannot proceed without
func (c *Checker) QuickCheck() []CheckResult {
	log.Println("⚡ Running quick pre-flight checks...")

	results := []CheckResult{
		c.checkConfiguration(),
		c.checkPromptTemplate(),
	}

	logSummary(results)
	return results
}

func logSummary(results []CheckResult) {
	passed, failed, warnings := 0, 0, 0

	for _, result := range results {
		switch result.Status {
		case StatusPass:
			log.Printf("   ✅ %s: %s", result.Name, result.Message)
			passed++
		case StatusFail:
			log.Printf("   ❌ %s: %s", result.Name, result.Message)
			if result.Error != nil {
				log.Printf("      Error: %v", result.Error)
			}
			failed++
		case StatusWarning:
			log.Printf("   ⚠️  %s: %s", result.Name, result.Message)
			warnings++
		}
	}

	log.Printf("📊 Pre-flight summary: %d passed, %d failed, %d warnings", passed, failed, warnings)
}

// HasFailures returns true if any check failed
func HasFailures(results []CheckResult) bool {
	for _, result := range results {
		if result.Status == StatusFail {
			return true
		}
	}
	return false
}

// checkConfiguration verifies required settings are present and consistent
func (c *Checker) checkConfiguration() CheckResult {
	if err := c.cfg.Validate(); err != nil {
		return CheckResult{
			Name:    "Configuration",
			Status:  StatusFail,
			Message: "Configuration is incomplete or invalid",
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Configuration",
		Status:  StatusPass,
		Message: fmt.Sprintf("Model %s, max tokens %d, thinking budget %d", c.cfg.ModelID, c.cfg.MaxTokens, c.cfg.ThinkingBudgetTokens),
	}
}

// checkPromptTemplate verifies the template loads and contains the date placeholder
func (c *Checker) checkPromptTemplate() CheckResult {
	template, err := services.LoadPromptTemplate(c.cfg.PromptFile)
	if err != nil {
		return CheckResult{
			Name:    "Prompt Template",
			Status:  StatusFail,
			Message: fmt.Sprintf("Cannot load %s", c.cfg.PromptFile),
			Error:   err,
		}
	}

	if strings.TrimSpace(template) == "" {
		return CheckResult{
			Name:    "Prompt Template",
			Status:  StatusFail,
			Message: "Template is empty before the --- delimiter",
		}
	}

	if !strings.Contains(template, services.DatePlaceholder) {
		return CheckResult{
			Name:    "Prompt Template",
			Status:  StatusWarning,
			Message: fmt.Sprintf("Template has no %s placeholder; every briefing will get the same prompt", services.DatePlaceholder),
		}
	}

	return CheckResult{
		Name:    "Prompt Template",
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%d chars)", c.cfg.PromptFile, len(template)),
	}
}

// checkNarrationPhrases verifies the phrase file parses when one is configured
func (c *Checker) checkNarrationPhrases() CheckResult {
	phrases, err := services.LoadNarrationPhrases(c.cfg.NarrationPhrasesFile)
	if err != nil {
		return CheckResult{
			Name:    "Narration Phrases",
			Status:  StatusFail,
			Message: fmt.Sprintf("Cannot load %s", c.cfg.NarrationPhrasesFile),
			Error:   err,
		}
	}

	source := "built-in defaults"
	if c.cfg.NarrationPhrasesFile != "" {
		source = c.cfg.NarrationPhrasesFile
	}

	if phrases.DocumentStart == "" {
		return CheckResult{
			Name:    "Narration Phrases",
			Status:  StatusWarning,
			Message: fmt.Sprintf("%s has no document_start marker; preambles will not be trimmed", source),
		}
	}

	return CheckResult{
		Name:    "Narration Phrases",
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%d skip, %d inline)", source, len(phrases.Skip), len(phrases.Inline)),
	}
}

// checkSchedule verifies the cron expression and timezone used by serve mode
func (c *Checker) checkSchedule() CheckResult {
	schedule := jobs.Schedule{Cron: c.cfg.ScheduleCron, Timezone: c.cfg.ScheduleTimezone}
	if err := schedule.Validate(); err != nil {
		return CheckResult{
			Name:    "Schedule",
			Status:  StatusFail,
			Message: "Invalid schedule",
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Schedule",
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%s)", schedule.Cron, schedule.Timezone),
	}
}

// checkMailTransport reports which transport will be used
func (c *Checker) checkMailTransport() CheckResult {
	mail := c.cfg.Mail

	switch mail.Provider {
	case config.MailProviderSES:
		if mail.SESAccessKeyID == "" || mail.SESSecretAccessKey == "" {
			return CheckResult{
				Name:    "Mail Transport",
				Status:  StatusWarning,
				Message: fmt.Sprintf("SES in %s using the default AWS credential chain", mail.AWSRegion),
			}
		}
		return CheckResult{
			Name:    "Mail Transport",
			Status:  StatusPass,
			Message: fmt.Sprintf("SES in %s with static credentials", mail.AWSRegion),
		}
	case config.MailProviderSMTP:
		if mail.SMTPHost == "" {
			return CheckResult{
				Name:    "Mail Transport",
				Status:  StatusFail,
				Message: "SMTP selected but SMTP_HOST is empty",
			}
		}
		return CheckResult{
			Name:    "Mail Transport",
			Status:  StatusPass,
			Message: fmt.Sprintf("SMTP via %s:%d", mail.SMTPHost, mail.SMTPPort),
		}
	}

	return CheckResult{
		Name:    "Mail Transport",
		Status:  StatusFail,
		Message: fmt.Sprintf("Unsupported mail provider %q", mail.Provider),
	}
}
