package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dailybriefing/internal/config"
	"dailybriefing/internal/models"
	"dailybriefing/internal/preflight"
	"dailybriefing/internal/services"

	"github.com/aws/aws-lambda-go/events"
	"github.com/prometheus/client_golang/prometheus"
)

func TestLambdaHandler(t *testing.T) {
	tests := []struct {
		name   string
		result models.RunResult
	}{
		{"success", models.NewSuccessResult("January 13, 2026", "id-1")},
		{"failure is returned, not raised", models.NewFailureResult("January 13, 2026", errors.New("API Error"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int
			var gotTrigger string
			handler := newLambdaHandler(&config.Config{}, func(ctx context.Context, trigger string) models.RunResult {
				calls++
				gotTrigger = trigger
				return tt.result
			}, prometheus.NewRegistry())

			got, err := handler(context.Background(), events.CloudWatchEvent{
				Source:     "aws.events",
				DetailType: "Scheduled Event",
				Time:       time.Date(2026, time.January, 13, 11, 0, 0, 0, time.UTC),
			})
			if err != nil {
				t.Fatalf("handler error = %v", err)
			}
			if got != tt.result {
				t.Errorf("result = %+v, want %+v", got, tt.result)
			}
			if calls != 1 || gotTrigger != "lambda" {
				t.Errorf("calls = %d, trigger = %q", calls, gotTrigger)
			}
		})
	}
}

func TestColdStartCheck(t *testing.T) {
	dir := t.TempDir()
	prompt := filepath.Join(dir, "prompt.md")
	if err := os.WriteFile(prompt, []byte("Brief me for {date}."), 0o644); err != nil {
		t.Fatal(err)
	}
	base := config.Config{
		AnthropicAPIKey:      "test-key",
		RecipientEmail:       "to@example.com",
		SenderEmail:          "from@example.com",
		MaxTokens:            16000,
		ThinkingBudgetTokens: 10000,
		PromptFile:           prompt,
		Mail:                 config.MailConfig{Provider: config.MailProviderSES, AWSRegion: "us-east-1"},
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"valid", func(*config.Config) {}, nil},
		{"missing setting", func(c *config.Config) { c.SenderEmail = "" }, config.ErrConfigMissing},
		{"missing template", func(c *config.Config) { c.PromptFile = filepath.Join(dir, "missing.md") }, services.ErrTemplateMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			err := coldStartCheck(&cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("coldStartCheck() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("coldStartCheck() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewViper_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "briefing.yaml")
	content := "model_id: claude-opus-4-1\nschedule_timezone: America/Chicago\nmail_provider: smtp\nsmtp_host: mail.example.com\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := newViper(path)
	if err != nil {
		t.Fatalf("newViper() error = %v", err)
	}
	cfg := config.Read(v)

	if cfg.ModelID != "claude-opus-4-1" {
		t.Errorf("ModelID = %q", cfg.ModelID)
	}
	if cfg.ScheduleTimezone != "America/Chicago" {
		t.Errorf("ScheduleTimezone = %q", cfg.ScheduleTimezone)
	}
	if cfg.Mail.Provider != config.MailProviderSMTP || cfg.Mail.SMTPHost != "mail.example.com" {
		t.Errorf("Mail = %+v", cfg.Mail)
	}
	if cfg.MaxTokens != 16000 {
		t.Errorf("MaxTokens default = %d", cfg.MaxTokens)
	}

	if _, err := newViper(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestRenderCheckResults(t *testing.T) {
	out := renderCheckResults([]preflight.CheckResult{
		{Name: "Configuration", Status: preflight.StatusFail, Message: "Configuration is incomplete", Error: config.ErrConfigMissing},
		{Name: "Schedule", Status: preflight.StatusPass, Message: "0 11 * * * (UTC)"},
		{Name: "Mail Transport", Status: preflight.StatusWarning, Message: "default credential chain"},
	})

	for _, want := range []string{"Configuration", "fail", "pass", "warn", "required configuration missing", "0 11 * * *"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPreviewFromFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "draft.md")
	draft := "Let me search for more.\n# AI Research Briefing\n| a | b |\n|---|---|\n| 1 | 2 |"
	if err := os.WriteFile(src, []byte(draft), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{ModelID: "claude-sonnet-4-5-20250929"}
	briefing, err := previewBriefing(context.Background(), cfg, src)
	if err != nil {
		t.Fatalf("previewBriefing() error = %v", err)
	}
	if strings.Contains(briefing.Body, "Let me search") {
		t.Errorf("narration not removed: %q", briefing.Body)
	}

	rendered, err := services.NewDispatchService(nil, "", "").Render(briefing)
	if err != nil {
		t.Fatal(err)
	}

	outDir := filepath.Join(dir, "out")
	paths, err := writePreview(outDir, rendered)
	if err != nil {
		t.Fatalf("writePreview() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}

	html, err := os.ReadFile(filepath.Join(outDir, "briefing.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "<table>") {
		t.Error("rendered HTML should contain a table")
	}
}

func TestPreviewRequiresAPIKeyWithoutFile(t *testing.T) {
	_, err := previewBriefing(context.Background(), &config.Config{}, "")
	if !errors.Is(err, config.ErrConfigMissing) {
		t.Errorf("expected ErrConfigMissing, got %v", err)
	}
}
