package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"log"
	"strings"
	texttemplate "text/template"
	"time"

	"dailybriefing/internal/mail"
	"dailybriefing/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const (
	// ErrorNotificationSubject is used for the single best-effort failure email
	ErrorNotificationSubject = "Daily Briefing Generation Failed"

	emailKindBriefing = "briefing"
	emailKindError    = "error_notification"
)

//go:embed templates/briefing_email.html templates/briefing_email.txt
var emailTemplates embed.FS

var (
	htmlEmailTemplate = htmltemplate.Must(htmltemplate.ParseFS(emailTemplates, "templates/briefing_email.html"))
	textEmailTemplate = texttemplate.Must(texttemplate.ParseFS(emailTemplates, "templates/briefing_email.txt"))
)

// RenderedBriefing is a briefing rendered into both email bodies
type RenderedBriefing struct {
	Subject string
	HTML    string
	Text    string
}

type emailView struct {
	Date      string
	Body      string
	Content   htmltemplate.HTML
	Model     string
	Timestamp string
}

// DispatchService renders briefings and hands them to the mail transport
type DispatchService struct {
	sender   mail.Sender
	from     string
	to       string
	markdown goldmark.Markdown
	metrics  *Metrics
}

// NewDispatchService creates a dispatcher for a fixed sender/recipient pair
func NewDispatchService(sender mail.Sender, from, to string) *DispatchService {
	return &DispatchService{
		sender: sender,
		from:   from,
		to:     to,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithRendererOptions(
				html.WithHardWraps(), // single newlines become <br>
			),
		),
	}
}

// WithMetrics attaches metrics recording
func (s *DispatchService) WithMetrics(m *Metrics) *DispatchService {
	s.metrics = m
	return s
}

// BriefingSubject returns the subject line for a briefing date
func BriefingSubject(date string) string {
	return "Daily Briefing - " + date
}

// RenderMarkdown converts a markdown document to an HTML fragment
func (s *DispatchService) RenderMarkdown(body string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Render builds the subject and both bodies for b
func (s *DispatchService) Render(b *models.Briefing) (*RenderedBriefing, error) {
	fragment, err := s.RenderMarkdown(b.Body)
	if err != nil {
		return nil, err
	}

	view := emailView{
		Date:      b.Date,
		Body:      b.Body,
		Content:   htmltemplate.HTML(fragment),
		Model:     b.Model,
		Timestamp: b.GeneratedAt.Format(time.RFC3339),
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := htmlEmailTemplate.Execute(&htmlBuf, view); err != nil {
		return nil, fmt.Errorf("failed to render html email: %w", err)
	}
	if err := textEmailTemplate.Execute(&textBuf, view); err != nil {
		return nil, fmt.Errorf("failed to render text email: %w", err)
	}

	return &RenderedBriefing{
		Subject: BriefingSubject(b.Date),
		HTML:    htmlBuf.String(),
		Text:    textBuf.String(),
	}, nil
}

// Send delivers one email and returns the transport's message id
func (s *DispatchService) Send(ctx context.Context, subject, htmlBody, textBody string) (string, error) {
	id, err := s.sender.Send(ctx, mail.Message{
		From:    s.from,
		To:      s.to,
		Subject: subject,
		Text:    textBody,
		HTML:    htmlBody,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	return id, nil
}

// Dispatch renders and sends a briefing
func (s *DispatchService) Dispatch(ctx context.Context, b *models.Briefing) (string, error) {
	rendered, err := s.Render(b)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	id, err := s.Send(ctx, rendered.Subject, rendered.HTML, rendered.Text)
	s.metrics.ObserveEmail(emailKindBriefing, err)
	if err != nil {
		return "", err
	}

	log.Printf("📧 [DISPATCH] Briefing for %s sent to %s (message id: %s)", b.Date, s.to, id)
	return id, nil
}

// SendErrorNotification sends a plain-text failure report. Errors are logged
// and never returned.
func (s *DispatchService) SendErrorNotification(ctx context.Context, message string) {
	body := "Failed to generate daily briefing:\n\n" + strings.TrimSpace(message)

	_, err := s.Send(ctx, ErrorNotificationSubject, "", body)
	s.metrics.ObserveEmail(emailKindError, err)
	if err != nil {
		log.Printf("⚠️ [DISPATCH] Failed to send error notification: %v", err)
		return
	}
	log.Printf("📧 [DISPATCH] Error notification sent to %s", s.to)
}
