package mail

import (
	"context"
	"fmt"
	"log"
	"strings"

	"dailybriefing/internal/config"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// dialer is satisfied by *gomail.Dialer
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends mail through an SMTP relay
type SMTPSender struct {
	dialer dialer
	host   string
}

// NewSMTPSender creates an SMTP sender
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	log.Printf("📧 [MAIL] SMTP sender initialized (host: %s, port: %d, user: %s)", cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername)
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		host:   cfg.SMTPHost,
	}
}

// messageID builds an RFC 5322 Message-ID in the sender's domain
func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

func buildMessage(msg Message, id string) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset(Charset))
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("Message-ID", id)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return m
}

// Send delivers a single email; SMTP has no provider id, so the generated Message-ID is returned
func (s *SMTPSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := messageID(msg.From)
	if err := s.dialer.DialAndSend(buildMessage(msg, id)); err != nil {
		return "", fmt.Errorf("smtp send via %s failed: %w", s.host, err)
	}
	return id, nil
}
