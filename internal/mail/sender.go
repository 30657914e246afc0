package mail

import (
	"context"
	"fmt"

	"dailybriefing/internal/config"
)

// Charset is used for the subject and both bodies
const Charset = "UTF-8"

// Message is a single outbound email. HTML may be empty for plain-text mail.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender is the interface for outbound mail transports
type Sender interface {
	// Send delivers one message and returns the provider-assigned message id
	Send(ctx context.Context, msg Message) (string, error)
}

// NewSender builds the transport selected by cfg.Provider
func NewSender(ctx context.Context, cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case config.MailProviderSES, "":
		return NewSESSender(ctx, cfg)
	case config.MailProviderSMTP:
		return NewSMTPSender(cfg), nil
	}
	return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
}
