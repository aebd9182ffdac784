// Package mailx delivers transactional mail behind a small interface so
// services never talk to a provider directly and tests can capture sends.
package mailx

import (
	"context"
	"log/slog"
)

// Message is a single outbound mail.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer sends a message. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes mail to the log instead of sending it. Used in dev
// environments where no provider API key is configured.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.Logger.Info("mail (not sent, log mailer active)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody,
	)
	return nil
}
