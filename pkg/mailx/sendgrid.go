package mailx

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer delivers mail through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey   string
	fromName string
	fromAddr string
}

func NewSendGridMailer(apiKey, fromName, fromAddr string) *SendGridMailer {
	return &SendGridMailer{
		apiKey:   apiKey,
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if m.apiKey == "" {
		return fmt.Errorf("mailx: sendgrid api key is empty")
	}
	if msg.To == "" {
		return fmt.Errorf("mailx: recipient address is empty")
	}

	html := msg.HTMLBody
	if html == "" {
		html = fmt.Sprintf("<pre>%s</pre>", msg.TextBody)
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.fromAddr),
		msg.Subject,
		mail.NewEmail("", msg.To),
		msg.TextBody,
		html,
	)

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("mailx: sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("mailx: sendgrid send failed: status=%d body=%s",
			response.StatusCode, response.Body)
	}

	return nil
}
