package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

var ErrNotConfigured = errors.New("email: RESEND_API_KEY not configured")

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	if sent == nil || sent.Id == "" {
		return errors.New("resend: empty response")
	}
	return nil
}

// APIキーが無い環境用。常に失敗を返し、呼び出し側でログに残す
type DisabledMailer struct{}

func (DisabledMailer) Send(ctx context.Context, msg Message) error {
	return ErrNotConfigured
}
