// Package email sends transactional mail. SendGrid in production, a console
// sender for local development.
package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Message is one outbound email.
type Message struct {
	ToEmail  string
	ToName   string
	Subject  string
	BodyHTML string
}

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender sends via the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

// NewSendGridSender creates a SendGrid-backed sender.
func NewSendGridSender(apiKey, fromName, fromEmail string) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	m := mail.NewSingleEmail(from, msg.Subject, to, "", msg.BodyHTML)
	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// ConsoleSender logs emails instead of sending them. Used when no SendGrid
// key is configured.
type ConsoleSender struct {
	logger *zap.Logger
}

// NewConsoleSender creates a log-only sender.
func NewConsoleSender(logger *zap.Logger) *ConsoleSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email (console sender)",
		zap.String("to", msg.ToEmail),
		zap.String("subject", msg.Subject))
	return nil
}
