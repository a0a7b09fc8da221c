package email

import (
	"context"

	"github.com/rs/zerolog/log"
)

// EmailSender provides a testable abstraction over SES delivery.
type EmailSender interface {
	Send(ctx context.Context, recipient, subject, body string) error
	SendFrom(ctx context.Context, recipient, subject, body, sender string) error
}

// LogSender logs instead of delivering. Used when email is disabled.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	log.Ctx(ctx).Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Msg("Email delivery disabled, logging instead")
	return nil
}

func (LogSender) SendFrom(ctx context.Context, recipient, subject, body, sender string) error {
	return LogSender{}.Send(ctx, recipient, subject, body)
}
