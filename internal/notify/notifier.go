package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notifier is the outbound notification capability. The engine only ever
// triggers a dispatch attempt; actual email/SMS delivery belongs to an
// external relay behind this interface.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// EmailSender hands messages to the external mail relay. The current relay
// contract is log-shipped: ops tail the structured log into the mailer.
type EmailSender struct {
	log *zap.Logger
}

func NewEmailSender(log *zap.Logger) *EmailSender {
	return &EmailSender{log: log}
}

func (s *EmailSender) Notify(ctx context.Context, recipient, subject, body string) error {
	if recipient == "" {
		// Nothing to deliver to; the attempt still counts as completed so
		// reminder marking stays uniform.
		s.log.Debug("no recipient, dispatch skipped", zap.String("subject", subject))
		return nil
	}
	s.log.Info("outgoing email",
		zap.String("recipient", recipient),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}

var _ Notifier = (*EmailSender)(nil)
