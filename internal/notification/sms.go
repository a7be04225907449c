package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/billflow/billflow/internal/config"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/types"
	"github.com/hashicorp/go-retryablehttp"
)

// SMSSender posts reminder texts to the configured SMS gateway. Transient
// gateway errors are retried by the underlying client; the core itself
// never retries a dispatch.
type SMSSender struct {
	cfg    config.SMSConfig
	client *retryablehttp.Client
	logger *logger.Logger
}

type smsPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

func NewSMSSender(cfg *config.Configuration, log *logger.Logger) *SMSSender {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &SMSSender{
		cfg:    cfg.Notification.SMS,
		client: client,
		logger: log,
	}
}

func (s *SMSSender) Send(ctx context.Context, recipient, subject, message string) (string, error) {
	messageID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_NOTIFICATION)

	if !s.cfg.Enabled {
		s.logger.Warnw("sms transport disabled, skipping send",
			"to", recipient,
		)
		return messageID, nil
	}

	payload, err := json.Marshal(smsPayload{To: recipient, Message: message})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to serialize the SMS payload").
			Mark(ierr.ErrSystem)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to build the SMS gateway request").
			Mark(ierr.ErrHTTPClient)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("SMS gateway request failed").
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", ierr.NewError("sms gateway returned non-success status").
			WithHintf("SMS gateway responded with status %d", resp.StatusCode).
			WithReportableDetails(map[string]any{
				"status_code": resp.StatusCode,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	s.logger.Infow("sms sent",
		"message_id", messageID,
		"to", recipient,
	)
	return messageID, nil
}
