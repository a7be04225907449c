package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/billflow/billflow/internal/clock"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
)

// InvoiceSummary is the slice of invoice state a reminder message is
// rendered from
type InvoiceSummary struct {
	InvoiceID     string          `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    string          `json:"customer_id"`
	Total         decimal.Decimal `json:"total"`
	DueDate       time.Time       `json:"due_date"`
}

// Subject renders the notification subject line
func (s InvoiceSummary) Subject() string {
	return fmt.Sprintf("Invoice %s - Payment Reminder", s.InvoiceNumber)
}

// Message renders the reminder body
func (s InvoiceSummary) Message() string {
	return fmt.Sprintf(
		"Payment reminder for invoice %s. Amount due: %s. Due date: %s",
		s.InvoiceNumber,
		s.Total.StringFixed(2),
		s.DueDate.Format("2006-01-02"),
	)
}

// Record is what the dispatch collaborator reports back for one dispatch
type Record struct {
	ID          string                   `json:"id"`
	Channel     types.ReminderChannel    `json:"channel"`
	RecipientID string                   `json:"recipient_id"`
	Subject     string                   `json:"subject"`
	Message     string                   `json:"message"`
	Status      types.NotificationStatus `json:"status"`
	SentAt      time.Time                `json:"sent_at"`
}

// Dispatcher delivers a reminder over the requested channel and returns a
// record the caller can log into reminder history. Delivery is best
// effort; the dispatcher does not guarantee receipt.
type Dispatcher interface {
	Dispatch(ctx context.Context, channel types.ReminderChannel, summary InvoiceSummary, recipient string) (*Record, error)
}

// Sender delivers one rendered message over a single transport and returns
// the provider message id
type Sender interface {
	Send(ctx context.Context, recipient, subject, message string) (string, error)
}

type dispatcher struct {
	email  Sender
	sms    Sender
	clock  clock.Clock
	logger *logger.Logger
}

// NewDispatcher fans reminders out to the email and SMS transports.
// Channel "both" dispatches to both transports concurrently.
func NewDispatcher(email Sender, sms Sender, clk clock.Clock, log *logger.Logger) Dispatcher {
	return &dispatcher{
		email:  email,
		sms:    sms,
		clock:  clk,
		logger: log,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, channel types.ReminderChannel, summary InvoiceSummary, recipient string) (*Record, error) {
	if err := channel.Validate(); err != nil {
		return nil, err
	}

	subject := summary.Subject()
	message := summary.Message()

	var emailErr, smsErr error
	switch channel {
	case types.ReminderChannelEmail:
		_, emailErr = d.email.Send(ctx, recipient, subject, message)
	case types.ReminderChannelSMS:
		_, smsErr = d.sms.Send(ctx, recipient, subject, message)
	case types.ReminderChannelBoth:
		var wg conc.WaitGroup
		wg.Go(func() {
			_, emailErr = d.email.Send(ctx, recipient, subject, message)
		})
		wg.Go(func() {
			_, smsErr = d.sms.Send(ctx, recipient, subject, message)
		})
		wg.Wait()
	}

	record := &Record{
		ID:          types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_NOTIFICATION),
		Channel:     channel,
		RecipientID: summary.CustomerID,
		Subject:     subject,
		Message:     message,
		Status:      types.NotificationStatusSent,
		SentAt:      d.clock.Now(),
	}

	if emailErr != nil || smsErr != nil {
		record.Status = types.NotificationStatusFailed
		err := emailErr
		if err == nil {
			err = smsErr
		}
		d.logger.Errorw("reminder dispatch failed",
			"invoice_number", summary.InvoiceNumber,
			"channel", channel,
			"error", err,
		)
		return record, ierr.WithError(err).
			WithHint("Failed to dispatch the reminder notification").
			Mark(ierr.ErrHTTPClient)
	}

	d.logger.Infow("dispatched reminder",
		"notification_id", record.ID,
		"invoice_number", summary.InvoiceNumber,
		"channel", channel,
	)
	return record, nil
}
