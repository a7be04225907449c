package testutil

import (
	"context"
	"sync"

	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/notification"
	"github.com/billflow/billflow/internal/types"
)

// DispatchedMessage captures one Dispatch call made against the recording
// dispatcher
type DispatchedMessage struct {
	Channel   types.ReminderChannel
	Summary   notification.InvoiceSummary
	Recipient string
	RecordID  string
}

// InMemoryDispatcher is a notification.Dispatcher for tests. It records
// every dispatch and can be made to fail on demand.
type InMemoryDispatcher struct {
	mu       sync.Mutex
	messages []DispatchedMessage
	fail     bool
}

func NewInMemoryDispatcher() *InMemoryDispatcher {
	return &InMemoryDispatcher{}
}

// FailDispatches toggles dispatch failure injection
func (d *InMemoryDispatcher) FailDispatches(fail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fail = fail
}

func (d *InMemoryDispatcher) Dispatch(_ context.Context, channel types.ReminderChannel, summary notification.InvoiceSummary, recipient string) (*notification.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fail {
		return nil, ierr.NewError("dispatch rejected").
			WithHint("The notification gateway rejected the message").
			Mark(ierr.ErrHTTPClient)
	}

	record := &notification.Record{
		ID:          types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_NOTIFICATION),
		Channel:     channel,
		RecipientID: recipient,
		Subject:     summary.Subject(),
		Message:     summary.Message(),
		Status:      types.NotificationStatusSent,
	}

	d.messages = append(d.messages, DispatchedMessage{
		Channel:   channel,
		Summary:   summary,
		Recipient: recipient,
		RecordID:  record.ID,
	})
	return record, nil
}

// Messages returns the dispatches recorded so far
func (d *InMemoryDispatcher) Messages() []DispatchedMessage {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]DispatchedMessage, len(d.messages))
	copy(out, d.messages)
	return out
}

// Reset clears recorded dispatches
func (d *InMemoryDispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = nil
}
