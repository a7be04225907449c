package notification

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/billflow/billflow/internal/clock"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	fail  bool
	label string
}

func (f *fakeSender) Send(_ context.Context, recipient, subject, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("gateway down")
	}
	f.sent = append(f.sent, recipient)
	return f.label + "-msg-1", nil
}

func testSummary() InvoiceSummary {
	return InvoiceSummary{
		InvoiceID:     "inv_1",
		InvoiceNumber: "INV-20240315-0001",
		CustomerID:    "cust_1",
		Total:         decimal.RequireFromString("107.25"),
		DueDate:       time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC),
	}
}

func newTestDispatcher(email, sms Sender) Dispatcher {
	log := &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
	return NewDispatcher(email, sms, clock.NewTestClock(time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)), log)
}

func TestInvoiceSummaryRendering(t *testing.T) {
	summary := testSummary()

	assert.Equal(t, "Invoice INV-20240315-0001 - Payment Reminder", summary.Subject())
	assert.Equal(t,
		"Payment reminder for invoice INV-20240315-0001. Amount due: 107.25. Due date: 2024-03-29",
		summary.Message())
}

func TestDispatchSingleChannel(t *testing.T) {
	email := &fakeSender{label: "email"}
	sms := &fakeSender{label: "sms"}
	d := newTestDispatcher(email, sms)

	record, err := d.Dispatch(context.Background(), types.ReminderChannelEmail, testSummary(), "cust_1")
	require.NoError(t, err)

	assert.Equal(t, types.NotificationStatusSent, record.Status)
	assert.NotEmpty(t, record.ID)
	assert.Len(t, email.sent, 1)
	assert.Empty(t, sms.sent)
}

func TestDispatchBothChannels(t *testing.T) {
	email := &fakeSender{label: "email"}
	sms := &fakeSender{label: "sms"}
	d := newTestDispatcher(email, sms)

	record, err := d.Dispatch(context.Background(), types.ReminderChannelBoth, testSummary(), "cust_1")
	require.NoError(t, err)

	assert.Equal(t, types.NotificationStatusSent, record.Status)
	assert.Len(t, email.sent, 1)
	assert.Len(t, sms.sent, 1)
}

func TestDispatchFailure(t *testing.T) {
	email := &fakeSender{label: "email", fail: true}
	sms := &fakeSender{label: "sms"}
	d := newTestDispatcher(email, sms)

	record, err := d.Dispatch(context.Background(), types.ReminderChannelBoth, testSummary(), "cust_1")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, ierr.HTTPStatusFromErr(err))
	require.NotNil(t, record)
	assert.Equal(t, types.NotificationStatusFailed, record.Status)
}

func TestDispatchInvalidChannel(t *testing.T) {
	d := newTestDispatcher(&fakeSender{}, &fakeSender{})

	_, err := d.Dispatch(context.Background(), types.ReminderChannel("pigeon"), testSummary(), "cust_1")
	assert.True(t, ierr.IsValidation(err))
}
