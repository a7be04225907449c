package service

import (
	"context"
	"sync"
	"time"

	"github.com/billflow/billflow/internal/api/dto"
	"github.com/billflow/billflow/internal/domain/invoice"
	"github.com/billflow/billflow/internal/domain/reminder"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/notification"
)

// ReminderService manages due-date reminder schedules and drives the
// firing pass. Schedule replacement and firing are serialized so a
// reschedule never races a tick: a reminder fires against the schedule
// that was active when the tick started, or the new one, never a mix.
type ReminderService interface {
	ScheduleReminders(ctx context.Context, invoiceID string, dueDate time.Time) (*dto.ReminderScheduleResponse, error)
	RescheduleReminders(ctx context.Context, invoiceID string, newDueDate time.Time) (*dto.ReminderScheduleResponse, error)
	CancelReminders(ctx context.Context, invoiceID string) error
	GetSchedule(ctx context.Context, invoiceID string) (*dto.ReminderScheduleResponse, error)
	GetReminderHistory(ctx context.Context, invoiceID string) ([]*dto.ReminderEntryResponse, error)
	ProcessDueReminders(ctx context.Context) (*dto.ProcessRemindersResponse, error)
}

type reminderService struct {
	ServiceParams

	// serializes schedule mutation against the firing pass
	mu sync.Mutex
}

func NewReminderService(params ServiceParams) ReminderService {
	return &reminderService{ServiceParams: params}
}

func (s *reminderService) ScheduleReminders(ctx context.Context, invoiceID string, dueDate time.Time) (*dto.ReminderScheduleResponse, error) {
	if _, err := s.InvoiceRepo.Get(ctx, invoiceID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	schedule := reminder.NewSchedule(invoiceID, dueDate, s.Clock.Now())
	if err := s.ReminderRepo.Save(ctx, schedule); err != nil {
		return nil, err
	}

	s.Logger.Infow("installed reminder schedule",
		"invoice_id", invoiceID,
		"due_date", dueDate,
		"entries", len(schedule.Entries))
	return dto.NewReminderScheduleResponse(schedule), nil
}

// RescheduleReminders atomically replaces an invoice's schedule with a
// fresh one built from the new due date. Fired entries of the old
// schedule are discarded along with it.
func (s *reminderService) RescheduleReminders(ctx context.Context, invoiceID string, newDueDate time.Time) (*dto.ReminderScheduleResponse, error) {
	if _, err := s.InvoiceRepo.Get(ctx, invoiceID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ReminderRepo.DeleteByInvoiceID(ctx, invoiceID); err != nil {
		return nil, err
	}

	schedule := reminder.NewSchedule(invoiceID, newDueDate, s.Clock.Now())
	if err := s.ReminderRepo.Save(ctx, schedule); err != nil {
		return nil, err
	}

	s.Logger.Infow("rescheduled reminders",
		"invoice_id", invoiceID,
		"due_date", newDueDate)
	return dto.NewReminderScheduleResponse(schedule), nil
}

// CancelReminders removes an invoice's schedule. Cancelling an invoice
// without a schedule is a no-op.
func (s *reminderService) CancelReminders(ctx context.Context, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.ReminderRepo.DeleteByInvoiceID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if removed {
		s.Logger.Infow("cancelled reminder schedule", "invoice_id", invoiceID)
	}
	return nil
}

func (s *reminderService) GetSchedule(ctx context.Context, invoiceID string) (*dto.ReminderScheduleResponse, error) {
	schedule, err := s.ReminderRepo.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return dto.NewReminderScheduleResponse(schedule), nil
}

// GetReminderHistory returns the fired entries of an invoice's schedule
// in chronological order. An invoice without a schedule has an empty
// history rather than an error.
func (s *reminderService) GetReminderHistory(ctx context.Context, invoiceID string) ([]*dto.ReminderEntryResponse, error) {
	schedule, err := s.ReminderRepo.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return []*dto.ReminderEntryResponse{}, nil
		}
		return nil, err
	}

	fired := schedule.Fired()
	history := make([]*dto.ReminderEntryResponse, 0, len(fired))
	for _, entry := range fired {
		history = append(history, dto.NewReminderEntryResponse(entry))
	}
	return history, nil
}

// ProcessDueReminders evaluates every active schedule against the current
// time and fires pending entries. A failed dispatch leaves its entry
// unfired so a later pass picks it up again; one bad entry never blocks
// the rest of the pass.
func (s *reminderService) ProcessDueReminders(ctx context.Context) (*dto.ProcessRemindersResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedules, err := s.ReminderRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	resp := &dto.ProcessRemindersResponse{}

	for _, schedule := range schedules {
		pending := schedule.Pending(now)
		if len(pending) == 0 {
			continue
		}
		resp.Evaluated += len(pending)

		inv, err := s.InvoiceRepo.Get(ctx, schedule.InvoiceID)
		if err != nil {
			s.Logger.Errorw("skipping schedule without invoice",
				"invoice_id", schedule.InvoiceID,
				"error", err)
			resp.Failed += len(pending)
			continue
		}

		summary := invoiceSummary(inv)
		fired := false
		for _, entry := range pending {
			record, err := s.Dispatcher.Dispatch(ctx, entry.Channel, summary, inv.CustomerID)
			if err != nil {
				s.Logger.Errorw("reminder dispatch failed",
					"invoice_id", inv.ID,
					"reminder_id", entry.ID,
					"channel", entry.Channel,
					"error", err)
				resp.Failed++
				continue
			}

			firedAt := now
			entry.FiredAt = &firedAt
			entry.NotificationID = record.ID
			fired = true
			resp.Fired++
		}

		if fired {
			if err := s.ReminderRepo.Save(ctx, schedule); err != nil {
				return resp, err
			}
		}
	}

	if resp.Fired > 0 || resp.Failed > 0 {
		s.Logger.Infow("processed due reminders",
			"evaluated", resp.Evaluated,
			"fired", resp.Fired,
			"failed", resp.Failed)
	}
	return resp, nil
}

func invoiceSummary(inv *invoice.Invoice) notification.InvoiceSummary {
	summary := notification.InvoiceSummary{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		Total:         inv.Total,
	}
	if inv.DueDate != nil {
		summary.DueDate = *inv.DueDate
	}
	return summary
}
