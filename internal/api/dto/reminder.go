package dto

import (
	"time"

	"github.com/billflow/billflow/internal/domain/reminder"
	"github.com/billflow/billflow/internal/types"
	"github.com/billflow/billflow/internal/validator"
)

// ScheduleRemindersRequest installs the due-date reminder template for an
// invoice, replacing any existing schedule
type ScheduleRemindersRequest struct {
	DueDate time.Time `json:"due_date" validate:"required"`
}

func (r *ScheduleRemindersRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ReminderEntryResponse is the API shape of a single reminder entry
type ReminderEntryResponse struct {
	ID             string                `json:"id"`
	OffsetDays     int                   `json:"offset_days"`
	Channel        types.ReminderChannel `json:"channel"`
	FireAt         time.Time             `json:"fire_at"`
	FiredAt        *time.Time            `json:"fired_at,omitempty"`
	NotificationID string                `json:"notification_id,omitempty"`
}

func NewReminderEntryResponse(entry *reminder.Entry) *ReminderEntryResponse {
	return &ReminderEntryResponse{
		ID:             entry.ID,
		OffsetDays:     entry.OffsetDays,
		Channel:        entry.Channel,
		FireAt:         entry.FireAt,
		FiredAt:        entry.FiredAt,
		NotificationID: entry.NotificationID,
	}
}

// ReminderScheduleResponse is the API shape of an installed schedule
type ReminderScheduleResponse struct {
	ID        string                   `json:"id"`
	InvoiceID string                   `json:"invoice_id"`
	DueDate   time.Time                `json:"due_date"`
	Entries   []*ReminderEntryResponse `json:"entries"`
}

func NewReminderScheduleResponse(schedule *reminder.Schedule) *ReminderScheduleResponse {
	resp := &ReminderScheduleResponse{
		ID:        schedule.ID,
		InvoiceID: schedule.InvoiceID,
		DueDate:   schedule.DueDate,
		Entries:   make([]*ReminderEntryResponse, 0, len(schedule.Entries)),
	}
	for _, entry := range schedule.Entries {
		resp.Entries = append(resp.Entries, NewReminderEntryResponse(entry))
	}
	return resp
}

// ProcessRemindersResponse summarizes one firing pass
type ProcessRemindersResponse struct {
	Evaluated int `json:"evaluated"`
	Fired     int `json:"fired"`
	Failed    int `json:"failed"`
}
