package reminder

import (
	"sort"
	"time"

	"github.com/billflow/billflow/internal/types"
)

// OffsetTemplate pairs a due-date-relative day offset with the channel the
// reminder fires on
type OffsetTemplate struct {
	OffsetDays int
	Channel    types.ReminderChannel
}

// DefaultOffsets is the canonical reminder timeline relative to an
// invoice's due date. It is a policy constant, not derived from invoice
// content.
var DefaultOffsets = []OffsetTemplate{
	{OffsetDays: -7, Channel: types.ReminderChannelEmail},
	{OffsetDays: -3, Channel: types.ReminderChannelEmail},
	{OffsetDays: -1, Channel: types.ReminderChannelSMS},
	{OffsetDays: 0, Channel: types.ReminderChannelBoth},
	{OffsetDays: 1, Channel: types.ReminderChannelBoth},
	{OffsetDays: 7, Channel: types.ReminderChannelBoth},
}

// Entry is one scheduled notification within a schedule. FiredAt stays nil
// until the entry fires; each entry fires at most once.
type Entry struct {
	ID             string                `json:"id"`
	OffsetDays     int                   `json:"offset_days"`
	Channel        types.ReminderChannel `json:"channel"`
	FireAt         time.Time             `json:"fire_at"`
	FiredAt        *time.Time            `json:"fired_at,omitempty"`
	NotificationID string                `json:"notification_id,omitempty"`
}

// Schedule is the reminder timeline of a single invoice. At most one
// schedule is active per invoice; replacing a due date swaps the whole
// schedule atomically.
type Schedule struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoice_id"`
	DueDate   time.Time `json:"due_date"`
	Entries   []*Entry  `json:"entries"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSchedule builds the canonical schedule for a due date
func NewSchedule(invoiceID string, dueDate time.Time, now time.Time) *Schedule {
	entries := make([]*Entry, 0, len(DefaultOffsets))
	for _, tmpl := range DefaultOffsets {
		entries = append(entries, &Entry{
			ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REMINDER_ENTRY),
			OffsetDays: tmpl.OffsetDays,
			Channel:    tmpl.Channel,
			FireAt:     dueDate.AddDate(0, 0, tmpl.OffsetDays),
		})
	}
	return &Schedule{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REMINDER_SCHEDULE),
		InvoiceID: invoiceID,
		DueDate:   dueDate,
		Entries:   entries,
		CreatedAt: now,
	}
}

// Pending returns entries that are due at now and have not fired yet.
// Entries whose fire time had already passed when the schedule was
// installed are included; they fire on the next evaluation tick rather
// than being suppressed.
func (s *Schedule) Pending(now time.Time) []*Entry {
	var pending []*Entry
	for _, entry := range s.Entries {
		if entry.FiredAt == nil && !entry.FireAt.After(now) {
			pending = append(pending, entry)
		}
	}
	return pending
}

// Fired returns the fired entries in chronological FiredAt order
func (s *Schedule) Fired() []*Entry {
	var fired []*Entry
	for _, entry := range s.Entries {
		if entry.FiredAt != nil {
			fired = append(fired, entry)
		}
	}
	sort.Slice(fired, func(i, j int) bool {
		return fired[i].FiredAt.Before(*fired[j].FiredAt)
	})
	return fired
}
