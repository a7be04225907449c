package reminder

import (
	"context"
)

// Repository defines the interface for reminder schedule persistence.
// Schedules are keyed by invoice id; at most one schedule exists per
// invoice at any time.
type Repository interface {
	// Save installs or replaces the schedule for its invoice
	Save(ctx context.Context, schedule *Schedule) error

	// GetByInvoiceID retrieves the active schedule for an invoice
	GetByInvoiceID(ctx context.Context, invoiceID string) (*Schedule, error)

	// DeleteByInvoiceID removes an invoice's schedule; removing a missing
	// schedule reports false without error
	DeleteByInvoiceID(ctx context.Context, invoiceID string) (bool, error)

	// List retrieves all active schedules
	List(ctx context.Context) ([]*Schedule, error)
}
