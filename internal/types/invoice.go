package types

import (
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the lifecycle state of an invoice.
// Only draft and updated are produced by the core's own create/edit paths;
// sent, paid and overdue are set by external status updates.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusUpdated InvoiceStatus = "updated"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusUpdated,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsExternal reports whether the status may only be set through an external
// status update, never by the core's create/edit paths.
func (s InvoiceStatus) IsExternal() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusPaid || s == InvoiceStatusOverdue
}
