package invoice

import (
	"fmt"
	"time"
)

// SequenceState is the persisted deployment-wide invoice number counter
type SequenceState struct {
	LastValue int64     `json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FormatInvoiceNumber renders a sequence value as a human readable invoice
// number, e.g. INV-20260830-0042. The embedded date is the creation date at
// allocation time; it carries no ordering meaning since the counter never
// resets by day.
func FormatInvoiceNumber(sequence int64, at time.Time) string {
	return fmt.Sprintf("INV-%s-%04d", at.Format("20060102"), sequence)
}
