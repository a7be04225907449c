package costentry

import (
	"time"

	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/shopspring/decimal"
)

// CostEntry is a standalone expense record tracked alongside invoices
type CostEntry struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (e *CostEntry) Validate() error {
	if e.Category == "" {
		return ierr.NewError("cost entry category is required").
			WithHint("Please provide a category").
			Mark(ierr.ErrValidation)
	}
	if !e.Amount.IsPositive() {
		return ierr.NewError("cost entry amount must be greater than 0").
			WithHint("Amount must be greater than 0").
			WithReportableDetails(map[string]any{
				"amount": e.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
