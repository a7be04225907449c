package dto

import (
	"time"

	"github.com/billflow/billflow/internal/domain/costentry"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateCostEntryRequest records an operating cost against a category
type CreateCostEntryRequest struct {
	Category    string          `json:"category" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Date        *time.Time      `json:"date,omitempty"`
	Description string          `json:"description"`
}

func (r *CreateCostEntryRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if !r.Amount.IsPositive() {
		return ierr.NewError("cost amount must be positive").
			WithHint("Cost entry amount must be greater than zero").
			WithReportableDetails(map[string]any{
				"amount": r.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// UpdateCostEntryRequest carries a partial update of a cost entry
type UpdateCostEntryRequest struct {
	Category    *string          `json:"category,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
}

func (r *UpdateCostEntryRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Amount != nil && !r.Amount.IsPositive() {
		return ierr.NewError("cost amount must be positive").
			WithHint("Cost entry amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CostEntryResponse is the API shape of a stored cost entry
type CostEntryResponse struct {
	*costentry.CostEntry
}

// ListCostEntriesResponse returns cost entries in insertion order
type ListCostEntriesResponse struct {
	Items []*CostEntryResponse `json:"items"`
	Total int                  `json:"total"`
}
