package dto

import (
	"github.com/billflow/billflow/internal/domain/tax"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/types"
	"github.com/billflow/billflow/internal/validator"
	"github.com/shopspring/decimal"
)

// taxInput resolves the rate-or-region pair used across tax and invoice
// requests into the tagged variant the engine accepts. Exactly one of the
// two may be set; when neither is, the rate defaults to zero.
func taxInput(rate *decimal.Decimal, region *string) (types.TaxInput, error) {
	if rate != nil && region != nil {
		return types.TaxInput{}, ierr.NewError("tax_rate and tax_region are mutually exclusive").
			WithHint("Provide either a direct tax rate or a region code, not both").
			Mark(ierr.ErrValidation)
	}
	if region != nil {
		input := types.NewRegionTaxInput(*region)
		return input, input.Validate()
	}
	effectiveRate := decimal.Zero
	if rate != nil {
		effectiveRate = *rate
	}
	input := types.NewRateTaxInput(effectiveRate)
	return input, input.Validate()
}

// ComputeTaxRequest represents the request payload for a single tax
// computation. Negative amounts are permitted and flow through the same
// formula.
type ComputeTaxRequest struct {
	Amount    decimal.Decimal  `json:"amount"`
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxRegion *string          `json:"tax_region,omitempty"`
}

func (r *ComputeTaxRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	_, err := r.TaxInput()
	return err
}

func (r *ComputeTaxRequest) TaxInput() (types.TaxInput, error) {
	return taxInput(r.TaxRate, r.TaxRegion)
}

// TaxItemRequest is one quantity/unit-price pair of an itemized computation
type TaxItemRequest struct {
	DisplayName string          `json:"display_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ComputeItemizedTaxRequest represents the request payload for a detailed
// per-item tax breakdown
type ComputeItemizedTaxRequest struct {
	Items     []TaxItemRequest `json:"items" validate:"required,min=1"`
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxRegion *string          `json:"tax_region,omitempty"`
}

func (r *ComputeItemizedTaxRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	_, err := r.TaxInput()
	return err
}

func (r *ComputeItemizedTaxRequest) TaxInput() (types.TaxInput, error) {
	return taxInput(r.TaxRate, r.TaxRegion)
}

func (r *ComputeItemizedTaxRequest) ToItems() []tax.Item {
	items := make([]tax.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = tax.Item{
			DisplayName: item.DisplayName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}
	return items
}

// UpdateTaxRateRequest upserts a rate for REGION or REGION-SUBREGION
type UpdateTaxRateRequest struct {
	Region string          `json:"region" validate:"required"`
	Rate   decimal.Decimal `json:"rate"`
}

func (r *UpdateTaxRateRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Rate.IsNegative() {
		return ierr.NewError("tax rate must be non negative").
			WithHint("Tax rate cannot be negative").
			WithReportableDetails(map[string]any{
				"rate": r.Rate.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TaxCalculationResponse mirrors the engine's calculation result
type TaxCalculationResponse struct {
	*tax.Calculation
}

// ItemizedTaxResponse mirrors the engine's itemized breakdown
type ItemizedTaxResponse struct {
	*tax.ItemizedCalculation
}

// TaxRatesResponse lists the rates of one region, including the default
type TaxRatesResponse struct {
	Region string                     `json:"region"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}
