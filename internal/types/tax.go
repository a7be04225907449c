package types

import (
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/shopspring/decimal"
)

// TaxInputKind discriminates the rate-or-region variant accepted by the tax engine
type TaxInputKind string

const (
	TaxInputKindRate   TaxInputKind = "rate"
	TaxInputKindRegion TaxInputKind = "region"
)

// TaxInput is a tagged variant: either a direct rate in [0,1] or a region
// code of form REGION or REGION-SUBREGION resolved against the rate table.
type TaxInput struct {
	Kind   TaxInputKind    `json:"kind"`
	Rate   decimal.Decimal `json:"rate,omitempty"`
	Region string          `json:"region,omitempty"`
}

// NewRateTaxInput builds a direct-rate tax input. No region validation occurs.
func NewRateTaxInput(rate decimal.Decimal) TaxInput {
	return TaxInput{Kind: TaxInputKindRate, Rate: rate}
}

// NewRegionTaxInput builds a region-code tax input
func NewRegionTaxInput(region string) TaxInput {
	return TaxInput{Kind: TaxInputKindRegion, Region: region}
}

func (t TaxInput) Validate() error {
	switch t.Kind {
	case TaxInputKindRate:
		if t.Rate.IsNegative() || t.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return ierr.NewError("tax rate must be in [0,1]").
				WithHint("Tax rate must be between 0 and 1").
				WithReportableDetails(map[string]any{
					"rate": t.Rate.String(),
				}).
				Mark(ierr.ErrValidation)
		}
	case TaxInputKindRegion:
		if t.Region == "" {
			return ierr.NewError("tax region must not be empty").
				WithHint("Please provide a region code").
				Mark(ierr.ErrValidation)
		}
	default:
		return ierr.NewError("invalid tax input kind").
			WithHint("Tax input must be either a rate or a region code").
			WithReportableDetails(map[string]any{
				"kind": string(t.Kind),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
