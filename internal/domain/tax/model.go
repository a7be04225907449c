package tax

import (
	"time"

	"github.com/billflow/billflow/internal/types"
	"github.com/shopspring/decimal"
)

// MoneyPrecision is the number of decimal places monetary amounts are
// rounded to. All tax math runs on fixed-point decimals so that summing
// many line items then applying a rate agrees with summing independently
// taxed items to the cent.
const MoneyPrecision = 2

// CustomRegion is reported when the caller supplied a direct rate
// instead of a region code
const CustomRegion = "CUSTOM"

// Calculation is the result of a single tax computation
type Calculation struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Total        decimal.Decimal `json:"total"`
	Region       string          `json:"region"`
	CalculatedAt time.Time       `json:"calculated_at"`
}

// ItemCalculation is a per-item entry of an itemized breakdown
type ItemCalculation struct {
	DisplayName string          `json:"display_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Calculation
}

// ItemizedCalculation is the detailed breakdown across multiple items
type ItemizedCalculation struct {
	Items        []ItemCalculation `json:"items"`
	Totals       Calculation       `json:"totals"`
	Region       string            `json:"region"`
	CalculatedAt time.Time         `json:"calculated_at"`
}

// Item is a quantity/unit-price pair fed into the itemized computation
type Item struct {
	DisplayName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// RoundMoney rounds a monetary amount to cent precision
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPrecision)
}

func regionLabel(input types.TaxInput) string {
	if input.Kind == types.TaxInputKindRegion {
		return input.Region
	}
	return CustomRegion
}
