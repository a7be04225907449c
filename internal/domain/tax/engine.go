package tax

import (
	"time"

	"github.com/billflow/billflow/internal/types"
	"github.com/shopspring/decimal"
)

// Compute applies the effective rate of input to amount. Negative amounts
// are permitted and flow through the same formula (e.g. a pre-discount
// negative adjustment).
func (t *RateTable) Compute(amount decimal.Decimal, input types.TaxInput, now time.Time) (*Calculation, error) {
	var rate decimal.Decimal
	if input.Kind == types.TaxInputKindRate {
		rate = input.Rate
	} else {
		resolved, err := t.Resolve(input.Region)
		if err != nil {
			return nil, err
		}
		rate = resolved
	}

	taxAmount := RoundMoney(amount.Mul(rate))
	return &Calculation{
		Subtotal:     amount,
		TaxRate:      rate,
		TaxAmount:    taxAmount,
		Total:        amount.Add(taxAmount),
		Region:       regionLabel(input),
		CalculatedAt: now,
	}, nil
}

// ComputeItemized taxes each item independently and sums the results with
// decimal arithmetic, so the grand totals carry no cent-level drift.
func (t *RateTable) ComputeItemized(items []Item, input types.TaxInput, now time.Time) (*ItemizedCalculation, error) {
	result := &ItemizedCalculation{
		Items:        make([]ItemCalculation, 0, len(items)),
		Region:       regionLabel(input),
		CalculatedAt: now,
	}

	subtotal := decimal.Zero
	taxAmount := decimal.Zero
	total := decimal.Zero
	rate := decimal.Zero

	for _, item := range items {
		itemSubtotal := item.Quantity.Mul(item.UnitPrice)
		calc, err := t.Compute(itemSubtotal, input, now)
		if err != nil {
			return nil, err
		}

		result.Items = append(result.Items, ItemCalculation{
			DisplayName: item.DisplayName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Calculation: *calc,
		})

		subtotal = subtotal.Add(calc.Subtotal)
		taxAmount = taxAmount.Add(calc.TaxAmount)
		total = total.Add(calc.Total)
		rate = calc.TaxRate
	}

	result.Totals = Calculation{
		Subtotal:     subtotal,
		TaxRate:      rate,
		TaxAmount:    taxAmount,
		Total:        total,
		Region:       result.Region,
		CalculatedAt: now,
	}
	return result, nil
}
