package invoice

import (
	"time"

	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem represents a single line item in an invoice. Amount is always
// derived from Quantity and UnitPrice at write time and never trusted from
// a caller payload.
type LineItem struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice represents the invoice domain model. Subtotal, TaxAmount and
// Total are derived fields, recomputed from the line items, tax rate and
// discount on every create/edit.
type Invoice struct {
	ID             string              `json:"id"`
	InvoiceNumber  string              `json:"invoice_number"`
	CustomerID     string              `json:"customer_id"`
	LineItems      []*LineItem         `json:"line_items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	TaxRate        decimal.Decimal     `json:"tax_rate"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	Total          decimal.Decimal     `json:"total"`
	Region         string              `json:"region,omitempty"`
	DueDate        *time.Time          `json:"due_date,omitempty"`
	InvoiceStatus  types.InvoiceStatus `json:"invoice_status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// NormalizeLineItems assigns ids where missing and recomputes each item's
// amount from quantity and unit price
func NormalizeLineItems(items []*LineItem) []*LineItem {
	normalized := make([]*LineItem, len(items))
	for i, item := range items {
		id := item.ID
		if id == "" {
			id = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM)
		}
		normalized[i] = &LineItem{
			ID:          id,
			DisplayName: item.DisplayName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Quantity.Mul(item.UnitPrice),
		}
	}
	return normalized
}

// Subtotal sums the derived line item amounts
func Subtotal(items []*LineItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	return subtotal
}

func (li *LineItem) Validate() error {
	if !li.Quantity.IsPositive() {
		return ierr.NewError("line item quantity must be positive").
			WithHint("Each line item needs a quantity greater than zero").
			WithReportableDetails(map[string]any{
				"display_name": li.DisplayName,
				"quantity":     li.Quantity.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if li.UnitPrice.IsNegative() {
		return ierr.NewError("line item unit price must be non negative").
			WithHint("Each line item needs a non negative unit price").
			WithReportableDetails(map[string]any{
				"display_name": li.DisplayName,
				"unit_price":   li.UnitPrice.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (i *Invoice) Validate() error {
	if len(i.LineItems) == 0 {
		return ierr.NewError("invoice must have at least one line item").
			WithHint("Please provide at least one line item").
			Mark(ierr.ErrValidation)
	}
	for _, item := range i.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	if i.DiscountAmount.IsNegative() {
		return ierr.NewError("discount amount must be non negative").
			WithHint("Discount amount cannot be negative").
			WithReportableDetails(map[string]any{
				"discount_amount": i.DiscountAmount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceStatus.Validate(); err != nil {
		return err
	}
	if i.UpdatedAt.Before(i.CreatedAt) {
		return ierr.NewError("updated_at must not precede created_at").
			Mark(ierr.ErrValidation)
	}
	return nil
}
