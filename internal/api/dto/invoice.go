package dto

import (
	"time"

	"github.com/billflow/billflow/internal/domain/invoice"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/types"
	"github.com/billflow/billflow/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateLineItemRequest is one quantity/unit-price pair on an invoice
type CreateLineItemRequest struct {
	DisplayName string          `json:"display_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest represents the request payload for invoice creation
type CreateInvoiceRequest struct {
	CustomerID     string                  `json:"customer_id" validate:"required"`
	LineItems      []CreateLineItemRequest `json:"line_items" validate:"required,min=1"`
	TaxRate        *decimal.Decimal        `json:"tax_rate,omitempty"`
	TaxRegion      *string                 `json:"tax_region,omitempty"`
	DiscountAmount decimal.Decimal         `json:"discount_amount"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.DiscountAmount.IsNegative() {
		return ierr.NewError("discount amount must be non negative").
			WithHint("Discount amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	_, err := r.TaxInput()
	return err
}

func (r *CreateInvoiceRequest) TaxInput() (types.TaxInput, error) {
	return taxInput(r.TaxRate, r.TaxRegion)
}

func (r *CreateInvoiceRequest) ToLineItems() []*invoice.LineItem {
	return toLineItems(r.LineItems)
}

func toLineItems(reqs []CreateLineItemRequest) []*invoice.LineItem {
	items := make([]*invoice.LineItem, len(reqs))
	for i, req := range reqs {
		items[i] = &invoice.LineItem{
			DisplayName: req.DisplayName,
			Quantity:    req.Quantity,
			UnitPrice:   req.UnitPrice,
		}
	}
	return items
}

// EditInvoiceRequest carries a partial update. Nil fields keep the current
// value; a non-nil line item slice replaces the whole set.
type EditInvoiceRequest struct {
	CustomerID     *string                 `json:"customer_id,omitempty"`
	LineItems      []CreateLineItemRequest `json:"line_items,omitempty"`
	TaxRate        *decimal.Decimal        `json:"tax_rate,omitempty"`
	TaxRegion      *string                 `json:"tax_region,omitempty"`
	DiscountAmount *decimal.Decimal        `json:"discount_amount,omitempty"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
}

func (r *EditInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.DiscountAmount != nil && r.DiscountAmount.IsNegative() {
		return ierr.NewError("discount amount must be non negative").
			WithHint("Discount amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if r.TaxRate != nil && r.TaxRegion != nil {
		return ierr.NewError("tax_rate and tax_region are mutually exclusive").
			WithHint("Provide either a direct tax rate or a region code, not both").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *EditInvoiceRequest) ToLineItems() []*invoice.LineItem {
	if r.LineItems == nil {
		return nil
	}
	return toLineItems(r.LineItems)
}

// UpdateInvoiceStatusRequest moves an invoice to an externally driven status
type UpdateInvoiceStatusRequest struct {
	Status types.InvoiceStatus `json:"status" validate:"required"`
}

func (r *UpdateInvoiceStatusRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Status.Validate(); err != nil {
		return err
	}
	if !r.Status.IsExternal() {
		return ierr.NewError("status cannot be set directly").
			WithHintf("Status %s is managed by the invoice lifecycle", r.Status).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// InvoiceResponse is the API shape of a stored invoice
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse returns invoices in insertion order
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}

// InvoiceStatusResponse is the consolidated status view of one invoice:
// the invoice itself, its reminder history and the last modification time
type InvoiceStatusResponse struct {
	Invoice         *InvoiceResponse         `json:"invoice"`
	Status          types.InvoiceStatus      `json:"status"`
	LastModified    time.Time                `json:"last_modified"`
	ReminderHistory []*ReminderEntryResponse `json:"reminder_history"`
}
