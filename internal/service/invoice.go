package service

import (
	"context"

	"github.com/billflow/billflow/internal/api/dto"
	"github.com/billflow/billflow/internal/cache"
	"github.com/billflow/billflow/internal/domain/invoice"
	"github.com/billflow/billflow/internal/domain/tax"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/types"
)

// InvoiceService is the invoice lifecycle controller. Create and edit are
// all-or-nothing: a failure at any step leaves no partially committed
// invoice or orphaned reminder schedule behind.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	EditInvoice(ctx context.Context, id string, req *dto.EditInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (*dto.InvoiceResponse, error)
	GetInvoiceStatus(ctx context.Context, id string) (*dto.InvoiceStatusResponse, error)
	ListInvoices(ctx context.Context) (*dto.ListInvoicesResponse, error)
	UpdateInvoiceStatus(ctx context.Context, id string, req *dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
	reminderSvc ReminderService
}

// NewInvoiceService wires the lifecycle controller. The reminder service
// must be the same instance driven by the firing worker so schedule
// replacement stays serialized with ticks.
func NewInvoiceService(params ServiceParams, reminderSvc ReminderService) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		reminderSvc:   reminderSvc,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	input, err := req.TaxInput()
	if err != nil {
		return nil, err
	}

	items := invoice.NormalizeLineItems(req.ToLineItems())
	subtotal := invoice.Subtotal(items)

	now := s.Clock.Now()
	// tax applies to the post-discount amount; a discount larger than the
	// subtotal yields a negative taxable base and flows through unchanged
	calc, err := s.RateTable.Compute(subtotal.Sub(req.DiscountAmount), input, now)
	if err != nil {
		return nil, err
	}

	number, err := s.InvoiceRepo.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber:  number,
		CustomerID:     req.CustomerID,
		LineItems:      items,
		Subtotal:       subtotal,
		TaxRate:        calc.TaxRate,
		TaxAmount:      calc.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Total:          calc.Total,
		Region:         calc.Region,
		DueDate:        req.DueDate,
		InvoiceStatus:  types.InvoiceStatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	if inv.DueDate != nil {
		if _, err := s.reminderSvc.ScheduleReminders(ctx, inv.ID, *inv.DueDate); err != nil {
			// roll the committed invoice back so the failure leaves nothing
			// behind; the reserved number is burned
			if _, delErr := s.InvoiceRepo.Delete(ctx, inv.ID); delErr != nil {
				s.Logger.Errorw("failed to roll back invoice after reminder install failure",
					"invoice_id", inv.ID,
					"error", delErr)
			}
			return nil, err
		}
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"customer_id", inv.CustomerID,
		"total", inv.Total.String())
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) EditInvoice(ctx context.Context, id string, req *dto.EditInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	prev, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		updated.CustomerID = *req.CustomerID
	}
	if items := req.ToLineItems(); items != nil {
		updated.LineItems = invoice.NormalizeLineItems(items)
	}
	if req.DiscountAmount != nil {
		updated.DiscountAmount = *req.DiscountAmount
	}
	if req.DueDate != nil {
		updated.DueDate = req.DueDate
	}

	input, keepRegion := editTaxInput(req, prev)
	updated.Subtotal = invoice.Subtotal(updated.LineItems)

	now := s.Clock.Now()
	calc, err := s.RateTable.Compute(updated.Subtotal.Sub(updated.DiscountAmount), input, now)
	if err != nil {
		return nil, err
	}
	updated.TaxRate = calc.TaxRate
	updated.TaxAmount = calc.TaxAmount
	updated.Total = calc.Total
	if keepRegion {
		updated.Region = prev.Region
	} else {
		updated.Region = calc.Region
	}

	updated.InvoiceStatus = types.InvoiceStatusUpdated
	updated.UpdatedAt = now
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Update(ctx, updated); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixInvoice, id))

	if req.DueDate != nil {
		if _, err := s.reminderSvc.RescheduleReminders(ctx, id, *req.DueDate); err != nil {
			// restore the previous invoice so the edit leaves no partial state
			if updErr := s.InvoiceRepo.Update(ctx, prev); updErr != nil {
				s.Logger.Errorw("failed to restore invoice after reschedule failure",
					"invoice_id", id,
					"error", updErr)
			}
			s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixInvoice, id))
			return nil, err
		}
	}

	s.Logger.Infow("edited invoice",
		"invoice_id", id,
		"total", updated.Total.String())
	return dto.NewInvoiceResponse(updated), nil
}

// editTaxInput picks the tax input for a recompute: an explicit rate or
// region from the request wins, otherwise the invoice's stored region is
// re-resolved, and a rate-based invoice reuses its stored rate. The second
// return reports whether the stored region label should be preserved.
func editTaxInput(req *dto.EditInvoiceRequest, prev *invoice.Invoice) (types.TaxInput, bool) {
	if req.TaxRate != nil {
		return types.NewRateTaxInput(*req.TaxRate), false
	}
	if req.TaxRegion != nil {
		return types.NewRegionTaxInput(*req.TaxRegion), false
	}
	if prev.Region != "" && prev.Region != tax.CustomRegion {
		return types.NewRegionTaxInput(prev.Region), true
	}
	return types.NewRateTaxInput(prev.TaxRate), true
}

// DeleteInvoice cancels the invoice's reminder schedule, then removes the
// invoice. If removal fails the schedule is reinstated, so the delete is
// observable only as a whole.
func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if _, err := s.InvoiceRepo.Get(ctx, id); err != nil {
		return err
	}

	prevSchedule, err := s.ReminderRepo.GetByInvoiceID(ctx, id)
	if err != nil && !ierr.IsNotFound(err) {
		return err
	}

	if err := s.reminderSvc.CancelReminders(ctx, id); err != nil {
		return err
	}

	removed, err := s.InvoiceRepo.Delete(ctx, id)
	if err != nil {
		if prevSchedule != nil {
			if saveErr := s.ReminderRepo.Save(ctx, prevSchedule); saveErr != nil {
				s.Logger.Errorw("failed to reinstate schedule after delete failure",
					"invoice_id", id,
					"error", saveErr)
			}
		}
		return err
	}
	if !removed {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}

	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixInvoice, id))
	s.Logger.Infow("deleted invoice", "invoice_id", id)
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	cacheKey := cache.GenerateKey(cache.PrefixInvoice, id)
	if cached, found := s.Cache.Get(ctx, cacheKey); found {
		if resp, ok := cached.(*dto.InvoiceResponse); ok {
			return resp, nil
		}
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewInvoiceResponse(inv)
	s.Cache.Set(ctx, cacheKey, resp, cache.DefaultExpiration)
	return resp, nil
}

func (s *invoiceService) GetInvoiceByNumber(ctx context.Context, invoiceNumber string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.GetByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) GetInvoiceStatus(ctx context.Context, id string) (*dto.InvoiceStatusResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.reminderSvc.GetReminderHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.InvoiceStatusResponse{
		Invoice:         dto.NewInvoiceResponse(inv),
		Status:          inv.InvoiceStatus,
		LastModified:    inv.UpdatedAt,
		ReminderHistory: history,
	}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context) (*dto.ListInvoicesResponse, error) {
	invoices, err := s.InvoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListInvoicesResponse{
		Items: make([]*dto.InvoiceResponse, 0, len(invoices)),
		Total: len(invoices),
	}
	for _, inv := range invoices {
		resp.Items = append(resp.Items, dto.NewInvoiceResponse(inv))
	}
	return resp, nil
}

// UpdateInvoiceStatus applies an externally driven status transition
// (sent, paid, overdue). Lifecycle statuses remain under the controller's
// own management.
func (s *invoiceService) UpdateInvoiceStatus(ctx context.Context, id string, req *dto.UpdateInvoiceStatusRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	inv.InvoiceStatus = req.Status
	inv.UpdatedAt = s.Clock.Now()
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixInvoice, id))

	s.Logger.Infow("updated invoice status",
		"invoice_id", id,
		"status", req.Status)
	return dto.NewInvoiceResponse(inv), nil
}
