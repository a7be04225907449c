package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/billflow/billflow/internal/clock"
	"github.com/billflow/billflow/internal/domain/invoice"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/kv"
	"github.com/billflow/billflow/internal/logger"
)

// invoicesRecord is the serialized form of the invoice collection. The
// slice order is insertion order.
type invoicesRecord struct {
	Invoices []*invoice.Invoice `json:"invoices"`
}

// invoiceRepository keeps the authoritative invoice collection in memory
// and mirrors every committed mutation to the kv collaborator before
// returning. The invoice sequence counter lives alongside the collection
// so a create commits both records as one atomic unit.
type invoiceRepository struct {
	mu       sync.RWMutex
	store    kv.Store
	clock    clock.Clock
	logger   *logger.Logger
	invoices map[string]*invoice.Invoice
	order    []string
	sequence invoice.SequenceState
}

// NewInvoiceRepository hydrates the collection and counter from the kv
// store
func NewInvoiceRepository(store kv.Store, clk clock.Clock, log *logger.Logger) (invoice.Repository, error) {
	r := &invoiceRepository{
		store:    store,
		clock:    clk,
		logger:   log,
		invoices: make(map[string]*invoice.Invoice),
	}

	ctx := context.Background()

	if data, found, err := store.Get(ctx, kv.KeyInvoices); err != nil {
		return nil, err
	} else if found {
		var record invoicesRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored invoice collection is corrupt").
				Mark(ierr.ErrDatabase)
		}
		for _, inv := range record.Invoices {
			r.invoices[inv.ID] = inv
			r.order = append(r.order, inv.ID)
		}
	}

	if data, found, err := store.Get(ctx, kv.KeyInvoiceSequence); err != nil {
		return nil, err
	} else if found {
		if err := json.Unmarshal(data, &r.sequence); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Stored invoice sequence is corrupt").
				Mark(ierr.ErrDatabase)
		}
	}

	log.Debugw("hydrated invoice repository",
		"invoices", len(r.order),
		"sequence", r.sequence.LastValue,
	)
	return r, nil
}

func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sequence.LastValue++
	r.sequence.UpdatedAt = r.clock.Now()
	return invoice.FormatInvoiceNumber(r.sequence.LastValue, r.clock.Now()), nil
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invoices[inv.ID]; exists {
		return ierr.NewError("invoice already exists").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	// Persist invoices and sequence counter as one atomic unit before
	// touching the in-memory state, so a failed write leaves nothing
	// half committed.
	records, err := r.marshalWith(copyInvoice(inv))
	if err != nil {
		return err
	}
	if err := r.store.PutAll(ctx, records); err != nil {
		return err
	}

	r.invoices[inv.ID] = copyInvoice(inv)
	r.order = append(r.order, inv.ID)
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv, exists := r.invoices[id]
	if !exists {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"invoice_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, invoiceNumber string) (*invoice.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if inv := r.invoices[id]; inv.InvoiceNumber == invoiceNumber {
			return copyInvoice(inv), nil
		}
	}
	return nil, ierr.NewError("invoice not found").
		WithHintf("Invoice with number %s was not found", invoiceNumber).
		WithReportableDetails(map[string]any{
			"invoice_number": invoiceNumber,
		}).
		Mark(ierr.ErrNotFound)
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.invoices[inv.ID]
	if !exists {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice with ID %s was not found", inv.ID).
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	r.invoices[inv.ID] = copyInvoice(inv)
	if err := r.persist(ctx); err != nil {
		r.invoices[inv.ID] = prev
		return err
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.invoices[id]
	if !exists {
		return false, nil
	}

	prevOrder := r.order
	delete(r.invoices, id)
	r.order = make([]string, 0, len(prevOrder)-1)
	for _, existing := range prevOrder {
		if existing != id {
			r.order = append(r.order, existing)
		}
	}

	if err := r.persist(ctx); err != nil {
		r.invoices[id] = prev
		r.order = prevOrder
		return false, err
	}
	return true, nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]*invoice.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*invoice.Invoice, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, copyInvoice(r.invoices[id]))
	}
	return result, nil
}

func (r *invoiceRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

// persist mirrors the in-memory collection and counter to the kv store.
// Callers hold the write lock.
func (r *invoiceRepository) persist(ctx context.Context) error {
	records, err := r.marshalWith(nil)
	if err != nil {
		return err
	}
	return r.store.PutAll(ctx, records)
}

// marshalWith serializes the collection, optionally with one extra invoice
// appended, alongside the sequence record. Callers hold the lock.
func (r *invoiceRepository) marshalWith(extra *invoice.Invoice) (map[string][]byte, error) {
	record := invoicesRecord{Invoices: make([]*invoice.Invoice, 0, len(r.order)+1)}
	for _, id := range r.order {
		record.Invoices = append(record.Invoices, r.invoices[id])
	}
	if extra != nil {
		record.Invoices = append(record.Invoices, extra)
	}

	invoicesData, err := json.Marshal(record)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to serialize the invoice collection").
			Mark(ierr.ErrSystem)
	}
	sequenceData, err := json.Marshal(r.sequence)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to serialize the invoice sequence").
			Mark(ierr.ErrSystem)
	}

	return map[string][]byte{
		kv.KeyInvoices:        invoicesData,
		kv.KeyInvoiceSequence: sequenceData,
	}, nil
}

// copyInvoice returns a deep copy so callers can never mutate the
// authoritative in-memory state
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}

	out := *inv
	if inv.LineItems != nil {
		out.LineItems = make([]*invoice.LineItem, len(inv.LineItems))
		for i, item := range inv.LineItems {
			itemCopy := *item
			out.LineItems[i] = &itemCopy
		}
	}
	if inv.DueDate != nil {
		due := *inv.DueDate
		out.DueDate = &due
	}
	return &out
}
