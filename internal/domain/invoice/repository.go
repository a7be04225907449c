package invoice

import (
	"context"
)

// Repository defines the interface for invoice persistence operations.
// Implementations hold the authoritative in-memory collection and mirror
// every committed mutation to the persistence collaborator synchronously
// before returning.
type Repository interface {
	// NextInvoiceNumber reserves the next sequence value and returns it
	// formatted as an invoice number. The counter bump is committed
	// together with the invoice on Create; a reserved number whose
	// invoice never commits is reissued after restart but can never be
	// shared by two committed invoices.
	NextInvoiceNumber(ctx context.Context) (string, error)

	// Create commits a new invoice together with the reserved sequence
	// counter as one atomic persistence unit
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetByNumber retrieves an invoice by its assigned invoice number
	GetByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice; deleting a missing id reports false
	// without error. Sequence numbers are never reclaimed.
	Delete(ctx context.Context, id string) (bool, error)

	// List retrieves all invoices in insertion order
	List(ctx context.Context) ([]*Invoice, error)

	// Count returns the total number of invoices
	Count(ctx context.Context) (int, error)
}
