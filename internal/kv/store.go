package kv

import (
	"context"
)

// Record keys for the logical records the core reads and writes
const (
	KeyInvoices          = "invoices"
	KeyInvoiceSequence   = "invoiceSequence"
	KeyReminderSchedules = "reminderSchedules"
	KeyCostEntries       = "costEntries"
)

// Store is the opaque key-value persistence collaborator. The core only
// requires named records of serialized bytes; the storage technology and
// on-disk format are owned by the implementation.
type Store interface {
	// Get retrieves a record; found is false when the key has never been
	// written
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put writes a single record
	Put(ctx context.Context, key string, value []byte) error

	// PutAll writes several records as one atomic unit. Either all
	// records commit or none do.
	PutAll(ctx context.Context, records map[string][]byte) error

	// Delete removes a record; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
