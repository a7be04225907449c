package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/billflow/billflow/internal/clock"
	"github.com/billflow/billflow/internal/domain/invoice"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/repository"
	"github.com/billflow/billflow/internal/testutil"
	"github.com/billflow/billflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(number string) *invoice.Invoice {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	return &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceNumber: number,
		CustomerID:    "cust_1",
		LineItems: invoice.NormalizeLineItems([]*invoice.LineItem{
			{DisplayName: "consulting", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
		}),
		Subtotal:      decimal.NewFromInt(100),
		Total:         decimal.NewFromInt(100),
		InvoiceStatus: types.InvoiceStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newInvoiceRepo(t *testing.T, store *testutil.InMemoryKVStore, clk clock.Clock) invoice.Repository {
	t.Helper()
	repo, err := repository.NewInvoiceRepository(store, clk, testutil.NewTestLogger())
	require.NoError(t, err)
	return repo
}

func TestInvoiceNumbersStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewTestClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	repo := newInvoiceRepo(t, testutil.NewInMemoryKVStore(), clk)

	first, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	second, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)

	assert.Equal(t, "INV-20240315-0001", first)
	assert.Equal(t, "INV-20240315-0002", second)
}

func TestCreateAndHydrate(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewTestClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	store := testutil.NewInMemoryKVStore()
	repo := newInvoiceRepo(t, store, clk)

	number, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	inv := newTestInvoice(number)
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, number, got.InvoiceNumber)

	byNumber, err := repo.GetByNumber(ctx, number)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byNumber.ID)

	// a fresh repository over the same store sees the committed state and
	// continues the sequence without reusing numbers
	repo2 := newInvoiceRepo(t, store, clk)
	count, err := repo2.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	next, err := repo2.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-20240315-0002", next)
}

func TestReservedNumberReissuedAfterRestart(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewTestClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	store := testutil.NewInMemoryKVStore()
	repo := newInvoiceRepo(t, store, clk)

	// reserve a number but never commit an invoice with it
	reserved, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-20240315-0001", reserved)

	// the counter bump was never persisted, so a restart reissues it
	repo2 := newInvoiceRepo(t, store, clk)
	next, err := repo2.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, reserved, next)
}

func TestCreateRollsBackOnPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewTestClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	store := testutil.NewInMemoryKVStore()
	repo := newInvoiceRepo(t, store, clk)

	number, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)

	store.FailWrites(true)
	inv := newTestInvoice(number)
	err = repo.Create(ctx, inv)
	require.Error(t, err)
	assert.True(t, ierr.IsDatabase(err))

	// nothing half committed: the invoice is not observable in memory
	_, err = repo.Get(ctx, inv.ID)
	assert.True(t, ierr.IsNotFound(err))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUpdateRollsBackOnPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewTestClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	store := testutil.NewInMemoryKVStore()
	repo := newInvoiceRepo(t, store, clk)

	number, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	inv := newTestInvoice(number)
	require.NoError(t, repo.Create(ctx, inv))

	store.FailWrites(true)
	changed, err := repo.Get(ctx, inv.ID)
	require.NoError(t, err)
	changed.CustomerID = "cust_2"
	require.Error(t, repo.Update(ctx, changed))

	store.FailWrites(false)
	got, err := repo.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "cust_1", got.CustomerID)
}

func TestDeleteMissingInvoice(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewTestClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	repo := newInvoiceRepo(t, testutil.NewInMemoryKVStore(), clk)

	removed, err := repo.Delete(ctx, "inv_missing")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewTestClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	repo := newInvoiceRepo(t, testutil.NewInMemoryKVStore(), clk)

	number, err := repo.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	inv := newTestInvoice(number)
	require.NoError(t, repo.Create(ctx, inv))

	got, err := repo.Get(ctx, inv.ID)
	require.NoError(t, err)
	got.CustomerID = "mutated"
	got.LineItems[0].DisplayName = "mutated"

	fresh, err := repo.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "cust_1", fresh.CustomerID)
	assert.Equal(t, "consulting", fresh.LineItems[0].DisplayName)
}
