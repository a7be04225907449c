package tax

import (
	"testing"
	"time"

	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeWithDirectRate(t *testing.T) {
	table := NewRateTable()

	calc, err := table.Compute(dec("200"), types.NewRateTaxInput(dec("0.15")), testNow)
	require.NoError(t, err)

	assert.True(t, calc.TaxAmount.Equal(dec("30")), "tax amount %s", calc.TaxAmount)
	assert.True(t, calc.Total.Equal(dec("230")), "total %s", calc.Total)
	assert.True(t, calc.TaxRate.Equal(dec("0.15")))
	assert.Equal(t, CustomRegion, calc.Region)
	assert.Equal(t, testNow, calc.CalculatedAt)
}

func TestComputeWithRegion(t *testing.T) {
	tests := []struct {
		name      string
		region    string
		amount    string
		wantRate  string
		wantTax   string
		wantTotal string
	}{
		{
			name:      "subregion rate",
			region:    "US-CA",
			amount:    "100",
			wantRate:  "0.0725",
			wantTax:   "7.25",
			wantTotal: "107.25",
		},
		{
			name:      "unknown subregion falls back to region default",
			region:    "US-ZZ",
			amount:    "100",
			wantRate:  "0",
			wantTax:   "0",
			wantTotal: "100",
		},
		{
			name:      "bare region uses default",
			region:    "EU",
			amount:    "50",
			wantRate:  "0.20",
			wantTax:   "10",
			wantTotal: "60",
		},
		{
			name:      "asia subregion",
			region:    "ASIA-IN",
			amount:    "1000",
			wantRate:  "0.18",
			wantTax:   "180",
			wantTotal: "1180",
		},
	}

	table := NewRateTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := table.Compute(dec(tt.amount), types.NewRegionTaxInput(tt.region), testNow)
			require.NoError(t, err)

			assert.True(t, calc.TaxRate.Equal(dec(tt.wantRate)), "rate %s", calc.TaxRate)
			assert.True(t, calc.TaxAmount.Equal(dec(tt.wantTax)), "tax %s", calc.TaxAmount)
			assert.True(t, calc.Total.Equal(dec(tt.wantTotal)), "total %s", calc.Total)
			assert.Equal(t, tt.region, calc.Region)
		})
	}
}

func TestComputeUnknownRegion(t *testing.T) {
	table := NewRateTable()

	_, err := table.Compute(dec("100"), types.NewRegionTaxInput("MARS"), testNow)
	require.Error(t, err)
	assert.True(t, ierr.IsNotFound(err))
}

func TestComputeRoundsToCents(t *testing.T) {
	table := NewRateTable()

	// 10.01 * 0.0725 = 0.725725
	calc, err := table.Compute(dec("10.01"), types.NewRateTaxInput(dec("0.0725")), testNow)
	require.NoError(t, err)
	assert.True(t, calc.TaxAmount.Equal(dec("0.73")), "tax %s", calc.TaxAmount)
}

func TestComputeNegativeAmount(t *testing.T) {
	table := NewRateTable()

	calc, err := table.Compute(dec("-40"), types.NewRateTaxInput(dec("0.10")), testNow)
	require.NoError(t, err)
	assert.True(t, calc.TaxAmount.Equal(dec("-4")))
	assert.True(t, calc.Total.Equal(dec("-44")))
}

func TestComputeItemized(t *testing.T) {
	table := NewRateTable()

	items := []Item{
		{DisplayName: "widget", Quantity: dec("2"), UnitPrice: dec("50")},
		{DisplayName: "gadget", Quantity: dec("1"), UnitPrice: dec("19.99")},
	}

	calc, err := table.ComputeItemized(items, types.NewRateTaxInput(dec("0.10")), testNow)
	require.NoError(t, err)
	require.Len(t, calc.Items, 2)

	assert.True(t, calc.Items[0].TaxAmount.Equal(dec("10")))
	assert.True(t, calc.Items[1].TaxAmount.Equal(dec("2")), "19.99 * 0.10 rounds to 2.00")

	// grand totals are the exact decimal sum of the per-item results
	assert.True(t, calc.Totals.Subtotal.Equal(dec("119.99")))
	assert.True(t, calc.Totals.TaxAmount.Equal(dec("12")))
	assert.True(t, calc.Totals.Total.Equal(dec("131.99")))
}

func TestRatesIncludesDefault(t *testing.T) {
	table := NewRateTable()

	rates, err := table.Rates("US")
	require.NoError(t, err)

	assert.Contains(t, rates, DefaultRateKey)
	assert.Contains(t, rates, "CA")
	assert.True(t, rates["CA"].Equal(dec("0.0725")))

	_, err = table.Rates("MARS")
	assert.True(t, ierr.IsNotFound(err))
}

func TestSetRate(t *testing.T) {
	table := NewRateTable()

	t.Run("update existing subregion", func(t *testing.T) {
		table.SetRate("US-CA", dec("0.08"))
		rate, err := table.Resolve("US-CA")
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("0.08")))
	})

	t.Run("update region default", func(t *testing.T) {
		table.SetRate("US", dec("0.05"))
		rate, err := table.Resolve("US-ZZ")
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("0.05")))
	})

	t.Run("create new region", func(t *testing.T) {
		region := table.SetRate("LATAM", dec("0.16"))
		assert.Equal(t, "LATAM", region)

		rate, err := table.Resolve("LATAM")
		require.NoError(t, err)
		assert.True(t, rate.Equal(dec("0.16")))
	})
}
