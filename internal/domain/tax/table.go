package tax

import (
	"strings"
	"sync"

	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/shopspring/decimal"
)

// DefaultRateKey is the key under which a region's fallback rate is reported
const DefaultRateKey = "default"

type regionRates struct {
	defaultRate decimal.Decimal
	subregions  map[string]decimal.Decimal
}

// RateTable maps region codes to tax rates. Lookups of a known region with
// an unknown or missing subregion fall back to the region default; lookups
// of an unknown region fail.
type RateTable struct {
	mu      sync.RWMutex
	regions map[string]*regionRates
}

// NewRateTable returns a table seeded with the built-in jurisdictions
func NewRateTable() *RateTable {
	t := &RateTable{regions: make(map[string]*regionRates)}
	for region, rates := range seedRates {
		entry := &regionRates{
			defaultRate: rates[DefaultRateKey],
			subregions:  make(map[string]decimal.Decimal),
		}
		for sub, rate := range rates {
			if sub == DefaultRateKey {
				continue
			}
			entry.subregions[sub] = rate
		}
		t.regions[region] = entry
	}
	return t
}

var seedRates = map[string]map[string]decimal.Decimal{
	"US": {
		DefaultRateKey: decimal.Zero,
		"CA":           decimal.RequireFromString("0.0725"),
		"NY":           decimal.RequireFromString("0.04"),
		"TX":           decimal.RequireFromString("0.0625"),
	},
	"EU": {
		DefaultRateKey: decimal.RequireFromString("0.20"),
		"DE":           decimal.RequireFromString("0.19"),
		"FR":           decimal.RequireFromString("0.20"),
		"IT":           decimal.RequireFromString("0.22"),
	},
	"ASIA": {
		DefaultRateKey: decimal.RequireFromString("0.10"),
		"JP":           decimal.RequireFromString("0.10"),
		"SG":           decimal.RequireFromString("0.07"),
		"IN":           decimal.RequireFromString("0.18"),
	},
}

// splitRegionCode splits "REGION-SUBREGION" into its parts; the subregion
// is empty when absent
func splitRegionCode(code string) (string, string) {
	parts := strings.SplitN(code, "-", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// Resolve returns the effective rate for a region code of form
// REGION or REGION-SUBREGION
func (t *RateTable) Resolve(code string) (decimal.Decimal, error) {
	region, subregion := splitRegionCode(code)

	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.regions[region]
	if !ok {
		return decimal.Zero, ierr.NewError("unknown region").
			WithHintf("Tax region %s is not registered", region).
			WithReportableDetails(map[string]any{
				"region": region,
			}).
			Mark(ierr.ErrNotFound)
	}

	if subregion != "" {
		if rate, ok := entry.subregions[subregion]; ok {
			return rate, nil
		}
		// unknown subregion silently falls back to the region default
	}
	return entry.defaultRate, nil
}

// Rates returns all rates of a region, including the default entry
func (t *RateTable) Rates(region string) (map[string]decimal.Decimal, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.regions[region]
	if !ok {
		return nil, ierr.NewError("unknown region").
			WithHintf("Tax region %s is not registered", region).
			WithReportableDetails(map[string]any{
				"region": region,
			}).
			Mark(ierr.ErrNotFound)
	}

	rates := make(map[string]decimal.Decimal, len(entry.subregions)+1)
	rates[DefaultRateKey] = entry.defaultRate
	for sub, rate := range entry.subregions {
		rates[sub] = rate
	}
	return rates, nil
}

// SetRate upserts a rate and returns the top-level region that changed.
// A new region is created with the given rate as its default;
// "REGION-SUBREGION" updates the subregion entry and a bare "REGION"
// updates the region default.
func (t *RateTable) SetRate(code string, rate decimal.Decimal) string {
	region, subregion := splitRegionCode(code)

	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.regions[region]
	if !ok {
		entry = &regionRates{
			defaultRate: rate,
			subregions:  make(map[string]decimal.Decimal),
		}
		t.regions[region] = entry
		return region
	}

	if subregion != "" {
		entry.subregions[subregion] = rate
		return region
	}
	entry.defaultRate = rate
	return region
}
