package service

import (
	"github.com/billflow/billflow/internal/testutil"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return ServiceParams{
		Logger:        s.Logger,
		Config:        s.Config,
		Clock:         s.Clock,
		Cache:         s.Cache,
		RateTable:     s.RateTable,
		Dispatcher:    s.Dispatcher,
		InvoiceRepo:   s.InvoiceRepo,
		ReminderRepo:  s.ReminderRepo,
		CostEntryRepo: s.CostEntryRepo,
	}
}
