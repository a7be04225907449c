package testutil

import (
	"context"
	"time"

	"github.com/billflow/billflow/internal/cache"
	"github.com/billflow/billflow/internal/clock"
	"github.com/billflow/billflow/internal/config"
	"github.com/billflow/billflow/internal/domain/costentry"
	"github.com/billflow/billflow/internal/domain/invoice"
	"github.com/billflow/billflow/internal/domain/reminder"
	"github.com/billflow/billflow/internal/domain/tax"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/repository"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// NewTestLogger returns a logger that discards everything
func NewTestLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// BaseServiceTestSuite provides common setup for service tests: a manual
// clock, an in-memory persistence store with failure injection, hydrated
// repositories, a seeded rate table and a recording dispatcher.
type BaseServiceTestSuite struct {
	suite.Suite

	Ctx        context.Context
	Config     *config.Configuration
	Logger     *logger.Logger
	Clock      *clock.TestClock
	Cache      cache.Cache
	KV         *InMemoryKVStore
	Dispatcher *InMemoryDispatcher
	RateTable  *tax.RateTable

	InvoiceRepo   invoice.Repository
	ReminderRepo  reminder.Repository
	CostEntryRepo costentry.Repository
}

// SetupTest initializes fresh state before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.Ctx = context.Background()
	s.Config = config.GetDefaultConfig()
	s.Logger = NewTestLogger()
	s.Clock = clock.NewTestClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))
	s.Cache = cache.NewInMemoryCache()
	s.KV = NewInMemoryKVStore()
	s.Dispatcher = NewInMemoryDispatcher()
	s.RateTable = tax.NewRateTable()

	var err error
	s.InvoiceRepo, err = repository.NewInvoiceRepository(s.KV, s.Clock, s.Logger)
	s.Require().NoError(err)
	s.ReminderRepo, err = repository.NewReminderRepository(s.KV, s.Logger)
	s.Require().NoError(err)
	s.CostEntryRepo, err = repository.NewCostEntryRepository(s.KV, s.Logger)
	s.Require().NoError(err)
}
