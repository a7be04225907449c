package service

import (
	"github.com/billflow/billflow/internal/cache"
	"github.com/billflow/billflow/internal/clock"
	"github.com/billflow/billflow/internal/config"
	"github.com/billflow/billflow/internal/domain/costentry"
	"github.com/billflow/billflow/internal/domain/invoice"
	"github.com/billflow/billflow/internal/domain/reminder"
	"github.com/billflow/billflow/internal/domain/tax"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/notification"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Clock  clock.Clock
	Cache  cache.Cache

	// Domain collaborators
	RateTable  *tax.RateTable
	Dispatcher notification.Dispatcher

	// Repositories
	InvoiceRepo   invoice.Repository
	ReminderRepo  reminder.Repository
	CostEntryRepo costentry.Repository
}
