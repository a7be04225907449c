package main

import (
	"context"
	"net/http"
	"time"

	"github.com/billflow/billflow/internal/api"
	v1 "github.com/billflow/billflow/internal/api/v1"
	"github.com/billflow/billflow/internal/cache"
	"github.com/billflow/billflow/internal/clock"
	"github.com/billflow/billflow/internal/config"
	"github.com/billflow/billflow/internal/domain/costentry"
	"github.com/billflow/billflow/internal/domain/invoice"
	"github.com/billflow/billflow/internal/domain/reminder"
	"github.com/billflow/billflow/internal/domain/tax"
	"github.com/billflow/billflow/internal/kv"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/notification"
	"github.com/billflow/billflow/internal/repository"
	"github.com/billflow/billflow/internal/service"
	"github.com/billflow/billflow/internal/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title BillFlow API
// @version 1.0
// @description Invoice lifecycle, tax computation and reminder scheduling service
// @BasePath /v1
func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			provideClock,
			provideCache,
			provideKVStore,
			tax.NewRateTable,
			repository.NewInvoiceRepository,
			repository.NewReminderRepository,
			repository.NewCostEntryRepository,
			provideDispatcher,
			provideServiceParams,
			service.NewReminderService,
			service.NewInvoiceService,
			service.NewTaxService,
			service.NewCostEntryService,
			worker.NewReminderWorker,
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	).Run()
}

func provideClock() clock.Clock {
	return clock.New()
}

func provideCache() cache.Cache {
	return cache.NewInMemoryCache()
}

func provideKVStore(cfg *config.Configuration, log *logger.Logger) (kv.Store, error) {
	return kv.NewPostgresStore(cfg, log)
}

func provideDispatcher(cfg *config.Configuration, clk clock.Clock, log *logger.Logger) notification.Dispatcher {
	return notification.NewDispatcher(
		notification.NewEmailSender(cfg, log),
		notification.NewSMSSender(cfg, log),
		clk,
		log,
	)
}

func provideServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	clk clock.Clock,
	c cache.Cache,
	rateTable *tax.RateTable,
	dispatcher notification.Dispatcher,
	invoiceRepo invoice.Repository,
	reminderRepo reminder.Repository,
	costEntryRepo costentry.Repository,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:        log,
		Config:        cfg,
		Clock:         clk,
		Cache:         c,
		RateTable:     rateTable,
		Dispatcher:    dispatcher,
		InvoiceRepo:   invoiceRepo,
		ReminderRepo:  reminderRepo,
		CostEntryRepo: costEntryRepo,
	}
}

func provideHandlers(
	invoiceSvc service.InvoiceService,
	taxSvc service.TaxService,
	reminderSvc service.ReminderService,
	costEntrySvc service.CostEntryService,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health:    v1.NewHealthHandler(),
		Invoice:   v1.NewInvoiceHandler(invoiceSvc, log),
		Tax:       v1.NewTaxHandler(taxSvc, log),
		Reminder:  v1.NewReminderHandler(reminderSvc, log),
		CostEntry: v1.NewCostEntryHandler(costEntrySvc, log),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	reminderWorker *worker.ReminderWorker,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow("starting server", "address", cfg.Server.Address)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			reminderWorker.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			reminderWorker.Stop()
			return server.Shutdown(ctx)
		},
	})
}
