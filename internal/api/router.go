package api

import (
	"github.com/billflow/billflow/internal/config"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/rest/middleware"
	"github.com/billflow/billflow/internal/types"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	v1 "github.com/billflow/billflow/internal/api/v1"
)

// Handlers groups the v1 route handlers wired into the router
type Handlers struct {
	Health    *v1.HealthHandler
	Invoice   *v1.InvoiceHandler
	Tax       *v1.TaxHandler
	Reminder  *v1.ReminderHandler
	CostEntry *v1.CostEntryHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(log),
		middleware.CORSMiddleware(),
		middleware.ErrorHandler(log),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	root := router.Group("/v1")

	invoices := root.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/number/:invoice_number", handlers.Invoice.GetInvoiceByNumber)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", handlers.Invoice.EditInvoice)
		invoices.DELETE("/:id", handlers.Invoice.DeleteInvoice)
		invoices.GET("/:id/status", handlers.Invoice.GetInvoiceStatus)
		invoices.PUT("/:id/status", handlers.Invoice.UpdateInvoiceStatus)

		invoices.POST("/:id/reminders", handlers.Reminder.ScheduleReminders)
		invoices.GET("/:id/reminders", handlers.Reminder.GetSchedule)
		invoices.DELETE("/:id/reminders", handlers.Reminder.CancelReminders)
		invoices.GET("/:id/reminders/history", handlers.Reminder.GetReminderHistory)
	}

	tax := root.Group("/tax")
	{
		tax.POST("/compute", handlers.Tax.ComputeTax)
		tax.POST("/compute/itemized", handlers.Tax.ComputeItemizedTax)
		tax.GET("/rates/:region", handlers.Tax.GetTaxRates)
		tax.PUT("/rates", handlers.Tax.UpdateTaxRate)
	}

	costs := root.Group("/costs")
	{
		costs.POST("", handlers.CostEntry.CreateCostEntry)
		costs.GET("", handlers.CostEntry.ListCostEntries)
		costs.GET("/:id", handlers.CostEntry.GetCostEntry)
		costs.PUT("/:id", handlers.CostEntry.UpdateCostEntry)
		costs.DELETE("/:id", handlers.CostEntry.DeleteCostEntry)
	}

	cron := root.Group("/cron")
	{
		cron.POST("/reminders/process", handlers.Reminder.ProcessDueReminders)
	}

	return router
}
