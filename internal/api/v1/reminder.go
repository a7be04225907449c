package v1

import (
	"net/http"

	"github.com/billflow/billflow/internal/api/dto"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/service"
	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	service service.ReminderService
	log     *logger.Logger
}

func NewReminderHandler(service service.ReminderService, log *logger.Logger) *ReminderHandler {
	return &ReminderHandler{service: service, log: log}
}

// @Summary Install a reminder schedule for an invoice
// @Description Replace the invoice's schedule with the canonical due-date timeline
// @Tags Reminders
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param schedule body dto.ScheduleRemindersRequest true "Due date"
// @Success 200 {object} dto.ReminderScheduleResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/reminders [post]
func (h *ReminderHandler) ScheduleReminders(c *gin.Context) {
	var req dto.ScheduleRemindersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.ScheduleReminders(c.Request.Context(), c.Param("id"), req.DueDate)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get the active reminder schedule of an invoice
// @Tags Reminders
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.ReminderScheduleResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /invoices/{id}/reminders [get]
func (h *ReminderHandler) GetSchedule(c *gin.Context) {
	resp, err := h.service.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel an invoice's reminder schedule
// @Description Cancelling an invoice without a schedule is a no-op
// @Tags Reminders
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 204
// @Router /invoices/{id}/reminders [delete]
func (h *ReminderHandler) CancelReminders(c *gin.Context) {
	if err := h.service.CancelReminders(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get the fired reminder history of an invoice
// @Tags Reminders
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {array} dto.ReminderEntryResponse
// @Router /invoices/{id}/reminders/history [get]
func (h *ReminderHandler) GetReminderHistory(c *gin.Context) {
	resp, err := h.service.GetReminderHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Run a reminder firing pass
// @Description Evaluate all active schedules and fire pending entries. Intended for external cron schedulers; the in-process worker runs the same pass.
// @Tags Reminders
// @Produce json
// @Success 200 {object} dto.ProcessRemindersResponse
// @Router /cron/reminders/process [post]
func (h *ReminderHandler) ProcessDueReminders(c *gin.Context) {
	resp, err := h.service.ProcessDueReminders(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
