package v1

import (
	"net/http"

	"github.com/billflow/billflow/internal/api/dto"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/service"
	"github.com/gin-gonic/gin"
)

type CostEntryHandler struct {
	service service.CostEntryService
	log     *logger.Logger
}

func NewCostEntryHandler(service service.CostEntryService, log *logger.Logger) *CostEntryHandler {
	return &CostEntryHandler{service: service, log: log}
}

// @Summary Record a cost entry
// @Tags CostEntries
// @Accept json
// @Produce json
// @Param entry body dto.CreateCostEntryRequest true "Cost entry"
// @Success 201 {object} dto.CostEntryResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /costs [post]
func (h *CostEntryHandler) CreateCostEntry(c *gin.Context) {
	var req dto.CreateCostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateCostEntry(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a cost entry
// @Tags CostEntries
// @Produce json
// @Param id path string true "Cost entry ID"
// @Success 200 {object} dto.CostEntryResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /costs/{id} [get]
func (h *CostEntryHandler) GetCostEntry(c *gin.Context) {
	resp, err := h.service.GetCostEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary List cost entries
// @Tags CostEntries
// @Produce json
// @Success 200 {object} dto.ListCostEntriesResponse
// @Router /costs [get]
func (h *CostEntryHandler) ListCostEntries(c *gin.Context) {
	resp, err := h.service.ListCostEntries(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update a cost entry
// @Tags CostEntries
// @Accept json
// @Produce json
// @Param id path string true "Cost entry ID"
// @Param entry body dto.UpdateCostEntryRequest true "Fields to update"
// @Success 200 {object} dto.CostEntryResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /costs/{id} [put]
func (h *CostEntryHandler) UpdateCostEntry(c *gin.Context) {
	var req dto.UpdateCostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateCostEntry(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a cost entry
// @Tags CostEntries
// @Produce json
// @Param id path string true "Cost entry ID"
// @Success 204
// @Failure 404 {object} ierr.ErrorResponse
// @Router /costs/{id} [delete]
func (h *CostEntryHandler) DeleteCostEntry(c *gin.Context) {
	if err := h.service.DeleteCostEntry(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
