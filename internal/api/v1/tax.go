package v1

import (
	"net/http"

	"github.com/billflow/billflow/internal/api/dto"
	ierr "github.com/billflow/billflow/internal/errors"
	"github.com/billflow/billflow/internal/logger"
	"github.com/billflow/billflow/internal/service"
	"github.com/gin-gonic/gin"
)

type TaxHandler struct {
	service service.TaxService
	log     *logger.Logger
}

func NewTaxHandler(service service.TaxService, log *logger.Logger) *TaxHandler {
	return &TaxHandler{service: service, log: log}
}

// @Summary Compute tax for an amount
// @Description Apply a direct rate or a region-resolved rate to a single amount
// @Tags Tax
// @Accept json
// @Produce json
// @Param computation body dto.ComputeTaxRequest true "Amount and rate or region"
// @Success 200 {object} dto.TaxCalculationResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /tax/compute [post]
func (h *TaxHandler) ComputeTax(c *gin.Context) {
	var req dto.ComputeTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ComputeTax(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Compute an itemized tax breakdown
// @Description Tax each quantity/unit-price pair independently and return per-item results with grand totals
// @Tags Tax
// @Accept json
// @Produce json
// @Param computation body dto.ComputeItemizedTaxRequest true "Items and rate or region"
// @Success 200 {object} dto.ItemizedTaxResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /tax/compute/itemized [post]
func (h *TaxHandler) ComputeItemizedTax(c *gin.Context) {
	var req dto.ComputeItemizedTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ComputeItemizedTax(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get the rates of a region
// @Tags Tax
// @Produce json
// @Param region path string true "Region code"
// @Success 200 {object} dto.TaxRatesResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /tax/rates/{region} [get]
func (h *TaxHandler) GetTaxRates(c *gin.Context) {
	resp, err := h.service.GetTaxRates(c.Request.Context(), c.Param("region"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Upsert a tax rate
// @Description Set the rate for REGION or REGION-SUBREGION; unknown regions are created
// @Tags Tax
// @Accept json
// @Produce json
// @Param rate body dto.UpdateTaxRateRequest true "Region code and rate"
// @Success 200 {object} dto.TaxRatesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /tax/rates [put]
func (h *TaxHandler) UpdateTaxRate(c *gin.Context) {
	var req dto.UpdateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateTaxRate(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
