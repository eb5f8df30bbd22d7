package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/middleware"
)

// CommerceHandler fronts the payment gateway and the shipping carrier.
type CommerceHandler struct {
	useCase domain.CommerceUseCase
	log     *logrus.Entry
}

func NewCommerceHandler(uc domain.CommerceUseCase, log *logrus.Logger) *CommerceHandler {
	return &CommerceHandler{useCase: uc, log: logger.Named(log, "routes.commerce")}
}

func (h *CommerceHandler) RegisterRoutes(api gin.IRouter, authenticated gin.HandlerFunc) {
	api.POST("/payments", authenticated, h.Pay)
	api.GET("/shipping/rates/:zip_code", h.ShippingRates)
}

func (h *CommerceHandler) Pay(c *gin.Context) {
	var in domain.PaymentCreate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Payment processing failed")
		return
	}
	payer, _ := middleware.CurrentUser(c)

	result, err := h.useCase.Pay(c.Request.Context(), payer, in)
	if err != nil {
		handleError(c, h.log, err, "Payment processing failed")
		return
	}
	response.SuccessResponse(c, http.StatusCreated, "Payment processed successfully", result)
}

func (h *CommerceHandler) ShippingRates(c *gin.Context) {
	rates, err := h.useCase.ShippingRates(c.Request.Context(), c.Param("zip_code"))
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve shipping rates")
		return
	}
	if rates == nil {
		rates = []domain.ShippingRate{}
	}
	response.SuccessResponse(c, http.StatusOK, "Shipping rates retrieved successfully", gin.H{
		"zip_code": c.Param("zip_code"),
		"rates":    rates,
	})
}
