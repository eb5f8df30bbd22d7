package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/logger"
)

type ReportHandler struct {
	orders domain.OrderUseCase
	log    *logrus.Entry
}

func NewReportHandler(orders domain.OrderUseCase, log *logrus.Logger) *ReportHandler {
	return &ReportHandler{orders: orders, log: logger.Named(log, "routes.reports")}
}

func (h *ReportHandler) RegisterRoutes(reports gin.IRouter) {
	reports.GET("/sales", h.Sales)
}

func (h *ReportHandler) Sales(c *gin.Context) {
	var r domain.DateRange
	if err := bindQuery(c, &r); err != nil {
		handleError(c, h.log, err, "Failed to build sales report")
		return
	}
	report, err := h.orders.SalesReport(c.Request.Context(), r)
	if err != nil {
		handleError(c, h.log, err, "Failed to build sales report")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Sales report generated", report)
}
