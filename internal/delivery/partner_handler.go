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

// PartnerHandler serves integrations that hold an API key.
type PartnerHandler struct {
	orders domain.OrderUseCase
	log    *logrus.Entry
}

func NewPartnerHandler(orders domain.OrderUseCase, log *logrus.Logger) *PartnerHandler {
	return &PartnerHandler{orders: orders, log: logger.Named(log, "routes.partner")}
}

// RegisterRoutes expects partner to already check the API key.
func (h *PartnerHandler) RegisterRoutes(partner gin.IRouter, tenant, authenticated gin.HandlerFunc) {
	partner.GET("/ping", h.Ping)
	partner.GET("/orders", tenant, authenticated, h.ListOrders)
}

func (h *PartnerHandler) Ping(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, "API key verified", gin.H{"api_key_valid": true})
}

type partnerOrdersQuery struct {
	Page  int `form:"page,default=1" binding:"gte=1"`
	Limit int `form:"limit,default=20" binding:"gte=1,lte=100"`
}

type partnerOrders struct {
	TenantID    string                                         `json:"tenant_id"`
	User        string                                         `json:"user"`
	APIKeyValid bool                                           `json:"api_key_valid"`
	Orders      domain.PaginatedResponse[domain.OrderResponse] `json:"orders"`
}

func (h *PartnerHandler) ListOrders(c *gin.Context) {
	var q partnerOrdersQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to retrieve partner orders")
		return
	}
	user, _ := middleware.CurrentUser(c)
	tenant := middleware.TenantID(c)
	page := domain.NewPage(q.Page, q.Limit)

	orders, total, err := h.orders.ListOrders(c.Request.Context(), user.ID, page)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve partner orders")
		return
	}
	items := domain.NewOrderResponses(orders)
	h.log.WithField("tenant_id", tenant).Infof("Partner listed %d orders for user %d", len(items), user.ID)
	response.SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", partnerOrders{
		TenantID:    tenant,
		User:        user.Username,
		APIKeyValid: true,
		Orders:      domain.NewPaginatedResponse(items, total, page),
	})
}
