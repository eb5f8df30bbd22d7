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

type OrderHandler struct {
	useCase domain.OrderUseCase
	log     *logrus.Entry
}

func NewOrderHandler(uc domain.OrderUseCase, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger.Named(log, "routes.orders"),
	}
}

// RegisterRoutes expects orders to already be behind authentication.
func (h *OrderHandler) RegisterRoutes(orders gin.IRouter, staffOnly gin.HandlerFunc) {
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:order_ref", h.GetOrder)
	orders.PATCH("/:order_ref/status", staffOnly, h.UpdateStatus)
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var in domain.OrderCreate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to create order")
		return
	}
	user, _ := middleware.CurrentUser(c)

	order, err := h.useCase.CreateOrder(c.Request.Context(), user.ID, in)
	if err != nil {
		handleError(c, h.log, err, "Failed to create order")
		return
	}
	h.log.Infof("Order created successfully: %s for user %d", order.Number(), user.ID)
	response.SuccessResponse(c, http.StatusCreated, "Order created successfully", domain.NewOrderResponse(order))
}

type orderListQuery struct {
	Page     int `form:"page,default=1" binding:"gte=1"`
	PageSize int `form:"page_size,default=10" binding:"gte=1,lte=100"`
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q orderListQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to retrieve orders")
		return
	}
	user, _ := middleware.CurrentUser(c)
	page := domain.NewPage(q.Page, q.PageSize)

	orders, total, err := h.useCase.ListOrders(c.Request.Context(), user.ID, page)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve orders")
		return
	}
	items := domain.NewOrderResponses(orders)
	response.SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", domain.NewPaginatedResponse(items, total, page))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := domain.ParseOrderRef(c.Param("order_ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve order")
		return
	}
	user, _ := middleware.CurrentUser(c)

	order, err := h.useCase.GetOrder(c.Request.Context(), user, id)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve order")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Order retrieved successfully", domain.NewOrderResponse(order))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := domain.ParseOrderRef(c.Param("order_ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to update order status")
		return
	}
	var in domain.OrderStatusUpdate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to update order status")
		return
	}

	order, err := h.useCase.UpdateStatus(c.Request.Context(), id, in.Status)
	if err != nil {
		handleError(c, h.log, err, "Failed to update order status")
		return
	}
	h.log.Infof("Order %s moved to %s", order.Number(), order.Status)
	response.SuccessResponse(c, http.StatusOK, "Order status updated successfully", domain.NewOrderResponse(order))
}
