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

type ProductHandler struct {
	useCase domain.ProductUseCase
	log     *logrus.Entry
}

func NewProductHandler(uc domain.ProductUseCase, log *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger.Named(log, "routes.products"),
	}
}

// RegisterRoutes mounts reads publicly and writes behind adminOnly.
func (h *ProductHandler) RegisterRoutes(products gin.IRouter, adminOnly ...gin.HandlerFunc) {
	products.GET("", h.ListProducts)
	products.GET("/:ref", h.GetProduct)

	admin := products.Group("", adminOnly...)
	{
		admin.POST("", h.CreateProduct)
		admin.PATCH("/:ref", h.PatchProduct)
		admin.PUT("/:ref", h.ReplaceProduct)
		admin.DELETE("/:ref", h.DeleteProduct)
		admin.POST("/:ref/adjust-stock", h.AdjustStock)
		admin.POST("/:ref/quantity", h.SetQuantity)
		admin.GET("/:ref/audits", h.ListAudits)
		admin.GET("/reports/low-stock", h.LowStockReport)
		admin.GET("/reports/out-of-stock", h.OutOfStockReport)
	}
}

type productListQuery struct {
	Page        int      `form:"page,default=1" binding:"gte=1"`
	PageSize    int      `form:"page_size,default=10" binding:"gte=1,lte=100"`
	Category    string   `form:"category" binding:"omitempty,max=100"`
	MinPrice    *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice    *float64 `form:"max_price" binding:"omitempty,gte=0"`
	InStockOnly *bool    `form:"in_stock_only"`
	Search      string   `form:"search" binding:"omitempty,min=3,max=100"`
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	var q productListQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to retrieve products")
		return
	}

	filter := domain.ProductFilter{
		Query:         q.Search,
		Category:      q.Category,
		CategoryExact: true,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		InStock:       q.InStockOnly,
	}
	page := domain.NewPage(q.Page, q.PageSize)
	products, total, err := h.useCase.ListProducts(c.Request.Context(), filter, domain.ProductSort{}, page)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve products")
		return
	}

	h.log.Infof("Retrieved %d of %d products", len(products), total)
	response.SuccessResponse(c, http.StatusOK, "Products retrieved successfully",
		domain.NewPaginatedResponse(domain.NewProductResponses(products), total, page))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var in domain.ProductCreate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to create product")
		return
	}

	created, err := h.useCase.CreateProduct(c.Request.Context(), in)
	if err != nil {
		handleError(c, h.log, err, "Failed to create product")
		return
	}

	h.log.Infof("Product created successfully: ID %d, Name %s", created.ID, created.Name)
	response.SuccessResponse(c, http.StatusCreated, "Product created successfully", domain.NewProductResponse(created))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := domain.ParseProductRef(c.Param("ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve product")
		return
	}

	product, err := h.useCase.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve product")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Product retrieved successfully", domain.NewProductResponse(product))
}

type patchQuery struct {
	ValidateOnly bool `form:"validate_only"`
}

type validateOnlyResult struct {
	Valid       bool     `json:"valid"`
	WouldUpdate []string `json:"would_update"`
}

func (h *ProductHandler) PatchProduct(c *gin.Context) {
	id, err := domain.ParseProductRef(c.Param("ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to update product")
		return
	}
	var q patchQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to update product")
		return
	}
	var in domain.ProductUpdate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to update product")
		return
	}

	if q.ValidateOnly {
		fields, err := h.useCase.PreviewUpdate(c.Request.Context(), id, in)
		if err != nil {
			handleError(c, h.log, err, "Failed to validate product update")
			return
		}
		response.SuccessResponse(c, http.StatusOK, "Validation passed", validateOnlyResult{Valid: true, WouldUpdate: fields})
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), id, in, h.updateOptions(c, false, "", false))
	if err != nil {
		handleError(c, h.log, err, "Failed to update product")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Product updated successfully", domain.NewProductResponse(updated))
}

type replaceQuery struct {
	NotifyUsers bool   `form:"notify_users"`
	AuditReason string `form:"audit_reason" binding:"max=200"`
}

type replaceResult struct {
	Product       domain.ProductResponse `json:"product"`
	UpdatedFields []string               `json:"updated_fields"`
	NotifyUsers   bool                   `json:"notify_users"`
	AuditReason   string                 `json:"audit_reason,omitempty"`
}

// ReplaceProduct addresses the product strictly by SKU and records an audit entry.
func (h *ProductHandler) ReplaceProduct(c *gin.Context) {
	id, err := domain.ParseSKU(c.Param("ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to update product")
		return
	}
	var q replaceQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to update product")
		return
	}
	var in domain.ProductUpdate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to update product")
		return
	}

	updated, err := h.useCase.UpdateProduct(c.Request.Context(), id, in, h.updateOptions(c, true, q.AuditReason, q.NotifyUsers))
	if err != nil {
		handleError(c, h.log, err, "Failed to update product")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Product updated successfully", replaceResult{
		Product:       domain.NewProductResponse(updated),
		UpdatedFields: in.Fields(),
		NotifyUsers:   q.NotifyUsers,
		AuditReason:   q.AuditReason,
	})
}

func (h *ProductHandler) updateOptions(c *gin.Context, audit bool, reason string, notify bool) domain.ProductUpdateOptions {
	opts := domain.ProductUpdateOptions{Audit: audit, Reason: reason, NotifyUsers: notify}
	if user, ok := middleware.CurrentUser(c); ok {
		opts.ActorID = user.ID
	}
	return opts
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := domain.ParseProductRef(c.Param("ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to delete product")
		return
	}
	if err := h.useCase.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err, "Failed to delete product")
		return
	}
	h.log.Infof("Product deleted successfully: ID %d", id)
	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, err := domain.ParseProductRef(c.Param("ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to adjust stock")
		return
	}
	var in domain.StockAdjustment
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to adjust stock")
		return
	}

	updated, err := h.useCase.AdjustStock(c.Request.Context(), id, in)
	if err != nil {
		handleError(c, h.log, err, "Failed to adjust stock")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Stock adjusted successfully", domain.NewProductResponse(updated))
}

func (h *ProductHandler) SetQuantity(c *gin.Context) {
	id, err := domain.ParseProductRef(c.Param("ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to update quantity")
		return
	}
	var in domain.QuantityUpdate
	if err := bindJSON(c, &in); err != nil {
		handleError(c, h.log, err, "Failed to update quantity")
		return
	}

	updated, err := h.useCase.SetQuantity(c.Request.Context(), id, in.Quantity)
	if err != nil {
		handleError(c, h.log, err, "Failed to update quantity")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Quantity updated successfully", gin.H{
		"product_id":   updated.ID,
		"sku":          updated.SKU(),
		"new_quantity": updated.Stock,
	})
}

func (h *ProductHandler) ListAudits(c *gin.Context) {
	id, err := domain.ParseProductRef(c.Param("ref"))
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve audits")
		return
	}
	audits, err := h.useCase.ListAudits(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve audits")
		return
	}
	if audits == nil {
		audits = []domain.ProductAudit{}
	}
	response.SuccessResponse(c, http.StatusOK, "Audits retrieved successfully", audits)
}

type stockReport struct {
	Count    int                      `json:"count"`
	Products []domain.ProductResponse `json:"products"`
}

func (h *ProductHandler) LowStockReport(c *gin.Context) {
	products, err := h.useCase.LowStockReport(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err, "Failed to build low stock report")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Low stock report generated",
		stockReport{Count: len(products), Products: domain.NewProductResponses(products)})
}

func (h *ProductHandler) OutOfStockReport(c *gin.Context) {
	products, err := h.useCase.OutOfStockReport(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err, "Failed to build out of stock report")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Out of stock report generated",
		stockReport{Count: len(products), Products: domain.NewProductResponses(products)})
}
