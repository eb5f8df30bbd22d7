package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront/internal/delivery/response"
	"storefront/internal/domain"
	"storefront/internal/logger"
)

// SearchHandler serves the read-only product search and pagination styles.
type SearchHandler struct {
	useCase domain.ProductUseCase
	log     *logrus.Entry
}

func NewSearchHandler(uc domain.ProductUseCase, log *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		useCase: uc,
		log:     logger.Named(log, "routes.search"),
	}
}

func (h *SearchHandler) RegisterRoutes(products gin.IRouter, limiter ...gin.HandlerFunc) {
	search := products.Group("", limiter...)
	{
		search.GET("/basic", h.Basic)
		search.GET("/filter", h.Filter)
		search.GET("/search", h.Search)
		search.GET("/cursor", h.Cursor)
		search.GET("/infinite", h.Infinite)
		search.GET("/autocomplete", h.Autocomplete)
		search.GET("/facets", h.Facets)
	}
}

type pageQuery struct {
	Page     int `form:"page,default=1" binding:"gte=1"`
	PageSize int `form:"page_size,default=20" binding:"gte=1,lte=100"`
}

func (q pageQuery) page() domain.Page { return domain.NewPage(q.Page, q.PageSize) }

type sortQuery struct {
	SortBy string `form:"sort_by,default=created_at" binding:"oneof=name price created_at stock"`
	Order  string `form:"order,default=desc" binding:"oneof=asc desc"`
}

func (q sortQuery) sort() domain.ProductSort {
	return domain.ProductSort{Field: domain.SortField(q.SortBy), Order: domain.SortOrder(q.Order)}
}

type filterQuery struct {
	pageQuery
	sortQuery
	Q        string   `form:"q" binding:"omitempty,min=2,max=100"`
	Category string   `form:"category" binding:"omitempty,max=100"`
	MinPrice *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,gte=0"`
	InStock  *bool    `form:"in_stock"`
	Tags     []string `form:"tags" binding:"max=10"`
	IsActive *bool    `form:"is_active"`
}

func (q filterQuery) filter() domain.ProductFilter {
	return domain.ProductFilter{
		Query:    q.Q,
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		InStock:  q.InStock,
		Tags:     q.Tags,
		IsActive: q.IsActive,
	}
}

// Basic lists active products, newest first, in the compact form.
func (h *SearchHandler) Basic(c *gin.Context) {
	var q pageQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to retrieve products")
		return
	}
	page := q.page()
	sort := domain.ProductSort{Field: domain.SortByCreatedAt, Order: domain.SortDesc}
	products, total, err := h.useCase.ListProducts(c.Request.Context(), domain.ProductFilter{ActiveOnly: true}, sort, page)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve products")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Products retrieved successfully",
		domain.NewPaginatedResponse(domain.NewProductListItems(products), total, page))
}

func (h *SearchHandler) Filter(c *gin.Context) {
	var q filterQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to filter products")
		return
	}
	h.respondPage(c, q.filter(), q.sort(), q.page(), "Failed to filter products")
}

// Search matches q against category too and only returns active products.
func (h *SearchHandler) Search(c *gin.Context) {
	var q filterQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Search operation failed")
		return
	}
	filter := q.filter()
	filter.QueryInCategory = true
	filter.IsActive = nil
	filter.ActiveOnly = true
	h.respondPage(c, filter, q.sort(), q.page(), "Search operation failed")
}

func (h *SearchHandler) respondPage(c *gin.Context, filter domain.ProductFilter, sort domain.ProductSort, page domain.Page, fallback string) {
	products, total, err := h.useCase.ListProducts(c.Request.Context(), filter, sort, page)
	if err != nil {
		handleError(c, h.log, err, fallback)
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Products retrieved successfully",
		domain.NewPaginatedResponse(domain.NewProductResponses(products), total, page))
}

type cursorQuery struct {
	Cursor   string `form:"cursor"`
	Limit    int    `form:"limit,default=20" binding:"gte=1,lte=100"`
	Category string `form:"category" binding:"omitempty,max=100"`
}

// Cursor pages forward by ascending id; the cursor is the last id returned.
func (h *SearchHandler) Cursor(c *gin.Context) {
	var q cursorQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to retrieve products")
		return
	}
	afterID, err := parseCursor(q.Cursor, "Invalid cursor format")
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve products")
		return
	}

	filter := domain.ProductFilter{ActiveOnly: true, Category: q.Category, CategoryExact: true}
	products, err := h.useCase.ListProductsAfter(c.Request.Context(), filter, afterID, q.Limit+1)
	if err != nil {
		handleError(c, h.log, err, "Failed to retrieve products")
		return
	}
	page := domain.NewCursorPage(domain.NewProductResponses(products), q.Limit, func(p domain.ProductResponse) string {
		return strconv.Itoa(p.ID)
	})
	response.SuccessResponse(c, http.StatusOK, "Products retrieved successfully", page)
}

type infiniteQuery struct {
	LastID string `form:"last_id"`
	Limit  int    `form:"limit,default=20" binding:"gte=1,lte=50"`
}

// Infinite reports has_more when a full batch came back.
func (h *SearchHandler) Infinite(c *gin.Context) {
	var q infiniteQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Failed to load more items")
		return
	}
	afterID, err := parseCursor(q.LastID, "Invalid last_id")
	if err != nil {
		handleError(c, h.log, err, "Failed to load more items")
		return
	}

	products, err := h.useCase.ListProductsAfter(c.Request.Context(), domain.ProductFilter{ActiveOnly: true}, afterID, q.Limit)
	if err != nil {
		handleError(c, h.log, err, "Failed to load more items")
		return
	}
	result := domain.InfiniteScrollPage[domain.ProductResponse]{
		Items:   domain.NewProductResponses(products),
		HasMore: len(products) == q.Limit,
	}
	if n := len(products); n > 0 {
		last := products[n-1].ID
		result.LastID = &last
	}
	response.SuccessResponse(c, http.StatusOK, "Products retrieved successfully", result)
}

type autocompleteQuery struct {
	Q     string `form:"q" binding:"required,min=2,max=50"`
	Limit int    `form:"limit,default=10" binding:"gte=1,lte=20"`
}

func (h *SearchHandler) Autocomplete(c *gin.Context) {
	var q autocompleteQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Autocomplete failed")
		return
	}
	names, err := h.useCase.Autocomplete(c.Request.Context(), q.Q, q.Limit)
	if err != nil {
		handleError(c, h.log, err, "Autocomplete failed")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Suggestions retrieved successfully", gin.H{"suggestions": names})
}

type facetsQuery struct {
	pageQuery
	Q        string `form:"q" binding:"omitempty,min=2,max=100"`
	Category string `form:"category" binding:"omitempty,max=100"`
}

type facetsResult struct {
	Products []domain.ProductResponse       `json:"products"`
	Total    int64                          `json:"total"`
	Facets   map[string][]domain.FacetCount `json:"facets"`
}

func (h *SearchHandler) Facets(c *gin.Context) {
	var q facetsQuery
	if err := bindQuery(c, &q); err != nil {
		handleError(c, h.log, err, "Faceted search failed")
		return
	}
	filter := domain.ProductFilter{Query: q.Q, Category: q.Category, CategoryExact: true, ActiveOnly: true}
	ctx := c.Request.Context()

	products, total, err := h.useCase.ListProducts(ctx, filter, domain.ProductSort{}, q.page())
	if err != nil {
		handleError(c, h.log, err, "Faceted search failed")
		return
	}
	categories, err := h.useCase.CategoryFacets(ctx, filter)
	if err != nil {
		handleError(c, h.log, err, "Faceted search failed")
		return
	}
	response.SuccessResponse(c, http.StatusOK, "Facets retrieved successfully", facetsResult{
		Products: domain.NewProductResponses(products),
		Total:    total,
		Facets:   map[string][]domain.FacetCount{"categories": categories},
	})
}

// parseCursor reads an optional positive product id; empty means "from the start".
func parseCursor(raw, message string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, NewHTTPError(http.StatusBadRequest, message)
	}
	return id, nil
}
