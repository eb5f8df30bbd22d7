package domain

import "time"

// ProductResponse is the full product view including computed fields.
type ProductResponse struct {
	ID                int           `json:"id"`
	SKU               string        `json:"sku"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Category          string        `json:"category"`
	Price             float64       `json:"price"`
	FormattedPrice    string        `json:"formatted_price"`
	Cost              float64       `json:"cost"`
	DiscountPrice     *float64      `json:"discount_price"`
	EffectivePrice    float64       `json:"effective_price"`
	OnSale            bool          `json:"on_sale"`
	Stock             int           `json:"stock"`
	LowStockThreshold int           `json:"low_stock_threshold"`
	InStock           bool          `json:"in_stock"`
	StockStatus       string        `json:"stock_status"`
	TotalValue        float64       `json:"total_value"`
	ProfitMargin      float64       `json:"profit_margin"`
	Tags              []string      `json:"tags"`
	Status            ProductStatus `json:"status"`
	IsFeatured        bool          `json:"is_featured"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

func NewProductResponse(p *Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU(),
		Name:              p.Name,
		Description:       p.Description,
		Category:          p.Category,
		Price:             p.Price,
		FormattedPrice:    FormatPrice(p.Price),
		Cost:              p.Cost,
		DiscountPrice:     p.DiscountPrice,
		EffectivePrice:    p.EffectivePrice(),
		OnSale:            p.OnSale(),
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		InStock:           p.InStock(),
		StockStatus:       p.StockStatus(),
		TotalValue:        p.TotalValue(),
		ProfitMargin:      p.ProfitMargin(),
		Tags:              tags,
		Status:            p.Status,
		IsFeatured:        p.IsFeatured,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func NewProductResponses(products []Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}

// ProductListItem is the compact view used by search listings.
type ProductListItem struct {
	ID             int     `json:"id"`
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formatted_price"`
	InStock        bool    `json:"in_stock"`
	OnSale         bool    `json:"on_sale"`
}

func NewProductListItems(products []Product) []ProductListItem {
	out := make([]ProductListItem, 0, len(products))
	for i := range products {
		p := &products[i]
		out = append(out, ProductListItem{
			ID:             p.ID,
			SKU:            p.SKU(),
			Name:           p.Name,
			Category:       p.Category,
			Price:          p.Price,
			FormattedPrice: FormatPrice(p.Price),
			InStock:        p.InStock(),
			OnSale:         p.OnSale(),
		})
	}
	return out
}
