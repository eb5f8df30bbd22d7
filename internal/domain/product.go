package domain

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
	ProductArchived ProductStatus = "archived"
)

func IsValidProductStatus(s ProductStatus) bool {
	switch s {
	case ProductActive, ProductInactive, ProductArchived:
		return true
	default:
		return false
	}
}

const (
	StockStatusOut = "out_of_stock"
	StockStatusLow = "low_stock"
	StockStatusIn  = "in_stock"

	DefaultLowStockThreshold = 5
	MaxTagLength             = 50
)

// Product is the persisted catalog entry. Derived values such as stock status
// or margin are computed from it and never stored.
type Product struct {
	ID                int           `json:"id" gorm:"primaryKey"`
	Name              string        `json:"name" gorm:"size:200;not null;index"`
	Description       string        `json:"description" gorm:"size:1000"`
	Category          string        `json:"category" gorm:"size:100;not null;index"`
	Price             float64       `json:"price" gorm:"not null;index"`
	Cost              float64       `json:"cost"`
	DiscountPrice     *float64      `json:"discount_price,omitempty"`
	Stock             int           `json:"stock" gorm:"not null;index"`
	LowStockThreshold int           `json:"low_stock_threshold" gorm:"not null"`
	Tags              []string      `json:"tags" gorm:"type:text;serializer:json"`
	Status            ProductStatus `json:"status" gorm:"size:20;not null;default:active;index"`
	IsFeatured        bool          `json:"is_featured"`
	CreatedAt         time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

var skuPattern = regexp.MustCompile(`^PROD-(\d{6})$`)

func (p *Product) SKU() string { return FormatSKU(p.ID) }

func FormatSKU(id int) string { return fmt.Sprintf("PROD-%06d", id) }

// ParseProductRef accepts either a numeric id or a SKU such as PROD-000042.
func ParseProductRef(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil {
		if id <= 0 {
			return 0, &InvalidIDError{Resource: "product", Value: ref}
		}
		return id, nil
	}
	return ParseSKU(ref)
}

// ParseSKU accepts only the PROD-123456 form.
func ParseSKU(ref string) (int, error) {
	m := skuPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, &InvalidIDError{Resource: "product", Value: ref, Hint: "expected PROD-123456"}
	}
	id, _ := strconv.Atoi(m[1])
	if id <= 0 {
		return 0, &InvalidIDError{Resource: "product", Value: ref, Hint: "expected PROD-123456"}
	}
	return id, nil
}

func (p *Product) IsActive() bool { return p.Status == ProductActive }

func (p *Product) InStock() bool { return p.Stock > 0 }

func (p *Product) StockStatus() string {
	switch {
	case p.Stock == 0:
		return StockStatusOut
	case p.Stock <= p.LowStockThreshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// NeedsRestock is used by reporting only and is not part of API payloads.
func (p *Product) NeedsRestock() bool { return p.Stock < p.LowStockThreshold }

func (p *Product) TotalValue() float64 { return MulMoney(p.Cost, p.Stock) }

func (p *Product) ProfitMargin() float64 {
	if p.Price == 0 || p.Cost == 0 {
		return 0
	}
	return RoundMoney((p.Price - p.Cost) / p.Price * 100)
}

func (p *Product) OnSale() bool { return p.DiscountPrice != nil }

func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// Normalize title-cases name and category, trims the description, rounds
// money and cleans tags.
func (p *Product) Normalize() {
	p.Name = titleText(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = NormalizeCategory(p.Category)
	p.Price = RoundMoney(p.Price)
	p.Cost = RoundMoney(p.Cost)
	if p.DiscountPrice != nil {
		d := RoundMoney(*p.DiscountPrice)
		p.DiscountPrice = &d
	}
	p.Tags = NormalizeTags(p.Tags)
	if p.Status == "" {
		p.Status = ProductActive
	}
}

// Validate enforces the cross-field rules that hold for every stored product.
func (p *Product) Validate() error {
	if p.Name == "" {
		return NewFieldValidation("name", "name cannot be empty or whitespace only")
	}
	if p.Category == "" {
		return NewFieldValidation("category", "category cannot be empty or whitespace only")
	}
	if p.Price <= 0 {
		return NewFieldValidation("price", "price must be positive")
	}
	if p.Cost < 0 {
		return NewFieldValidation("cost", "cost cannot be negative")
	}
	if p.Stock < 0 {
		return NewFieldValidation("stock", "stock cannot be negative")
	}
	if p.LowStockThreshold < 0 {
		return NewFieldValidation("low_stock_threshold", "low_stock_threshold cannot be negative")
	}
	if p.Cost > 0 && p.Price < p.Cost {
		return NewFieldValidation("price", fmt.Sprintf("Price (%.2f) cannot be less than cost (%.2f)", p.Price, p.Cost))
	}
	if p.DiscountPrice != nil && *p.DiscountPrice >= p.Price {
		return NewFieldValidation("discount_price", "Discount price must be less than regular price")
	}
	if !IsValidProductStatus(p.Status) {
		return NewFieldValidation("status", fmt.Sprintf("invalid status value '%s'", p.Status))
	}
	return nil
}

func NormalizeCategory(category string) string { return titleText(category) }

// titleText collapses runs of whitespace and title-cases every word.
func titleText(s string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(s), " "))
}

// NormalizeTags lower-cases and trims tags, drops empty or oversized ones and
// removes duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || len(tag) > MaxTagLength {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ProductAudit records who changed which product fields and why.
type ProductAudit struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	ProductID   int       `json:"product_id" gorm:"not null;index"`
	ActorID     int       `json:"actor_id"`
	Fields      []string  `json:"fields" gorm:"type:text;serializer:json"`
	Reason      string    `json:"reason,omitempty" gorm:"size:200"`
	NotifyUsers bool      `json:"notify_users"`
	CreatedAt   time.Time `json:"created_at"`
}

type SortField string

const (
	SortByName      SortField = "name"
	SortByPrice     SortField = "price"
	SortByCreatedAt SortField = "created_at"
	SortByStock     SortField = "stock"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

type ProductSort struct {
	Field SortField
	Order SortOrder
}

// ProductFilter narrows product queries. Zero values mean "no constraint".
type ProductFilter struct {
	Query           string
	QueryInCategory bool
	Category        string
	CategoryExact   bool
	MinPrice        *float64
	MaxPrice        *float64
	InStock         *bool
	Tags            []string
	Status          *ProductStatus
	IsActive        *bool
	ActiveOnly      bool
	LowStockOnly    bool
	OutOfStockOnly  bool
}

type FacetCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int) (*Product, error)
	// UpdateProduct writes only the named columns of product.
	UpdateProduct(ctx context.Context, product *Product, fields []string) (*Product, error)
	DeleteProduct(ctx context.Context, id int) error
	AdjustStock(ctx context.Context, id int, delta int) (*Product, error)
	SetStock(ctx context.Context, id int, stock int) (*Product, error)
	SearchProducts(ctx context.Context, filter ProductFilter, sort ProductSort, page Page) ([]Product, int64, error)
	ListProductsAfter(ctx context.Context, filter ProductFilter, afterID int, limit int) ([]Product, error)
	AutocompleteNames(ctx context.Context, prefix string, limit int) ([]string, error)
	CategoryFacets(ctx context.Context, filter ProductFilter) ([]FacetCount, error)
	CreateAudit(ctx context.Context, audit *ProductAudit) error
	ListAudits(ctx context.Context, productID int) ([]ProductAudit, error)
}
