package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestProductComputedFields(t *testing.T) {
	p := &Product{ID: 42, Price: 1299.99, Cost: 800, Stock: 3, LowStockThreshold: 5}

	assert.Equal(t, "PROD-000042", p.SKU())
	assert.True(t, p.InStock())
	assert.Equal(t, StockStatusLow, p.StockStatus())
	assert.Equal(t, 2400.0, p.TotalValue())
	assert.Equal(t, 38.46, p.ProfitMargin())
	assert.True(t, p.NeedsRestock())

	p.Stock = 0
	assert.False(t, p.InStock())
	assert.Equal(t, StockStatusOut, p.StockStatus())

	p.Stock = 6
	assert.Equal(t, StockStatusIn, p.StockStatus())
	assert.False(t, p.NeedsRestock())

	p.Stock = 5
	assert.Equal(t, StockStatusLow, p.StockStatus())
	assert.False(t, p.NeedsRestock())
}

func TestProfitMarginUnknownCost(t *testing.T) {
	p := &Product{Price: 10}
	assert.Equal(t, 0.0, p.ProfitMargin())
}

func TestEffectivePrice(t *testing.T) {
	p := &Product{Price: 100}
	assert.Equal(t, 100.0, p.EffectivePrice())
	assert.False(t, p.OnSale())

	p.DiscountPrice = floatPtr(80)
	assert.Equal(t, 80.0, p.EffectivePrice())
	assert.True(t, p.OnSale())
}

func TestProductNormalize(t *testing.T) {
	p := &Product{
		Name:     "  gaming   laptop  ",
		Category: "  home   office ",
		Price:    10.005,
		Tags:     []string{" Sale ", "sale", "", "NEW"},
	}
	p.Normalize()

	assert.Equal(t, "Gaming Laptop", p.Name)
	assert.Equal(t, "Home Office", p.Category)
	assert.Equal(t, 10.01, p.Price)
	assert.Equal(t, []string{"sale", "new"}, p.Tags)
	assert.Equal(t, ProductActive, p.Status)
}

func TestProductValidate(t *testing.T) {
	valid := Product{Name: "Laptop", Category: "Electronics", Price: 100, Cost: 50, Status: ProductActive}
	require.NoError(t, valid.Validate())

	cases := map[string]struct {
		mutate func(p *Product)
		field  string
	}{
		"price below cost":  {func(p *Product) { p.Price = 40 }, "price"},
		"discount too high": {func(p *Product) { p.DiscountPrice = floatPtr(100) }, "discount_price"},
		"negative stock":    {func(p *Product) { p.Stock = -1 }, "stock"},
		"blank name":        {func(p *Product) { p.Name = "" }, "name"},
		"unknown status":    {func(p *Product) { p.Status = "gone" }, "status"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			err := p.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Details[0].Field)
		})
	}
}

func TestPriceBelowCostMessage(t *testing.T) {
	p := Product{Name: "x", Category: "y", Price: 40, Cost: 50, Status: ProductActive}
	assert.EqualError(t, p.Validate(), "Price (40.00) cannot be less than cost (50.00)")
}

func TestParseProductRef(t *testing.T) {
	id, err := ParseProductRef("17")
	require.NoError(t, err)
	assert.Equal(t, 17, id)

	id, err = ParseProductRef("PROD-000123")
	require.NoError(t, err)
	assert.Equal(t, 123, id)

	for _, bad := range []string{"0", "-4", "abc", "PROD-12", "PROD-000000"} {
		_, err := ParseProductRef(bad)
		var invalid *InvalidIDError
		assert.True(t, errors.As(err, &invalid), bad)
	}

	_, err = ParseSKU("123")
	assert.Error(t, err)
}

func TestProductUpdateApplyTo(t *testing.T) {
	base := Product{ID: 1, Name: "Laptop", Category: "Electronics", Price: 100, Cost: 50, Status: ProductActive}
	price := 45.0
	upd := ProductUpdate{Price: &price}

	assert.Equal(t, []string{"price"}, upd.Fields())
	merged := upd.ApplyTo(base)
	assert.Equal(t, 45.0, merged.Price)
	assert.Equal(t, 100.0, base.Price)
	assert.Error(t, merged.Validate())

	assert.True(t, ProductUpdate{}.IsEmpty())
}

func TestNewProductResponse(t *testing.T) {
	p := &Product{ID: 7, Name: "Desk", Category: "Furniture", Price: 1299.99, Stock: 0}
	resp := NewProductResponse(p)

	assert.Equal(t, "PROD-000007", resp.SKU)
	assert.Equal(t, "$1,299.99", resp.FormattedPrice)
	assert.Equal(t, StockStatusOut, resp.StockStatus)
	assert.NotNil(t, resp.Tags)
}
