package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront/internal/domain"
)

type gormProductRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewProductRepository(db *gorm.DB, logger *logrus.Logger) domain.ProductRepository {
	return &gormProductRepository{
		db:  db,
		log: logger,
	}
}

var sortColumns = map[domain.SortField]string{
	domain.SortByName:      "name",
	domain.SortByPrice:     "price",
	domain.SortByCreatedAt: "created_at",
	domain.SortByStock:     "stock",
}

func (r *gormProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return product, nil
}

func (r *gormProductRepository) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if isNotFound(err) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, domain.NewNotFound("product", id)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	return &product, nil
}

func (r *gormProductRepository) UpdateProduct(ctx context.Context, product *domain.Product, fields []string) (*domain.Product, error) {
	if len(fields) == 0 {
		r.log.Infof("Repository: No fields provided for product update ID %d. Returning current product.", product.ID)
		return r.GetProductByID(ctx, product.ID)
	}

	columns := append(append([]string(nil), fields...), "updated_at")
	res := r.db.WithContext(ctx).
		Model(&domain.Product{ID: product.ID}).
		Select(columns).
		Updates(product)
	if res.Error != nil {
		r.log.Errorf("Repository: Failed to update product ID %d: %v", product.ID, res.Error)
		return nil, fmt.Errorf("could not update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NewNotFound("product", product.ID)
	}
	r.log.Infof("Repository: Product ID %d updated (%s)", product.ID, strings.Join(fields, ", "))
	return r.GetProductByID(ctx, product.ID)
}

func (r *gormProductRepository) DeleteProduct(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		r.log.Errorf("Failed to delete product ID %d: %v", id, res.Error)
		return fmt.Errorf("could not delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %d", id)
		return domain.NewNotFound("product", id)
	}
	r.log.Infof("Product ID %d deleted", id)
	return nil
}

// AdjustStock applies delta in a single conditional UPDATE so concurrent
// removals can never drive stock below zero.
func (r *gormProductRepository) AdjustStock(ctx context.Context, id int, delta int) (*domain.Product, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id)
	if delta < 0 {
		q = q.Where("stock >= ?", -delta)
	}
	res := q.UpdateColumns(map[string]interface{}{
		"stock":      gorm.Expr("stock + ?", delta),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		r.log.Errorf("Failed to adjust stock for product ID %d: %v", id, res.Error)
		return nil, fmt.Errorf("could not adjust stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		current, err := r.GetProductByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &domain.InsufficientStockError{ProductID: id, Requested: -delta, Available: current.Stock}
	}
	return r.GetProductByID(ctx, id)
}

func (r *gormProductRepository) SetStock(ctx context.Context, id int, stock int) (*domain.Product, error) {
	res := r.db.WithContext(ctx).Model(&domain.Product{ID: id}).Updates(map[string]interface{}{
		"stock":      stock,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		r.log.Errorf("Failed to set stock for product ID %d: %v", id, res.Error)
		return nil, fmt.Errorf("could not set stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.NewNotFound("product", id)
	}
	return r.GetProductByID(ctx, id)
}

func (r *gormProductRepository) SearchProducts(ctx context.Context, filter domain.ProductFilter, sort domain.ProductSort, page domain.Page) ([]domain.Product, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		r.log.Errorf("Failed to count products: %v", err)
		return nil, 0, fmt.Errorf("could not count products: %w", err)
	}

	var products []domain.Product
	err := r.filtered(ctx, filter).
		Order(orderClause(sort)).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&products).Error
	if err != nil {
		r.log.Errorf("Failed to list products: %v", err)
		return nil, 0, fmt.Errorf("could not list products: %w", err)
	}
	r.log.Debugf("Listed %d of %d products (page=%d, size=%d)", len(products), total, page.Number, page.Size)
	return products, total, nil
}

func (r *gormProductRepository) ListProductsAfter(ctx context.Context, filter domain.ProductFilter, afterID int, limit int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.filtered(ctx, filter).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		r.log.Errorf("Failed to list products after ID %d: %v", afterID, err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	return products, nil
}

func (r *gormProductRepository) AutocompleteNames(ctx context.Context, prefix string, limit int) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Distinct("name").
		Where("status = ?", domain.ProductActive).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, prefixPattern(prefix)).
		Order("name ASC").
		Limit(limit).
		Pluck("name", &names).Error
	if err != nil {
		r.log.Errorf("Failed to autocomplete product names for %q: %v", prefix, err)
		return nil, fmt.Errorf("could not autocomplete: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (r *gormProductRepository) CategoryFacets(ctx context.Context, filter domain.ProductFilter) ([]domain.FacetCount, error) {
	var facets []domain.FacetCount
	err := r.filtered(ctx, filter).
		Select("category AS value, COUNT(*) AS count").
		Group("category").
		Order("COUNT(*) DESC").
		Order("category ASC").
		Scan(&facets).Error
	if err != nil {
		r.log.Errorf("Failed to compute category facets: %v", err)
		return nil, fmt.Errorf("could not compute facets: %w", err)
	}
	if facets == nil {
		facets = []domain.FacetCount{}
	}
	return facets, nil
}

func (r *gormProductRepository) CreateAudit(ctx context.Context, audit *domain.ProductAudit) error {
	if err := r.db.WithContext(ctx).Create(audit).Error; err != nil {
		r.log.Errorf("Failed to record audit for product ID %d: %v", audit.ProductID, err)
		return fmt.Errorf("could not record audit: %w", err)
	}
	return nil
}

func (r *gormProductRepository) ListAudits(ctx context.Context, productID int) ([]domain.ProductAudit, error) {
	var audits []domain.ProductAudit
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id DESC").
		Find(&audits).Error
	if err != nil {
		r.log.Errorf("Failed to list audits for product ID %d: %v", productID, err)
		return nil, fmt.Errorf("could not list audits: %w", err)
	}
	return audits, nil
}

// filtered returns a fresh query over products with filter applied.
func (r *gormProductRepository) filtered(ctx context.Context, f domain.ProductFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&domain.Product{})

	if f.Query != "" {
		like := containsPattern(f.Query)
		if f.QueryInCategory {
			q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\')`, like, like, like)
		} else {
			q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
		}
	}
	if f.Category != "" {
		if f.CategoryExact {
			q = q.Where("LOWER(category) = ?", strings.ToLower(strings.TrimSpace(f.Category)))
		} else {
			q = q.Where(`LOWER(category) LIKE ? ESCAPE '\'`, containsPattern(strings.TrimSpace(f.Category)))
		}
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock != nil {
		if *f.InStock {
			q = q.Where("stock > 0")
		} else {
			q = q.Where("stock = 0")
		}
	}
	if tags := domain.NormalizeTags(f.Tags); len(tags) > 0 {
		clauses := make([]string, 0, len(tags))
		args := make([]interface{}, 0, len(tags))
		for _, tag := range tags {
			clauses = append(clauses, `tags LIKE ? ESCAPE '\'`)
			args = append(args, tagPattern(tag))
		}
		q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.IsActive != nil {
		if *f.IsActive {
			q = q.Where("status = ?", domain.ProductActive)
		} else {
			q = q.Where("status <> ?", domain.ProductActive)
		}
	}
	if f.ActiveOnly {
		q = q.Where("status = ?", domain.ProductActive)
	}
	if f.LowStockOnly {
		q = q.Where("stock > 0 AND stock <= low_stock_threshold")
	}
	if f.OutOfStockOnly {
		q = q.Where("stock = 0")
	}
	return q
}

func orderClause(s domain.ProductSort) string {
	column, ok := sortColumns[s.Field]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if s.Order == domain.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s, id %s", column, direction, direction)
}
