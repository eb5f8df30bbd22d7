package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

// reportLimit caps the rows returned by inventory reports.
const reportLimit = 500

var _ domain.ProductUseCase = (*productUseCase)(nil)

type productUseCase struct {
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, logger *logrus.Logger) domain.ProductUseCase {
	return &productUseCase{
		productRepo: repo,
		log:         logger,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, in domain.ProductCreate) (*domain.Product, error) {
	product := in.ToProduct()
	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Name)

	if err := product.Validate(); err != nil {
		uc.log.Warnf("Use Case: Validation failed for product '%s': %v", product.Name, err)
		return nil, err
	}

	created, err := uc.productRepo.CreateProduct(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product created successfully with ID %d (%s)", created.ID, created.SKU())
	return created, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Invalid product ID requested: %d", id)
		return nil, &domain.InvalidIDError{Resource: "product", Value: fmt.Sprint(id)}
	}
	return uc.productRepo.GetProductByID(ctx, id)
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter, sort domain.ProductSort, page domain.Page) ([]domain.Product, int64, error) {
	if err := checkPriceRange(filter); err != nil {
		uc.log.Warnf("Use Case: Rejected product listing: %v", err)
		return nil, 0, err
	}
	products, total, err := uc.productRepo.SearchProducts(ctx, filter, sort, page)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, 0, err
	}
	uc.log.Debugf("Use Case: Listed %d of %d products (page %d)", len(products), total, page.Number)
	return products, total, nil
}

func (uc *productUseCase) ListProductsAfter(ctx context.Context, filter domain.ProductFilter, afterID, limit int) ([]domain.Product, error) {
	if afterID < 0 {
		return nil, domain.NewFieldValidation("cursor", "cursor must be a non-negative product id")
	}
	return uc.productRepo.ListProductsAfter(ctx, filter, afterID, limit)
}

func (uc *productUseCase) Autocomplete(ctx context.Context, prefix string, limit int) ([]string, error) {
	return uc.productRepo.AutocompleteNames(ctx, prefix, limit)
}

func (uc *productUseCase) CategoryFacets(ctx context.Context, filter domain.ProductFilter) ([]domain.FacetCount, error) {
	return uc.productRepo.CategoryFacets(ctx, filter)
}

// mergeUpdate loads the product and applies in on top of it. The merged
// product is checked against the model rules.
func (uc *productUseCase) mergeUpdate(ctx context.Context, id int, in domain.ProductUpdate) (*domain.Product, []string, error) {
	if in.IsEmpty() {
		return nil, nil, domain.NewValidation("At least one field must be provided for update")
	}
	if in.ClearDiscount && in.DiscountPrice != nil {
		return nil, nil, domain.NewFieldValidation("discount_price", "discount_price cannot be set together with clear_discount")
	}
	current, err := uc.GetProduct(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	merged := in.ApplyTo(*current)
	if err := merged.Validate(); err != nil {
		uc.log.Warnf("Use Case: Update of product ID %d violates product rules: %v", id, err)
		return nil, nil, err
	}
	return &merged, in.Fields(), nil
}

func (uc *productUseCase) PreviewUpdate(ctx context.Context, id int, in domain.ProductUpdate) ([]string, error) {
	_, fields, err := uc.mergeUpdate(ctx, id, in)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Validated update for product ID %d without saving: %v", id, fields)
	return fields, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id int, in domain.ProductUpdate, opts domain.ProductUpdateOptions) (*domain.Product, error) {
	uc.log.Infof("Use Case: Attempting to update product ID %d", id)

	merged, fields, err := uc.mergeUpdate(ctx, id, in)
	if err != nil {
		return nil, err
	}

	updated, err := uc.productRepo.UpdateProduct(ctx, merged, fields)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update product ID %d: %v", id, err)
		return nil, err
	}

	if opts.Audit {
		audit := &domain.ProductAudit{
			ProductID:   id,
			ActorID:     opts.ActorID,
			Fields:      fields,
			Reason:      opts.Reason,
			NotifyUsers: opts.NotifyUsers,
		}
		if err := uc.productRepo.CreateAudit(ctx, audit); err != nil {
			uc.log.Errorf("Use Case: Failed to record audit for product ID %d: %v", id, err)
			return nil, err
		}
	}
	if opts.NotifyUsers {
		uc.log.Infof("Use Case: Subscribers of product %s flagged for notification", updated.SKU())
	}

	uc.log.Infof("Use Case: Product ID %d updated (%v)", id, fields)
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int) error {
	uc.log.Infof("Use Case: Attempting to delete product ID %d", id)
	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Failed to delete product ID %d: %v", id, err)
		return err
	}
	return nil
}

func (uc *productUseCase) AdjustStock(ctx context.Context, id int, in domain.StockAdjustment) (*domain.Product, error) {
	uc.log.Infof("Use Case: Adjusting stock of product ID %d by %d (reason: %q)", id, in.Adjustment, in.Reason)

	if in.Adjustment == 0 {
		return nil, domain.NewFieldValidation("adjustment", "adjustment cannot be zero")
	}

	updated, err := uc.productRepo.AdjustStock(ctx, id, in.Adjustment)
	if err != nil {
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			uc.log.Warnf("Use Case: Stock adjustment rejected for product ID %d: %v", id, err)
			return nil, domain.NewFieldValidation("adjustment",
				fmt.Sprintf("Cannot remove %d items. Only %d in stock.", stockErr.Requested, stockErr.Available))
		}
		return nil, err
	}
	uc.log.Infof("Use Case: Stock of product ID %d is now %d", id, updated.Stock)
	return updated, nil
}

func (uc *productUseCase) SetQuantity(ctx context.Context, id int, quantity int) (*domain.Product, error) {
	if quantity < 1 {
		return nil, domain.NewFieldValidation("quantity", "quantity must be at least 1")
	}
	uc.log.Infof("Use Case: Setting stock of product ID %d to %d", id, quantity)
	return uc.productRepo.SetStock(ctx, id, quantity)
}

func (uc *productUseCase) LowStockReport(ctx context.Context) ([]domain.Product, error) {
	return uc.report(ctx, domain.ProductFilter{LowStockOnly: true}, "low-stock")
}

func (uc *productUseCase) OutOfStockReport(ctx context.Context) ([]domain.Product, error) {
	return uc.report(ctx, domain.ProductFilter{OutOfStockOnly: true}, "out-of-stock")
}

func (uc *productUseCase) report(ctx context.Context, filter domain.ProductFilter, name string) ([]domain.Product, error) {
	sort := domain.ProductSort{Field: domain.SortByStock, Order: domain.SortAsc}
	products, total, err := uc.productRepo.SearchProducts(ctx, filter, sort, domain.Page{Number: 1, Size: reportLimit})
	if err != nil {
		uc.log.Errorf("Use Case: Failed to build %s report: %v", name, err)
		return nil, err
	}
	if total > reportLimit {
		uc.log.Warnf("Use Case: %s report truncated to %d of %d products", name, reportLimit, total)
	}
	return products, nil
}

func (uc *productUseCase) ListAudits(ctx context.Context, id int) ([]domain.ProductAudit, error) {
	if _, err := uc.GetProduct(ctx, id); err != nil {
		return nil, err
	}
	return uc.productRepo.ListAudits(ctx, id)
}

func checkPriceRange(f domain.ProductFilter) error {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return domain.NewFieldValidation("max_price", "max_price must be greater than or equal to min_price")
	}
	return nil
}
