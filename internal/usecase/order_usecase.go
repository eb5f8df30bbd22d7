package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

var _ domain.OrderUseCase = (*orderUseCase)(nil)

type orderUseCase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	userRepo    domain.UserRepository
	log         *logrus.Logger
}

func NewOrderUseCase(orders domain.OrderRepository, products domain.ProductRepository, users domain.UserRepository, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{
		orderRepo:   orders,
		productRepo: products,
		userRepo:    users,
		log:         logger,
	}
}

// CreateOrder prices every item from the catalog and reserves stock. Items
// naming the same product are merged first.
func (uc *orderUseCase) CreateOrder(ctx context.Context, userID int, in domain.OrderCreate) (*domain.Order, error) {
	if _, err := uc.userRepo.GetUserByID(ctx, userID); err != nil {
		uc.log.Warnf("Use Case: Order rejected - user %d: %v", userID, err)
		return nil, err
	}

	items := in.MergedItems()
	if len(items) == 0 {
		return nil, domain.NewFieldValidation("items", "order must contain at least one item")
	}
	uc.log.Infof("Use Case: Starting inventory check for order of user %d (%d products)", userID, len(items))

	order := &domain.Order{UserID: userID, Status: domain.StatusPending}
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.NewFieldValidation(fmt.Sprintf("items[%d].quantity", i), "quantity must be positive")
		}
		product, err := uc.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			uc.log.Warnf("Use Case: Inventory check failed for Product ID %d: %v", item.ProductID, err)
			return nil, err
		}
		if !product.IsActive() {
			uc.log.Warnf("Use Case: Product ID %d is %s and cannot be ordered", product.ID, product.Status)
			return nil, domain.NewFieldValidation(fmt.Sprintf("items[%d].product_id", i),
				fmt.Sprintf("Product %s is not available", product.SKU()))
		}
		if product.Stock < item.Quantity {
			uc.log.Warnf("Use Case: Insufficient stock for Product ID %d. Available: %d, Requested: %d",
				product.ID, product.Stock, item.Quantity)
			return nil, &domain.InsufficientStockError{ProductID: product.ID, Requested: item.Quantity, Available: product.Stock}
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.EffectivePrice(),
		})
	}

	created, err := uc.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create order for user %d: %v", userID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Order %s created for user %d, total %s",
		created.Number(), userID, domain.FormatPrice(created.TotalAmount()))
	return created, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, actor *domain.User, id int) (*domain.Order, error) {
	order, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || (order.UserID != actor.ID && !actor.IsStaff()) {
		uc.log.Warnf("Use Case: User denied access to order %d", id)
		return nil, domain.NewForbidden("Not authorized to view this order")
	}
	return order, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, userID int, page domain.Page) ([]domain.Order, int64, error) {
	return uc.orderRepo.ListOrdersByUserID(ctx, userID, page.Limit(), page.Offset())
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, id int, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.IsValidStatus(status) {
		return nil, domain.NewFieldValidation("status", fmt.Sprintf("invalid status value '%s'", status))
	}
	order, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(order.Status, status) {
		uc.log.Warnf("Use Case: Rejected transition of order %d from %s to %s", id, order.Status, status)
		return nil, domain.NewConflict("Cannot change order status from %s to %s", order.Status, status)
	}
	uc.log.Infof("Use Case: Moving order %d from %s to %s", id, order.Status, status)
	return uc.orderRepo.UpdateOrderStatus(ctx, id, order.Status, status)
}

// SalesReport aggregates non-cancelled orders created within the range.
func (uc *orderUseCase) SalesReport(ctx context.Context, r domain.DateRange) (*domain.SalesReport, error) {
	start, end, err := r.Bounds()
	if err != nil {
		return nil, err
	}
	last := end.AddDate(0, 0, -1)
	if !last.After(start) {
		return nil, domain.NewFieldValidation("end_date", "end_date must be after start_date")
	}
	if last.Sub(start) > domain.MaxDateRangeDays*24*time.Hour {
		return nil, domain.NewFieldValidation("end_date", fmt.Sprintf("date range cannot exceed %d days", domain.MaxDateRangeDays))
	}

	orders, err := uc.orderRepo.ListOrdersBetween(ctx, start, end)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load orders for sales report: %v", err)
		return nil, err
	}

	revenue := decimal.Zero
	items := 0
	for i := range orders {
		revenue = revenue.Add(decimal.NewFromFloat(orders[i].TotalAmount()))
		items += orders[i].ItemCount()
	}
	average := decimal.Zero
	if len(orders) > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(len(orders)))).Round(2)
	}
	revenueValue := revenue.Round(2).InexactFloat64()

	report := &domain.SalesReport{
		StartDate:        r.StartDate,
		EndDate:          r.EndDate,
		OrderCount:       len(orders),
		ItemsSold:        items,
		Revenue:          revenueValue,
		AverageOrder:     average.InexactFloat64(),
		FormattedRevenue: domain.FormatPrice(revenueValue),
	}
	uc.log.Infof("Use Case: Sales report %s..%s: %d orders, revenue %s",
		r.StartDate, r.EndDate, report.OrderCount, report.FormattedRevenue)
	return report, nil
}
