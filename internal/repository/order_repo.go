package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront/internal/domain"
)

type gormOrderRepository struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewOrderRepository(db *gorm.DB, logger *logrus.Logger) domain.OrderRepository {
	return &gormOrderRepository{
		db:  db,
		log: logger,
	}
}

func (r *gormOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			res := tx.Model(&domain.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumns(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", item.Quantity),
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var product domain.Product
				if err := tx.Select("id", "stock").First(&product, item.ProductID).Error; err != nil {
					if isNotFound(err) {
						return domain.NewNotFound("product", item.ProductID)
					}
					return err
				}
				return &domain.InsufficientStockError{ProductID: item.ProductID, Requested: item.Quantity, Available: product.Stock}
			}
		}
		if order.Status == "" {
			order.Status = domain.StatusPending
		}
		return tx.Create(order).Error
	})
	if err != nil {
		var stockErr *domain.InsufficientStockError
		var notFound *domain.NotFoundError
		if errors.As(err, &stockErr) || errors.As(err, &notFound) {
			r.log.Warnf("Order for user %d rejected: %v", order.UserID, err)
			return nil, err
		}
		r.log.Errorf("Failed to create order for user %d: %v", order.UserID, err)
		return nil, fmt.Errorf("could not create order: %w", err)
	}
	r.log.Infof("Order created successfully with ID: %d for user %d", order.ID, order.UserID)
	return order, nil
}

func (r *gormOrderRepository) GetOrderByID(ctx context.Context, id int) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items", orderItemsByID).First(&order, id).Error
	if err != nil {
		if isNotFound(err) {
			r.log.Warnf("Order with ID %d not found", id)
			return nil, domain.NewNotFound("order", id)
		}
		r.log.Errorf("Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get order by id: %w", err)
	}
	return &order, nil
}

// UpdateOrderStatus moves the order from status from to status to. The row
// is re-read inside the transaction and the write is conditional on from, so
// a status changed by someone else in the meantime is a conflict. Cancelling
// returns every item's quantity to stock.
func (r *gormOrderRepository) UpdateOrderStatus(ctx context.Context, id int, from, to domain.OrderStatus) (*domain.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order domain.Order
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			if isNotFound(err) {
				return domain.NewNotFound("order", id)
			}
			return err
		}
		if order.Status != from || !domain.CanTransition(order.Status, to) {
			return domain.NewConflict("Cannot change order status from %s to %s", order.Status, to)
		}

		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NewConflict("order %d was modified concurrently", id)
		}

		if to == domain.StatusCancelled {
			for _, item := range order.Items {
				err := tx.Model(&domain.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		var notFound *domain.NotFoundError
		var conflict *domain.ConflictError
		if errors.As(err, &notFound) || errors.As(err, &conflict) {
			r.log.Warnf("Status update of order ID %d to %s rejected: %v", id, to, err)
			return nil, err
		}
		r.log.Errorf("Failed to update status for order ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update order status: %w", err)
	}
	r.log.Infof("Order ID %d status updated from %s to %s", id, from, to)
	return r.GetOrderByID(ctx, id)
}

func (r *gormOrderRepository) ListOrdersByUserID(ctx context.Context, userID int, limit, offset int) ([]domain.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		r.log.Errorf("Failed to count orders for user %d: %v", userID, err)
		return nil, 0, fmt.Errorf("could not count orders: %w", err)
	}

	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		r.log.Errorf("Failed to list orders for user %d: %v", userID, err)
		return nil, 0, fmt.Errorf("could not list orders: %w", err)
	}
	r.log.Infof("Listed %d orders for user %d (limit=%d, offset=%d)", len(orders), userID, limit, offset)
	return orders, total, nil
}

func (r *gormOrderRepository) ListOrdersBetween(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items", orderItemsByID).
		Where("created_at >= ? AND created_at < ?", start, end).
		Where("status <> ?", domain.StatusCancelled).
		Order("created_at ASC, id ASC").
		Find(&orders).Error
	if err != nil {
		r.log.Errorf("Failed to list orders between %s and %s: %v", start.Format(time.RFC3339), end.Format(time.RFC3339), err)
		return nil, fmt.Errorf("could not list orders: %w", err)
	}
	return orders, nil
}

func orderItemsByID(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }
