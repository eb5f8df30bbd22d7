package domain

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

// CanTransition reports whether an order in status from may move to to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID        int         `json:"id" gorm:"primaryKey"`
	UserID    int         `json:"user_id" gorm:"not null;index"`
	Items     []OrderItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	Status    OrderStatus `json:"status" gorm:"size:20;not null;default:pending;index"`
	CreatedAt time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID          int     `json:"-" gorm:"primaryKey"`
	OrderID     int     `json:"-" gorm:"not null;index"`
	ProductID   int     `json:"product_id" gorm:"not null;index"`
	ProductName string  `json:"product_name" gorm:"size:200"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"not null"`
}

func (i OrderItem) TotalPrice() float64 { return MulMoney(i.UnitPrice, i.Quantity) }

var orderNumberPattern = regexp.MustCompile(`^ORD-(\d{6})$`)

func (o *Order) Number() string { return fmt.Sprintf("ORD-%06d", o.ID) }

func (o *Order) TotalAmount() float64 {
	totals := make([]float64, 0, len(o.Items))
	for _, item := range o.Items {
		totals = append(totals, item.TotalPrice())
	}
	return SumMoney(totals...)
}

func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// ParseOrderRef accepts a positive numeric id or an order number such as ORD-000042.
func ParseOrderRef(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.Atoi(ref); err == nil && id > 0 {
		return id, nil
	}
	if m := orderNumberPattern.FindStringSubmatch(ref); m != nil {
		if id, _ := strconv.Atoi(m[1]); id > 0 {
			return id, nil
		}
	}
	return 0, &InvalidIDError{Resource: "order", Value: ref, Hint: "expected a positive number or ORD-123456"}
}

type OrderItemResponse struct {
	ProductID   int     `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type OrderResponse struct {
	ID          int                 `json:"id"`
	OrderNumber string              `json:"order_number"`
	UserID      int                 `json:"user_id"`
	Status      OrderStatus         `json:"status"`
	Items       []OrderItemResponse `json:"items"`
	ItemCount   int                 `json:"item_count"`
	TotalAmount float64             `json:"total_amount"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func NewOrderResponse(o *Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice(),
		})
	}
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.Number(),
		UserID:      o.UserID,
		Status:      o.Status,
		Items:       items,
		ItemCount:   o.ItemCount(),
		TotalAmount: o.TotalAmount(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func NewOrderResponses(orders []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

// SalesReport summarizes non-cancelled orders over a date range.
type SalesReport struct {
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	OrderCount       int     `json:"order_count"`
	ItemsSold        int     `json:"items_sold"`
	Revenue          float64 `json:"revenue"`
	AverageOrder     float64 `json:"average_order"`
	FormattedRevenue string  `json:"formatted_revenue"`
}

type OrderRepository interface {
	// CreateOrder persists the order and decrements stock for every item in a
	// single transaction.
	CreateOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id int) (*Order, error)
	// UpdateOrderStatus applies from -> to only while the stored status is
	// still from, and restores stock when to is cancelled.
	UpdateOrderStatus(ctx context.Context, id int, from, to OrderStatus) (*Order, error)
	ListOrdersByUserID(ctx context.Context, userID int, limit, offset int) ([]Order, int64, error)
	ListOrdersBetween(ctx context.Context, start, end time.Time) ([]Order, error)
}
