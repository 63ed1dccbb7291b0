package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/utils"
	"gorm.io/gorm"
)

// CreateOrderInput is the body of POST /api/vendor/orders
type CreateOrderInput struct {
	OrderID       string `json:"order_id"`
	VendorID      string `json:"vendor_id" binding:"required"`
	ComponentType string `json:"component_type" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	OrderType     string `json:"order_type" binding:"required,oneof=batch_wise item_wise"`
}

// VendorDashboard groups a vendor's orders by status
type VendorDashboard struct {
	Pending   []models.Order `json:"pending"`
	InProcess []models.Order `json:"in_process"`
	Completed []models.Order `json:"completed"`
}

// DefaultMaxOrderQuantity caps the units of one order when no limit is configured
const DefaultMaxOrderQuantity = 5000

// OrderService manages vendor orders
type OrderService struct {
	db          *gorm.DB
	maxQuantity int
}

// NewOrderService creates an order service
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, maxQuantity: DefaultMaxOrderQuantity}
}

// WithMaxQuantity overrides the per-order unit cap
func (s *OrderService) WithMaxQuantity(n int) *OrderService {
	if n > 0 {
		s.maxQuantity = n
	}
	return s
}

func checkQuantity(quantity, limit int) error {
	if quantity > limit {
		return ErrQuantityTooLarge.WithDetail(fmt.Sprintf("quantity %d exceeds the limit of %d", quantity, limit))
	}
	return nil
}

func newOrderID() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create stores a new pending order for an existing vendor
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := checkQuantity(in.Quantity, s.maxQuantity); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := requireRow(db, &models.Vendor{}, "vendor_id", in.VendorID, ErrVendorNotFound); err != nil {
		return nil, err
	}

	order := models.Order{
		OrderID:       strings.TrimSpace(in.OrderID),
		VendorID:      in.VendorID,
		ComponentType: in.ComponentType,
		Quantity:      in.Quantity,
		OrderType:     in.OrderType,
		Status:        models.OrderStatusPending,
	}
	if order.OrderID == "" {
		order.OrderID = newOrderID()
	}

	if err := db.Create(&order).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, ErrOrderExists
		}
		return nil, dbError("Failed to create order", err)
	}

	logger.FromContext(ctx).Info().
		Str("order_id", order.OrderID).
		Str("vendor_id", order.VendorID).
		Str("order_type", order.OrderType).
		Int("quantity", order.Quantity).
		Msg("order created")
	return &order, nil
}

// Dashboard returns the vendor's orders grouped into pending, in_process and completed
func (s *OrderService) Dashboard(ctx context.Context, vendorID string) (*VendorDashboard, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, dbError("Error fetching dashboard data", err)
	}

	grouped := lo.GroupBy(orders, func(o models.Order) string { return o.Status })
	return &VendorDashboard{
		Pending:   nonNil(grouped[models.OrderStatusPending]),
		InProcess: nonNil(grouped[models.OrderStatusInProcess]),
		Completed: nonNil(grouped[models.OrderStatusCompleted]),
	}, nil
}

// Get loads one order owned by the vendor
func (s *OrderService) Get(ctx context.Context, vendorID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND vendor_id = ?", orderID, vendorID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, dbError(fmt.Sprintf("Failed to load order %s", orderID), err)
	}
	return &order, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
