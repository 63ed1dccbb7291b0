package models

import "time"

const (
	OrderTypeBatchWise = "batch_wise"
	OrderTypeItemWise  = "item_wise"

	OrderStatusPending   = "pending"
	OrderStatusInProcess = "in_process"
	OrderStatusCompleted = "completed"
)

// Order represents a component order placed with a vendor
type Order struct {
	OrderID       string    `gorm:"primaryKey;size:50" json:"order_id"`
	VendorID      string    `gorm:"size:50;not null;index" json:"vendor_id"`
	ComponentType string    `gorm:"size:100" json:"component_type"`
	Quantity      int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	OrderType     string    `gorm:"size:20;not null" json:"order_type"`
	Status        string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsValidOrderType reports whether t names a supported order type
func IsValidOrderType(t string) bool {
	return t == OrderTypeBatchWise || t == OrderTypeItemWise
}
