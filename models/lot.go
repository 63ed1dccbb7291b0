package models

import (
	"fmt"
	"time"
)

// Lot is a vendor-scoped numbered grouping of batches, created once per order
type Lot struct {
	LotID     string    `gorm:"primaryKey;size:80" json:"lot_id"`
	VendorID  string    `gorm:"size:50;not null;uniqueIndex:idx_lots_vendor_number,priority:1" json:"vendor_id"`
	LotNumber int       `gorm:"not null;uniqueIndex:idx_lots_vendor_number,priority:2" json:"lot_number"`
	OrderID   *string   `gorm:"size:50;uniqueIndex:idx_lots_order_id" json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the Lot model
func (Lot) TableName() string {
	return "lots"
}

// LotIDFor builds the lot identifier for a vendor's n-th lot
func LotIDFor(vendorID string, lotNumber int) string {
	return fmt.Sprintf("%s-LOT-%d", vendorID, lotNumber)
}
