package models

import (
	"fmt"
	"time"
)

const (
	FittingStatusNew                 = "new"
	FittingStatusPrinted             = "printed"
	FittingStatusInstalled           = "installed"
	FittingStatusInspected           = "inspected"
	FittingStatusMaintenanceRequired = "maintenance_required"
)

// Fitting is an individually numbered physical item within a batch
type Fitting struct {
	FittingID      string     `gorm:"primaryKey;size:120" json:"fitting_id"`
	ItemNumber     int        `gorm:"not null;uniqueIndex:idx_fittings_batch_item,priority:2" json:"item_number"`
	BatchID        string     `gorm:"size:100;not null;uniqueIndex:idx_fittings_batch_item,priority:1" json:"batch_id"`
	Status         string     `gorm:"size:30;not null;default:'new'" json:"status"`
	LastInspection *time.Time `json:"last_inspection"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the Fitting model
func (Fitting) TableName() string {
	return "fittings"
}

// FittingIDFor builds the fitting identifier for the n-th item of a batch (1-indexed)
func FittingIDFor(batchID string, itemNumber int) string {
	return fmt.Sprintf("%s-ITEM-%d", batchID, itemNumber)
}
