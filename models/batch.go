package models

import (
	"fmt"
	"time"
)

// Batch is a lot-scoped numbered unit of production
type Batch struct {
	BatchID     string     `gorm:"primaryKey;size:100" json:"batch_id"`
	LotID       string     `gorm:"size:80;not null;uniqueIndex:idx_batches_lot_number,priority:1" json:"lot_id"`
	OrderID     string     `gorm:"size:50;not null;index" json:"order_id"`
	BatchNumber int        `gorm:"not null;uniqueIndex:idx_batches_lot_number,priority:2" json:"batch_number"`
	QRData      *string    `gorm:"type:text" json:"qr_data"`
	IsQRPrinted bool       `gorm:"not null;default:false" json:"is_qr_printed"`
	PrintedAt   *time.Time `json:"printed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name for the Batch model
func (Batch) TableName() string {
	return "batches"
}

// BatchIDFor builds the batch identifier for the n-th batch of a lot
func BatchIDFor(lotID string, batchNumber int) string {
	return fmt.Sprintf("%s-B%d", lotID, batchNumber)
}
