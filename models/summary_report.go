package models

import "time"

const (
	SummaryScopeVendor = "vendor"
	SummaryScopeLot    = "lot"
	SummaryScopeBatch  = "batch"
)

// SummaryReport is an AI-generated summary stored verbatim for a vendor, lot or batch
type SummaryReport struct {
	SummaryID   string    `gorm:"primaryKey;size:120" json:"summary_id"`
	VendorID    string    `gorm:"size:50;not null;index" json:"vendor_id"`
	LotID       *string   `gorm:"size:80" json:"lot_id"`
	BatchID     *string   `gorm:"size:100" json:"batch_id"`
	Scope       string    `gorm:"size:20;not null" json:"scope"`
	SummaryText string    `gorm:"type:text;not null" json:"summary_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for the SummaryReport model
func (SummaryReport) TableName() string {
	return "summary_reports"
}
