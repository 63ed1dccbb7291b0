package models

import "time"

const (
	AlertTypeInspectionDue = "inspection_due"

	AlertSeverityMedium = "medium"

	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusResolved     = "resolved"
)

// MaintenanceAlert is a rule-derived alert raised against a fitting
type MaintenanceAlert struct {
	AlertID     string     `gorm:"primaryKey;size:160" json:"alert_id"`
	VendorID    string     `gorm:"size:50;not null;index" json:"vendor_id"`
	LotID       *string    `gorm:"size:80" json:"lot_id"`
	BatchID     *string    `gorm:"size:100" json:"batch_id"`
	FittingID   *string    `gorm:"size:120;index" json:"fitting_id"`
	AlertType   string     `gorm:"size:50;not null" json:"alert_type"`
	Severity    string     `gorm:"size:20;not null" json:"severity"`
	Description *string    `json:"description"`
	Status      string     `gorm:"size:20;not null;default:'open'" json:"status"` // open, acknowledged, resolved
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// TableName specifies the table name for the MaintenanceAlert model
func (MaintenanceAlert) TableName() string {
	return "maintenance_alerts"
}

// IsValidAlertStatus reports whether s is a known alert status
func IsValidAlertStatus(s string) bool {
	switch s {
	case AlertStatusOpen, AlertStatusAcknowledged, AlertStatusResolved:
		return true
	}
	return false
}
