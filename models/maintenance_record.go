package models

import "time"

const (
	MaintenanceStatusReported   = "reported"
	MaintenanceStatusInProgress = "in_progress"
	MaintenanceStatusResolved   = "resolved"
)

// MaintenanceRecord is an issue reported against a fitting, by a worker or an officer
type MaintenanceRecord struct {
	RecordID         uint       `gorm:"primaryKey" json:"record_id"`
	FittingID        string     `gorm:"size:120;not null;index" json:"fitting_id"`
	OfficerID        *string    `gorm:"size:50" json:"officer_id"`
	WorkerID         *string    `gorm:"size:50" json:"worker_id"`
	IssueDescription string     `gorm:"type:text;not null" json:"issue_description"`
	Status           string     `gorm:"size:30;not null;default:'reported'" json:"status"` // reported, in_progress, resolved
	ReportedAt       time.Time  `gorm:"autoCreateTime" json:"reported_at"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	ResolutionNotes  *string    `gorm:"type:text" json:"resolution_notes"`
}

// TableName specifies the table name for the MaintenanceRecord model
func (MaintenanceRecord) TableName() string {
	return "maintenance_records"
}

// IsValidMaintenanceStatus reports whether s is a known maintenance status
func IsValidMaintenanceStatus(s string) bool {
	switch s {
	case MaintenanceStatusReported, MaintenanceStatusInProgress, MaintenanceStatusResolved:
		return true
	}
	return false
}
