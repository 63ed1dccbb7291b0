package models

import "time"

// InstallationRecord captures a worker installing a fitting in the field
type InstallationRecord struct {
	RecordID     uint      `gorm:"primaryKey" json:"record_id"`
	FittingID    string    `gorm:"size:120;not null;index" json:"fitting_id"`
	WorkerID     string    `gorm:"size:50;not null" json:"worker_id"`
	LocationLat  *float64  `json:"location_lat"`
	LocationLong *float64  `json:"location_long"`
	Notes        *string   `json:"notes"`
	Status       string    `gorm:"size:30;not null;default:'installed'" json:"status"`
	InstalledAt  time.Time `gorm:"autoCreateTime" json:"installed_at"`
}

// TableName specifies the table name for the InstallationRecord model
func (InstallationRecord) TableName() string {
	return "installation_records"
}
