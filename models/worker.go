package models

import "time"

// Worker represents a field worker who installs fittings (ids are prefixed with "W-")
type Worker struct {
	WorkerID     string    `gorm:"primaryKey;size:50" json:"worker_id"`
	WorkerName   string    `gorm:"size:100;not null" json:"worker_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Phone        *string   `gorm:"size:20" json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Worker model
func (Worker) TableName() string {
	return "workers"
}
