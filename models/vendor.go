package models

import "time"

// Vendor represents a component supplier (ids are prefixed with "V-")
type Vendor struct {
	VendorID     string    `gorm:"primaryKey;size:50" json:"vendor_id"`
	VendorName   string    `gorm:"size:100;not null" json:"vendor_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        *string   `gorm:"size:100" json:"email"`
	Phone        *string   `gorm:"size:20" json:"phone"`
	Address      *string   `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Vendor model
func (Vendor) TableName() string {
	return "vendors"
}
