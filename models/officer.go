package models

import "time"

// Officer represents a railway inspection officer (ids are prefixed with "O-")
type Officer struct {
	OfficerID    string    `gorm:"primaryKey;size:50" json:"officer_id"`
	OfficerName  string    `gorm:"size:100;not null" json:"officer_name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        *string   `gorm:"size:100" json:"email"`
	Phone        *string   `gorm:"size:20" json:"phone"`
	Designation  *string   `gorm:"size:100" json:"designation"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Officer model
func (Officer) TableName() string {
	return "officers"
}
