package models

import "time"

// File is an attachment (test report, photo) stored in object storage
type File struct {
	FileID      string    `gorm:"primaryKey;size:50" json:"file_id"`
	RelatedID   string    `gorm:"size:120;not null;index" json:"related_id"` // order, batch or fitting id
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	FileType    *string   `gorm:"size:50" json:"file_type"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	Size        int64     `gorm:"not null;default:0" json:"size"`
	StorageKey  string    `gorm:"size:500;not null" json:"-"`
	UploadedBy  *string   `gorm:"size:50" json:"uploaded_by"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	URL         *string   `gorm:"-" json:"url,omitempty"` // computed field, presigned URL
}

// TableName specifies the table name for the File model
func (File) TableName() string {
	return "files"
}
