package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/utils"
	"gorm.io/gorm"
)

// FileService stores attachments in object storage and their metadata in the files table
type FileService struct {
	db      *gorm.DB
	storage S3Interface
}

// NewFileService creates a file service; storage may be nil when S3 is not configured
func NewFileService(db *gorm.DB, storage S3Interface) *FileService {
	return &FileService{db: db, storage: storage}
}

// UploadInput describes one attachment upload
type UploadInput struct {
	RelatedID  string
	FileType   string
	UploadedBy string
}

// Upload validates the file, stores it and records its metadata
func (s *FileService) Upload(ctx context.Context, fileHeader *multipart.FileHeader, in UploadInput) (*models.File, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}
	if err := utils.ValidateAttachment(fileHeader); err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			return nil, utils.BadRequest(uploadErr.Code, uploadErr.Message)
		}
		return nil, err
	}
	if err := s.ensureRelatedExists(ctx, in.RelatedID); err != nil {
		return nil, err
	}

	content, err := readUpload(fileHeader)
	if err != nil {
		return nil, utils.Internal("UPLOAD_FAILED", "Failed to read uploaded file", err)
	}

	fileID := uuid.NewString()
	name := filepath.Base(fileHeader.Filename)
	key := utils.StorageKeyFor(in.RelatedID, fileID, name)
	contentType := utils.ContentTypeFor(name)

	if err := s.storage.UploadObject(ctx, key, contentType, content); err != nil {
		return nil, utils.Internal("UPLOAD_FAILED", "Failed to store file", err)
	}

	file := models.File{
		FileID:      fileID,
		RelatedID:   in.RelatedID,
		FileName:    name,
		ContentType: contentType,
		Size:        int64(len(content)),
		StorageKey:  key,
	}
	if in.FileType != "" {
		file.FileType = &in.FileType
	}
	if in.UploadedBy != "" {
		file.UploadedBy = &in.UploadedBy
	}

	if err := s.db.WithContext(ctx).Create(&file).Error; err != nil {
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			logger.FromContext(ctx).Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned upload")
		}
		return nil, dbError("Failed to save file metadata", err)
	}

	s.attachURL(ctx, &file)
	return &file, nil
}

// Get returns the file metadata with a presigned download URL
func (s *FileService) Get(ctx context.Context, fileID string) (*models.File, error) {
	var file models.File
	if err := s.db.WithContext(ctx).Where("file_id = ?", fileID).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, dbError("Failed to load file", err)
	}
	s.attachURL(ctx, &file)
	return &file, nil
}

// ListForRelated returns the attachments of an order, batch or fitting, newest first
func (s *FileService) ListForRelated(ctx context.Context, relatedID string) ([]models.File, error) {
	files := []models.File{}
	if err := s.db.WithContext(ctx).Where("related_id = ?", relatedID).Order("uploaded_at DESC").Find(&files).Error; err != nil {
		return nil, dbError("Failed to load files", err)
	}
	for i := range files {
		s.attachURL(ctx, &files[i])
	}
	return files, nil
}

// attachURL fills the presigned URL; metadata is still returned when presigning fails
func (s *FileService) attachURL(ctx context.Context, file *models.File) {
	if s.storage == nil {
		return
	}
	url, err := s.storage.GetPresignedURL(ctx, file.StorageKey)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("file_id", file.FileID).Msg("failed to presign file url")
		return
	}
	file.URL = &url
}

func (s *FileService) ensureRelatedExists(ctx context.Context, relatedID string) error {
	db := s.db.WithContext(ctx)
	lookups := []struct {
		model  interface{}
		column string
	}{
		{&models.Fitting{}, "fitting_id"},
		{&models.Batch{}, "batch_id"},
		{&models.Order{}, "order_id"},
	}
	for _, l := range lookups {
		var count int64
		if err := db.Model(l.model).Where(l.column+" = ?", relatedID).Count(&count).Error; err != nil {
			return dbError("Failed to check related record", err)
		}
		if count > 0 {
			return nil
		}
	}
	return ErrRelatedNotFound
}

func readUpload(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}
