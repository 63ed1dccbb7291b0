package services

import (
	"context"
	"errors"
	"time"

	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/utils"
	"gorm.io/gorm"
)

// InstallationInput is a worker's installation report
type InstallationInput struct {
	FittingID    string   `json:"fitting_id" binding:"required"`
	WorkerID     string   `json:"worker_id" binding:"required"`
	LocationLat  *float64 `json:"location_lat" binding:"omitempty,min=-90,max=90"`
	LocationLong *float64 `json:"location_long" binding:"omitempty,min=-180,max=180"`
	Notes        *string  `json:"notes"`
}

// WorkerMaintenanceInput is an issue reported by a worker
type WorkerMaintenanceInput struct {
	FittingID        string `json:"fitting_id" binding:"required"`
	WorkerID         string `json:"worker_id" binding:"required"`
	IssueDescription string `json:"issue_description" binding:"required"`
}

// OfficerMaintenanceInput is an inspection or maintenance entry logged by an officer
type OfficerMaintenanceInput struct {
	FittingID        string  `json:"fitting_id" binding:"required"`
	OfficerID        string  `json:"officer_id" binding:"required"`
	IssueDescription string  `json:"issue_description" binding:"required"`
	Status           string  `json:"status" binding:"omitempty,oneof=reported in_progress resolved"`
	ResolutionNotes  *string `json:"resolution_notes"`
}

// FieldService records installations and maintenance against fittings
type FieldService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewFieldService creates a field service
func NewFieldService(db *gorm.DB) *FieldService {
	return &FieldService{db: db, now: time.Now}
}

// WithClock overrides the time source
func (s *FieldService) WithClock(now func() time.Time) *FieldService {
	s.now = now
	return s
}

func lockFitting(tx *gorm.DB, fittingID string) (*models.Fitting, error) {
	var fitting models.Fitting
	if err := tx.Clauses(forUpdate).Where("fitting_id = ?", fittingID).First(&fitting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFittingNotFound
		}
		return nil, dbError("Failed to load fitting", err)
	}
	return &fitting, nil
}

func requireRow(tx *gorm.DB, model interface{}, column, id string, notFound error) error {
	var count int64
	if err := tx.Model(model).Where(column+" = ?", id).Count(&count).Error; err != nil {
		return dbError("Failed to load record", err)
	}
	if count == 0 {
		return notFound
	}
	return nil
}

// RecordInstallation stores the installation and marks the fitting installed.
// A fitting can be installed once.
func (s *FieldService) RecordInstallation(ctx context.Context, in InstallationInput) (*models.InstallationRecord, error) {
	var record models.InstallationRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fitting, err := lockFitting(tx, in.FittingID)
		if err != nil {
			return err
		}
		if err := requireRow(tx, &models.Worker{}, "worker_id", in.WorkerID, ErrWorkerNotFound); err != nil {
			return err
		}

		var installed int64
		if err := tx.Model(&models.InstallationRecord{}).Where("fitting_id = ?", fitting.FittingID).Count(&installed).Error; err != nil {
			return dbError("Failed to check installation", err)
		}
		if installed > 0 || fitting.Status == models.FittingStatusInstalled {
			return ErrAlreadyInstalled
		}

		record = models.InstallationRecord{
			FittingID:    fitting.FittingID,
			WorkerID:     in.WorkerID,
			LocationLat:  in.LocationLat,
			LocationLong: in.LocationLong,
			Notes:        in.Notes,
			Status:       models.FittingStatusInstalled,
			InstalledAt:  s.now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return dbError("Failed to save installation record", err)
		}
		if err := tx.Model(fitting).Update("status", models.FittingStatusInstalled).Error; err != nil {
			return dbError("Failed to update fitting status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("fitting_id", in.FittingID).Str("worker_id", in.WorkerID).Msg("fitting installed")
	return &record, nil
}

// ReportIssue stores a worker's maintenance report and flags the fitting
func (s *FieldService) ReportIssue(ctx context.Context, in WorkerMaintenanceInput) (*models.MaintenanceRecord, error) {
	var record models.MaintenanceRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fitting, err := lockFitting(tx, in.FittingID)
		if err != nil {
			return err
		}
		if err := requireRow(tx, &models.Worker{}, "worker_id", in.WorkerID, ErrWorkerNotFound); err != nil {
			return err
		}

		workerID := in.WorkerID
		record = models.MaintenanceRecord{
			FittingID:        fitting.FittingID,
			WorkerID:         &workerID,
			IssueDescription: in.IssueDescription,
			Status:           models.MaintenanceStatusReported,
			ReportedAt:       s.now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return dbError("Failed to save maintenance record", err)
		}
		if err := tx.Model(fitting).Update("status", models.FittingStatusMaintenanceRequired).Error; err != nil {
			return dbError("Failed to update fitting status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// LogMaintenance stores an officer's maintenance entry. A resolved entry marks
// the fitting inspected; any other status flags it for maintenance.
func (s *FieldService) LogMaintenance(ctx context.Context, in OfficerMaintenanceInput) (*models.MaintenanceRecord, error) {
	status := in.Status
	if status == "" {
		status = models.MaintenanceStatusReported
	}
	if !models.IsValidMaintenanceStatus(status) {
		return nil, utils.BadRequest("VALIDATION_ERROR", "Invalid maintenance status").WithDetail(status)
	}

	var record models.MaintenanceRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fitting, err := lockFitting(tx, in.FittingID)
		if err != nil {
			return err
		}
		if err := requireRow(tx, &models.Officer{}, "officer_id", in.OfficerID, ErrOfficerNotFound); err != nil {
			return err
		}

		now := s.now()
		officerID := in.OfficerID
		record = models.MaintenanceRecord{
			FittingID:        fitting.FittingID,
			OfficerID:        &officerID,
			IssueDescription: in.IssueDescription,
			Status:           status,
			ReportedAt:       now,
			ResolutionNotes:  in.ResolutionNotes,
		}
		if status == models.MaintenanceStatusResolved {
			record.ResolvedAt = &now
		}
		if err := tx.Create(&record).Error; err != nil {
			return dbError("Failed to save maintenance record", err)
		}
		return s.applyToFitting(tx, fitting, status, now)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ResolveInput updates an existing maintenance record
type ResolveInput struct {
	Status          string  `json:"status" binding:"required,oneof=reported in_progress resolved"`
	ResolutionNotes *string `json:"resolution_notes"`
}

// UpdateRecord moves a maintenance record forward. Resolved records are final.
func (s *FieldService) UpdateRecord(ctx context.Context, recordID uint, officerID string, in ResolveInput) (*models.MaintenanceRecord, error) {
	if !models.IsValidMaintenanceStatus(in.Status) {
		return nil, utils.BadRequest("VALIDATION_ERROR", "Invalid maintenance status").WithDetail(in.Status)
	}

	var record models.MaintenanceRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).Where("record_id = ?", recordID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return dbError("Failed to load maintenance record", err)
		}
		if record.Status == models.MaintenanceStatusResolved {
			return ErrInvalidTransition.WithDetail(record.Status + " -> " + in.Status)
		}

		now := s.now()
		updates := map[string]interface{}{"status": in.Status}
		if in.ResolutionNotes != nil {
			updates["resolution_notes"] = *in.ResolutionNotes
			record.ResolutionNotes = in.ResolutionNotes
		}
		if record.OfficerID == nil && officerID != "" {
			updates["officer_id"] = officerID
			record.OfficerID = &officerID
		}
		if in.Status == models.MaintenanceStatusResolved {
			updates["resolved_at"] = now
			record.ResolvedAt = &now
		}
		if err := tx.Model(&models.MaintenanceRecord{}).Where("record_id = ?", record.RecordID).Updates(updates).Error; err != nil {
			return dbError("Failed to update maintenance record", err)
		}
		record.Status = in.Status

		fitting, err := lockFitting(tx, record.FittingID)
		if err != nil {
			return err
		}
		return s.applyToFitting(tx, fitting, in.Status, now)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *FieldService) applyToFitting(tx *gorm.DB, fitting *models.Fitting, status string, now time.Time) error {
	updates := map[string]interface{}{"status": models.FittingStatusMaintenanceRequired}
	if status == models.MaintenanceStatusResolved {
		updates = map[string]interface{}{
			"status":          models.FittingStatusInspected,
			"last_inspection": now,
		}
	}
	if err := tx.Model(fitting).Updates(updates).Error; err != nil {
		return dbError("Failed to update fitting status", err)
	}
	return nil
}
