package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/utils"
	"gorm.io/gorm"
)

// InspectionInterval is how long a fitting may go without inspection before an alert opens
const InspectionInterval = 20 * 24 * time.Hour

const inspectionDueDescription = "Fitting requires inspection based on heuristics."

// NeedsInspection is the single alert rule: the fitting is not in inspected
// status and its last inspection is missing or older than InspectionInterval
func NeedsInspection(f models.Fitting, now time.Time) bool {
	if f.Status == models.FittingStatusInspected {
		return false
	}
	return f.LastInspection == nil || now.Sub(*f.LastInspection) > InspectionInterval
}

// AlertFilter narrows an alert listing
type AlertFilter struct {
	VendorID  string
	FittingID string
	BatchID   string
	Status    string
	Limit     int
}

// AlertService evaluates the inspection rule and manages maintenance alerts
type AlertService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAlertService creates an alert service
func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{db: db, now: time.Now}
}

// WithClock overrides the time source
func (s *AlertService) WithClock(now func() time.Time) *AlertService {
	s.now = now
	return s
}

// EvaluateForVendor opens an inspection_due alert for every fitting of the
// vendor that needs inspection and has no open alert of that type yet
func (s *AlertService) EvaluateForVendor(ctx context.Context, vendorID string) (*GenerationResult, error) {
	db := s.db.WithContext(ctx)

	var vendorCount int64
	if err := db.Model(&models.Vendor{}).Where("vendor_id = ?", vendorID).Count(&vendorCount).Error; err != nil {
		return nil, dbError("Failed to load vendor", err)
	}
	if vendorCount == 0 {
		return nil, ErrVendorNotFound
	}

	var batches []models.Batch
	if err := db.Joins("JOIN lots ON lots.lot_id = batches.lot_id").
		Where("lots.vendor_id = ?", vendorID).
		Find(&batches).Error; err != nil {
		return nil, dbError("Failed to load batches", err)
	}
	if len(batches) == 0 {
		return &GenerationResult{VendorID: vendorID}, nil
	}
	lotOf := lo.SliceToMap(batches, func(b models.Batch) (string, string) { return b.BatchID, b.LotID })

	var fittings []models.Fitting
	if err := db.Where("batch_id IN ?", lo.Keys(lotOf)).Order("fitting_id").Find(&fittings).Error; err != nil {
		return nil, dbError("Failed to load fittings", err)
	}

	now := s.now()
	due := lo.Filter(fittings, func(f models.Fitting, _ int) bool { return NeedsInspection(f, now) })
	if len(due) == 0 {
		return &GenerationResult{VendorID: vendorID}, nil
	}

	var open []string
	if err := db.Model(&models.MaintenanceAlert{}).
		Where("alert_type = ? AND status = ? AND fitting_id IN ?", models.AlertTypeInspectionDue, models.AlertStatusOpen,
			lo.Map(due, func(f models.Fitting, _ int) string { return f.FittingID })).
		Pluck("fitting_id", &open).Error; err != nil {
		return nil, dbError("Failed to load open alerts", err)
	}
	alreadyOpen := lo.SliceToMap(open, func(id string) (string, bool) { return id, true })

	alerts := lo.FilterMap(due, func(f models.Fitting, _ int) (models.MaintenanceAlert, bool) {
		if alreadyOpen[f.FittingID] {
			return models.MaintenanceAlert{}, false
		}
		lotID, batchID, fittingID := lotOf[f.BatchID], f.BatchID, f.FittingID
		description := inspectionDueDescription
		return models.MaintenanceAlert{
			AlertID:     fmt.Sprintf("AL-%s-%s", f.FittingID, uuid.NewString()[:8]),
			VendorID:    vendorID,
			LotID:       &lotID,
			BatchID:     &batchID,
			FittingID:   &fittingID,
			AlertType:   models.AlertTypeInspectionDue,
			Severity:    models.AlertSeverityMedium,
			Description: &description,
			Status:      models.AlertStatusOpen,
			CreatedAt:   now,
		}, true
	})

	if len(alerts) > 0 {
		if err := db.CreateInBatches(&alerts, 100).Error; err != nil {
			return nil, dbError("Failed to store alerts", err)
		}
	}

	logger.FromContext(ctx).Info().
		Str("vendor_id", vendorID).
		Int("created", len(alerts)).
		Int("already_open", len(due)-len(alerts)).
		Msg("maintenance alerts evaluated")
	return &GenerationResult{VendorID: vendorID, Created: len(alerts)}, nil
}

// List returns alerts matching the filter, newest first
func (s *AlertService) List(ctx context.Context, f AlertFilter) ([]models.MaintenanceAlert, error) {
	where := sq.Eq{}
	if f.VendorID != "" {
		where["vendor_id"] = f.VendorID
	}
	if f.FittingID != "" {
		where["fitting_id"] = f.FittingID
	}
	if f.BatchID != "" {
		where["batch_id"] = f.BatchID
	}
	if f.Status != "" {
		where["status"] = f.Status
	}

	query, args, err := sq.Select("*").
		From(models.MaintenanceAlert{}.TableName()).
		Where(where).
		OrderBy("created_at DESC").
		Limit(clampLimit(f.Limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build alert query: %w", err)
	}

	alerts := []models.MaintenanceAlert{}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&alerts).Error; err != nil {
		return nil, dbError("Failed to list alerts", err)
	}
	return alerts, nil
}

// UpdateStatus acknowledges, resolves or reopens an alert
func (s *AlertService) UpdateStatus(ctx context.Context, alertID, status string) (*models.MaintenanceAlert, error) {
	if !models.IsValidAlertStatus(status) {
		return nil, utils.BadRequest("VALIDATION_ERROR", "Invalid alert status").WithDetail(status)
	}

	db := s.db.WithContext(ctx)
	var alert models.MaintenanceAlert
	if err := db.Where("alert_id = ?", alertID).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		return nil, dbError("Failed to load alert", err)
	}

	var resolvedAt *time.Time
	if status == models.AlertStatusResolved {
		now := s.now()
		resolvedAt = &now
	}
	if err := db.Model(&alert).Updates(map[string]interface{}{
		"status":      status,
		"resolved_at": resolvedAt,
	}).Error; err != nil {
		return nil, dbError("Failed to update alert", err)
	}

	alert.Status = status
	alert.ResolvedAt = resolvedAt
	return &alert, nil
}
