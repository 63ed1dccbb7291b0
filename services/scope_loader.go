package services

import (
	"context"
	"errors"

	"github.com/samber/lo"
	"github.com/vaibhavvyavahare/railtrace/models"
	"gorm.io/gorm"
)

// VendorScope is everything recorded under one vendor
type VendorScope struct {
	Vendor        *models.Vendor              `json:"vendor"`
	Lots          []models.Lot                `json:"lots"`
	Batches       []models.Batch              `json:"batches"`
	Fittings      []models.Fitting            `json:"fittings"`
	Installations []models.InstallationRecord `json:"installations"`
	Maintenances  []models.MaintenanceRecord  `json:"maintenances"`
}

// LotScope is everything recorded under one lot
type LotScope struct {
	Lot           *models.Lot                 `json:"lot"`
	Vendor        *models.Vendor              `json:"vendor"`
	Batches       []models.Batch              `json:"batches"`
	Fittings      []models.Fitting            `json:"fittings"`
	Installations []models.InstallationRecord `json:"installations"`
	Maintenances  []models.MaintenanceRecord  `json:"maintenances"`
}

// BatchScope is everything recorded under one batch
type BatchScope struct {
	Batch         *models.Batch               `json:"batch"`
	Lot           *models.Lot                 `json:"lot"`
	Order         *models.Order               `json:"order"`
	Vendor        *models.Vendor              `json:"vendor"`
	Fittings      []models.Fitting            `json:"fittings"`
	Installations []models.InstallationRecord `json:"installations"`
	Maintenances  []models.MaintenanceRecord  `json:"maintenances"`
}

// VendorID returns the vendor that owns the batch, via its order or its lot
func (b *BatchScope) VendorID() string {
	switch {
	case b.Order != nil:
		return b.Order.VendorID
	case b.Lot != nil:
		return b.Lot.VendorID
	}
	return ""
}

// SystemSnapshot is the whole system, used for the performance report
type SystemSnapshot struct {
	Vendors       []models.Vendor             `json:"vendors"`
	Orders        []models.Order              `json:"orders"`
	Lots          []models.Lot                `json:"lots"`
	Batches       []models.Batch              `json:"batches"`
	Fittings      []models.Fitting            `json:"fittings"`
	Installations []models.InstallationRecord `json:"installations"`
	Maintenances  []models.MaintenanceRecord  `json:"maintenances"`
}

// MaintenanceView is a maintenance record with its traceability context
type MaintenanceView struct {
	models.MaintenanceRecord
	BatchID       string `json:"batch_id"`
	LotID         string `json:"lot_id"`
	VendorName    string `json:"vendor_name"`
	ComponentType string `json:"component_type"`
}

// ScopeLoader reads data along vendor -> lots -> batches -> fittings -> records
type ScopeLoader struct {
	db *gorm.DB
}

// NewScopeLoader creates a loader backed by db
func NewScopeLoader(db *gorm.DB) *ScopeLoader {
	return &ScopeLoader{db: db}
}

// Vendor loads a vendor's full scope
func (l *ScopeLoader) Vendor(ctx context.Context, vendorID string) (*VendorScope, error) {
	db := l.db.WithContext(ctx)

	var vendor models.Vendor
	if err := db.Where("vendor_id = ?", vendorID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, dbError("Failed to load vendor", err)
	}

	scope := &VendorScope{Vendor: &vendor}
	if err := db.Where("vendor_id = ?", vendorID).Order("created_at DESC").Find(&scope.Lots).Error; err != nil {
		return nil, dbError("Failed to load lots", err)
	}

	lotIDs := lo.Map(scope.Lots, func(l models.Lot, _ int) string { return l.LotID })
	var err error
	if scope.Batches, err = l.batchesForLots(db, lotIDs); err != nil {
		return nil, err
	}
	if scope.Fittings, scope.Installations, scope.Maintenances, err = l.fittingsForBatches(db, batchIDs(scope.Batches)); err != nil {
		return nil, err
	}
	return scope, nil
}

// Lot loads a lot's full scope
func (l *ScopeLoader) Lot(ctx context.Context, lotID string) (*LotScope, error) {
	db := l.db.WithContext(ctx)

	var lot models.Lot
	if err := db.Where("lot_id = ?", lotID).First(&lot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLotNotFound
		}
		return nil, dbError("Failed to load lot", err)
	}

	scope := &LotScope{Lot: &lot}
	var err error
	if scope.Vendor, err = l.optionalVendor(db, lot.VendorID); err != nil {
		return nil, err
	}
	if scope.Batches, err = l.batchesForLots(db, []string{lot.LotID}); err != nil {
		return nil, err
	}
	if scope.Fittings, scope.Installations, scope.Maintenances, err = l.fittingsForBatches(db, batchIDs(scope.Batches)); err != nil {
		return nil, err
	}
	return scope, nil
}

// Batch loads a batch's full scope
func (l *ScopeLoader) Batch(ctx context.Context, batchID string) (*BatchScope, error) {
	db := l.db.WithContext(ctx)

	var batch models.Batch
	if err := db.Where("batch_id = ?", batchID).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, dbError("Failed to load batch", err)
	}

	scope := &BatchScope{Batch: &batch}

	var lot models.Lot
	if err := db.Where("lot_id = ?", batch.LotID).Limit(1).Find(&lot).Error; err != nil {
		return nil, dbError("Failed to load lot", err)
	}
	if lot.LotID != "" {
		scope.Lot = &lot
	}

	var order models.Order
	if err := db.Where("order_id = ?", batch.OrderID).Limit(1).Find(&order).Error; err != nil {
		return nil, dbError("Failed to load order", err)
	}
	if order.OrderID != "" {
		scope.Order = &order
		var err error
		if scope.Vendor, err = l.optionalVendor(db, order.VendorID); err != nil {
			return nil, err
		}
	}

	var err error
	if scope.Fittings, scope.Installations, scope.Maintenances, err = l.fittingsForBatches(db, []string{batch.BatchID}); err != nil {
		return nil, err
	}
	return scope, nil
}

// System loads every table for the system-wide report
func (l *ScopeLoader) System(ctx context.Context) (*SystemSnapshot, error) {
	db := l.db.WithContext(ctx)
	snap := &SystemSnapshot{}

	targets := []interface{}{&snap.Vendors, &snap.Orders, &snap.Lots, &snap.Batches, &snap.Fittings, &snap.Installations, &snap.Maintenances}
	for _, target := range targets {
		if err := db.Find(target).Error; err != nil {
			return nil, dbError("Failed to load system snapshot", err)
		}
	}
	return snap, nil
}

// Maintenance loads every maintenance record with its batch, lot and vendor, newest first
func (l *ScopeLoader) Maintenance(ctx context.Context) ([]MaintenanceView, error) {
	var views []MaintenanceView
	err := l.db.WithContext(ctx).
		Table("maintenance_records AS mr").
		Select("mr.*, b.batch_id, l.lot_id, v.vendor_name, o.component_type").
		Joins("JOIN fittings f ON mr.fitting_id = f.fitting_id").
		Joins("JOIN batches b ON f.batch_id = b.batch_id").
		Joins("JOIN lots l ON b.lot_id = l.lot_id").
		Joins("JOIN orders o ON b.order_id = o.order_id").
		Joins("JOIN vendors v ON o.vendor_id = v.vendor_id").
		Order("mr.reported_at DESC").
		Scan(&views).Error
	if err != nil {
		return nil, dbError("Failed to load maintenance records", err)
	}
	return views, nil
}

func (l *ScopeLoader) optionalVendor(db *gorm.DB, vendorID string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := db.Where("vendor_id = ?", vendorID).Limit(1).Find(&vendor).Error; err != nil {
		return nil, dbError("Failed to load vendor", err)
	}
	if vendor.VendorID == "" {
		return nil, nil
	}
	return &vendor, nil
}

func (l *ScopeLoader) batchesForLots(db *gorm.DB, lotIDs []string) ([]models.Batch, error) {
	batches := []models.Batch{}
	if len(lotIDs) == 0 {
		return batches, nil
	}
	if err := db.Where("lot_id IN ?", lotIDs).Order("lot_id, batch_number").Find(&batches).Error; err != nil {
		return nil, dbError("Failed to load batches", err)
	}
	return batches, nil
}

func (l *ScopeLoader) fittingsForBatches(db *gorm.DB, ids []string) ([]models.Fitting, []models.InstallationRecord, []models.MaintenanceRecord, error) {
	fittings := []models.Fitting{}
	installations := []models.InstallationRecord{}
	maintenances := []models.MaintenanceRecord{}
	if len(ids) == 0 {
		return fittings, installations, maintenances, nil
	}

	if err := db.Where("batch_id IN ?", ids).Order("batch_id, item_number").Find(&fittings).Error; err != nil {
		return nil, nil, nil, dbError("Failed to load fittings", err)
	}
	if len(fittings) == 0 {
		return fittings, installations, maintenances, nil
	}

	fittingIDs := lo.Map(fittings, func(f models.Fitting, _ int) string { return f.FittingID })
	if err := db.Where("fitting_id IN ?", fittingIDs).Order("installed_at DESC").Find(&installations).Error; err != nil {
		return nil, nil, nil, dbError("Failed to load installation records", err)
	}
	if err := db.Where("fitting_id IN ?", fittingIDs).Order("reported_at DESC").Find(&maintenances).Error; err != nil {
		return nil, nil, nil, dbError("Failed to load maintenance records", err)
	}
	return fittings, installations, maintenances, nil
}

func batchIDs(batches []models.Batch) []string {
	return lo.Map(batches, func(b models.Batch, _ int) string { return b.BatchID })
}
