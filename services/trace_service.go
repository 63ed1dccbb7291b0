package services

import (
	"context"
	"errors"
	"time"

	"github.com/vaibhavvyavahare/railtrace/models"
	"gorm.io/gorm"
)

// InstallationSummary is the installation part of a scan result
type InstallationSummary struct {
	InstalledAt  time.Time `json:"installed_at"`
	WorkerID     string    `json:"worker_id"`
	LocationLat  *float64  `json:"location_lat"`
	LocationLong *float64  `json:"location_long"`
	Notes        *string   `json:"notes"`
}

// ScanResult is the traceability context behind a scanned QR code
type ScanResult struct {
	Type          string                     `json:"type"`
	FittingID     string                     `json:"fitting_id,omitempty"`
	BatchID       string                     `json:"batch_id"`
	LotID         string                     `json:"lot_id"`
	ComponentType string                     `json:"component_type"`
	OrderID       string                     `json:"order_id"`
	OrderStatus   string                     `json:"order_status"`
	Status        string                     `json:"status"`
	VendorID      string                     `json:"vendor_id"`
	VendorName    string                     `json:"vendor_name"`
	Installation  *InstallationSummary       `json:"installation"`
	Maintenance   []models.MaintenanceRecord `json:"maintenance"`
}

// FittingDetails is the officer's full view of one fitting
type FittingDetails struct {
	FittingID            string     `json:"fitting_id"`
	ItemNumber           int        `json:"item_number"`
	FittingStatus        string     `json:"fitting_status"`
	LastInspection       *time.Time `json:"last_inspection"`
	BatchID              string     `json:"batch_id"`
	QRData               *string    `json:"qr_data"`
	IsQRPrinted          bool       `json:"is_qr_printed"`
	PrintedAt            *time.Time `json:"printed_at"`
	OrderID              string     `json:"order_id"`
	ComponentType        string     `json:"component_type"`
	Quantity             int        `json:"quantity"`
	OrderStatus          string     `json:"order_status"`
	OrderType            string     `json:"order_type"`
	VendorID             string     `json:"vendor_id"`
	VendorName           string     `json:"vendor_name"`
	InstallationRecordID *uint      `json:"installation_record_id"`
	InstalledAt          *time.Time `json:"installed_at"`
	LocationLat          *float64   `json:"location_lat"`
	LocationLong         *float64   `json:"location_long"`
	InstallationNotes    *string    `json:"installation_notes"`
	InstallerID          *string    `json:"installer_id"`
	InstallerName        *string    `json:"installer_name"`

	MaintenanceRecords []models.MaintenanceRecord `json:"maintenance_records" gorm:"-"`
	AssociatedFiles    []models.File              `json:"associated_files" gorm:"-"`
}

// TraceService resolves scanned QR payloads and fitting histories
type TraceService struct {
	db    *gorm.DB
	files *FileService
}

// NewTraceService creates a trace service
func NewTraceService(db *gorm.DB, files *FileService) *TraceService {
	return &TraceService{db: db, files: files}
}

// Scan decodes a QR payload and returns the batch or item it identifies.
// The payload's ids must agree with the stored records.
func (s *TraceService) Scan(ctx context.Context, qrData string) (*ScanResult, error) {
	payload, err := DecodeQRPayload(qrData)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var batch models.Batch
	if err := db.Where("batch_id = ?", payload.BatchID).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, dbError("Failed to load batch", err)
	}

	var order models.Order
	if err := db.Where("order_id = ?", batch.OrderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, dbError("Failed to load order", err)
	}
	if order.OrderID != payload.OrderID || order.VendorID != payload.VendorID {
		return nil, ErrInvalidQRData.WithDetail("QR payload does not match the recorded batch")
	}

	var vendor models.Vendor
	if err := db.Where("vendor_id = ?", order.VendorID).Limit(1).Find(&vendor).Error; err != nil {
		return nil, dbError("Failed to load vendor", err)
	}

	result := &ScanResult{
		Type:          payload.Type,
		BatchID:       batch.BatchID,
		LotID:         batch.LotID,
		ComponentType: order.ComponentType,
		OrderID:       order.OrderID,
		OrderStatus:   order.Status,
		VendorID:      order.VendorID,
		VendorName:    vendor.VendorName,
		Maintenance:   []models.MaintenanceRecord{},
	}

	if payload.Type == models.QRTypeBatch {
		result.Status = models.FittingStatusNew
		if batch.IsQRPrinted {
			result.Status = models.FittingStatusPrinted
		}
		return result, nil
	}

	var fitting models.Fitting
	if err := db.Where("fitting_id = ? AND batch_id = ?", payload.FittingID, batch.BatchID).First(&fitting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFittingNotFound
		}
		return nil, dbError("Failed to load fitting", err)
	}
	result.FittingID = fitting.FittingID
	result.Status = fitting.Status

	var installs []models.InstallationRecord
	if err := db.Where("fitting_id = ?", fitting.FittingID).Order("installed_at DESC").Limit(1).Find(&installs).Error; err != nil {
		return nil, dbError("Failed to load installation", err)
	}
	if len(installs) > 0 {
		ir := installs[0]
		result.Installation = &InstallationSummary{
			InstalledAt:  ir.InstalledAt,
			WorkerID:     ir.WorkerID,
			LocationLat:  ir.LocationLat,
			LocationLong: ir.LocationLong,
			Notes:        ir.Notes,
		}
	}

	if err := db.Where("fitting_id = ?", fitting.FittingID).Order("reported_at DESC").Find(&result.Maintenance).Error; err != nil {
		return nil, dbError("Failed to load maintenance history", err)
	}
	return result, nil
}

// FittingDetails returns a fitting with its batch, order, vendor, installation,
// maintenance records and attachments
func (s *TraceService) FittingDetails(ctx context.Context, fittingID string) (*FittingDetails, error) {
	db := s.db.WithContext(ctx)

	var rows []FittingDetails
	err := db.Table("fittings AS f").
		Select(`f.fitting_id, f.item_number, f.status AS fitting_status, f.last_inspection,
			b.batch_id, b.qr_data, b.is_qr_printed, b.printed_at,
			o.order_id, o.component_type, o.quantity, o.status AS order_status, o.order_type,
			v.vendor_id, v.vendor_name,
			ir.record_id AS installation_record_id, ir.installed_at, ir.location_lat, ir.location_long,
			ir.notes AS installation_notes, w.worker_id AS installer_id, w.worker_name AS installer_name`).
		Joins("JOIN batches b ON f.batch_id = b.batch_id").
		Joins("JOIN orders o ON b.order_id = o.order_id").
		Joins("JOIN vendors v ON o.vendor_id = v.vendor_id").
		Joins("LEFT JOIN installation_records ir ON f.fitting_id = ir.fitting_id").
		Joins("LEFT JOIN workers w ON ir.worker_id = w.worker_id").
		Where("f.fitting_id = ?", fittingID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, dbError("Failed to load fitting details", err)
	}
	if len(rows) == 0 {
		return nil, ErrFittingNotFound
	}
	details := rows[0]

	details.MaintenanceRecords = []models.MaintenanceRecord{}
	if err := db.Where("fitting_id = ?", fittingID).Order("reported_at DESC").Find(&details.MaintenanceRecords).Error; err != nil {
		return nil, dbError("Failed to load maintenance records", err)
	}

	if details.AssociatedFiles, err = s.files.ListForRelated(ctx, fittingID); err != nil {
		return nil, err
	}
	return &details, nil
}
