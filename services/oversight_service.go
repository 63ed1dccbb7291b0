package services

import (
	"context"
	"time"

	"github.com/vaibhavvyavahare/railtrace/models"
	"gorm.io/gorm"
)

// VendorListing is a vendor as shown to officers
type VendorListing struct {
	VendorID   string  `json:"vendor_id"`
	VendorName string  `json:"vendor_name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Address    *string `json:"address"`
}

// OrderListing is an order joined with its vendor's name
type OrderListing struct {
	models.Order
	VendorName string `json:"vendor_name"`
}

// InstalledFitting is one row of the officer's installed items list
type InstalledFitting struct {
	FittingID          string    `json:"fitting_id"`
	InstalledAt        time.Time `json:"installed_at"`
	LocationLat        *float64  `json:"location_lat"`
	LocationLong       *float64  `json:"location_long"`
	InstallationStatus string    `json:"installation_status"`
	InstallerName      *string   `json:"installer_name"`
}

// DashboardSummary holds the officer dashboard counters
type DashboardSummary struct {
	Vendors    int64 `json:"vendors"`
	Orders     int64 `json:"orders"`
	Items      int64 `json:"items"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"inProgress"`
	Pending    int64 `json:"pending"`
}

// OversightService serves the officer's read-only views
type OversightService struct {
	db *gorm.DB
}

// NewOversightService creates an oversight service
func NewOversightService(db *gorm.DB) *OversightService {
	return &OversightService{db: db}
}

// Vendors lists every vendor without credentials
func (s *OversightService) Vendors(ctx context.Context) ([]VendorListing, error) {
	vendors := []VendorListing{}
	if err := s.db.WithContext(ctx).
		Model(&models.Vendor{}).
		Select("vendor_id, vendor_name, email, phone, address").
		Order("vendor_id").
		Scan(&vendors).Error; err != nil {
		return nil, dbError("Error fetching vendor list", err)
	}
	return vendors, nil
}

// Orders lists every order with its vendor's name, newest id first
func (s *OversightService) Orders(ctx context.Context) ([]OrderListing, error) {
	orders := []OrderListing{}
	if err := s.db.WithContext(ctx).
		Table("orders o").
		Select("o.*, v.vendor_name").
		Joins("JOIN vendors v ON o.vendor_id = v.vendor_id").
		Order("o.order_id DESC").
		Scan(&orders).Error; err != nil {
		return nil, dbError("Error fetching order list", err)
	}
	return orders, nil
}

// InstalledFittings lists installation records with the installer's name, most recent first
func (s *OversightService) InstalledFittings(ctx context.Context) ([]InstalledFitting, error) {
	rows := []InstalledFitting{}
	if err := s.db.WithContext(ctx).
		Table("installation_records ir").
		Select(`ir.fitting_id, ir.installed_at, ir.location_lat, ir.location_long,
			ir.status AS installation_status, w.worker_name AS installer_name`).
		Joins("LEFT JOIN workers w ON ir.worker_id = w.worker_id").
		Order("ir.installed_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, dbError("Error fetching installed items list", err)
	}
	return rows, nil
}

// Summary counts vendors, orders and installations, and orders per status
func (s *OversightService) Summary(ctx context.Context) (*DashboardSummary, error) {
	db := s.db.WithContext(ctx)
	summary := &DashboardSummary{}

	if err := db.Model(&models.Vendor{}).Count(&summary.Vendors).Error; err != nil {
		return nil, dbError("Error fetching dashboard summary data", err)
	}
	if err := db.Model(&models.Order{}).Count(&summary.Orders).Error; err != nil {
		return nil, dbError("Error fetching dashboard summary data", err)
	}
	if err := db.Model(&models.InstallationRecord{}).Count(&summary.Items).Error; err != nil {
		return nil, dbError("Error fetching dashboard summary data", err)
	}

	var statusCounts []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, dbError("Error fetching dashboard summary data", err)
	}
	for _, row := range statusCounts {
		switch row.Status {
		case models.OrderStatusCompleted:
			summary.Completed = row.Count
		case models.OrderStatusInProcess:
			summary.InProgress = row.Count
		case models.OrderStatusPending:
			summary.Pending = row.Count
		}
	}
	return summary, nil
}
