package services

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QRCode is one generated identifier and its rendered image
type QRCode struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// QRService allocates lots, batches and fittings for vendor orders and
// renders their QR codes
type QRService struct {
	db          *gorm.DB
	renderer    QRRenderer
	maxQuantity int
}

// NewQRService creates a QR service backed by db
func NewQRService(db *gorm.DB, renderer QRRenderer) *QRService {
	return &QRService{db: db, renderer: renderer, maxQuantity: DefaultMaxOrderQuantity}
}

// WithMaxQuantity overrides the cap on fittings created for one item_wise order
func (s *QRService) WithMaxQuantity(n int) *QRService {
	if n > 0 {
		s.maxQuantity = n
	}
	return s
}

var forUpdate = clause.Locking{Strength: "UPDATE"}

// GenerateForOrder processes a pending order: it allocates the next lot for
// the vendor (unless the order already owns one), the next batch in that lot,
// and for item_wise orders one fitting per unit. The order moves to
// in_process. Everything happens in one transaction.
func (s *QRService) GenerateForOrder(ctx context.Context, vendorID, orderID string) ([]QRCode, error) {
	var codes []QRCode

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(forUpdate).
			Where("order_id = ? AND vendor_id = ?", orderID, vendorID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return dbError("Failed to load order", err)
		}

		if order.Status != models.OrderStatusPending {
			return ErrOrderAlreadyProcessed
		}
		if !models.IsValidOrderType(order.OrderType) {
			return utils.BadRequest("INVALID_ORDER_TYPE", "Order has an unsupported order type").WithDetail(order.OrderType)
		}
		if order.OrderType == models.OrderTypeItemWise {
			if err := checkQuantity(order.Quantity, s.maxQuantity); err != nil {
				return err
			}
		}

		lot, err := lotForOrder(tx, &order)
		if err != nil {
			return err
		}

		var batchCount int64
		if err := tx.Model(&models.Batch{}).Where("lot_id = ?", lot.LotID).Count(&batchCount).Error; err != nil {
			return dbError("Failed to count batches", err)
		}
		batchNumber := int(batchCount) + 1
		batch := models.Batch{
			BatchID:     models.BatchIDFor(lot.LotID, batchNumber),
			LotID:       lot.LotID,
			OrderID:     order.OrderID,
			BatchNumber: batchNumber,
		}

		switch order.OrderType {
		case models.OrderTypeBatchWise:
			codes, err = s.createBatchWise(tx, &order, &batch)
		case models.OrderTypeItemWise:
			codes, err = s.createItemWise(tx, &order, &batch)
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusInProcess).Error; err != nil {
			return dbError("Failed to update order status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("vendor_id", vendorID).
		Str("order_id", orderID).
		Int("qr_codes", len(codes)).
		Msg("qr codes generated")
	return codes, nil
}

// lotForOrder returns the order's lot, creating the vendor's next lot when
// the order has none. The vendor row is locked first so that two orders of
// the same vendor cannot read the same maximum lot number.
func lotForOrder(tx *gorm.DB, order *models.Order) (*models.Lot, error) {
	var lot models.Lot
	err := tx.Clauses(forUpdate).Where("order_id = ?", order.OrderID).First(&lot).Error
	if err == nil {
		return &lot, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbError("Failed to load lot", err)
	}

	var vendor models.Vendor
	if err := tx.Clauses(forUpdate).Where("vendor_id = ?", order.VendorID).First(&vendor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorNotFound
		}
		return nil, dbError("Failed to lock vendor", err)
	}

	var lotNumbers []int
	if err := tx.Model(&models.Lot{}).Clauses(forUpdate).
		Where("vendor_id = ?", order.VendorID).
		Pluck("lot_number", &lotNumbers).Error; err != nil {
		return nil, dbError("Failed to read lot numbers", err)
	}

	next := lo.Max(lotNumbers) + 1
	orderID := order.OrderID
	lot = models.Lot{
		LotID:     models.LotIDFor(order.VendorID, next),
		VendorID:  order.VendorID,
		LotNumber: next,
		OrderID:   &orderID,
	}
	if err := tx.Create(&lot).Error; err != nil {
		return nil, dbError("Failed to create lot", err)
	}
	return &lot, nil
}

func (s *QRService) createBatchWise(tx *gorm.DB, order *models.Order, batch *models.Batch) ([]QRCode, error) {
	payload := batchPayload(order, batch.BatchID)
	qrText, err := EncodeQRPayload(payload)
	if err != nil {
		return nil, err
	}
	batch.QRData = &qrText

	if err := tx.Create(batch).Error; err != nil {
		return nil, dbError("Failed to create batch", err)
	}

	url, err := s.renderer.DataURL(payload)
	if err != nil {
		return nil, utils.Internal("QR_RENDER_ERROR", "Failed to render QR code", err)
	}
	return []QRCode{{ID: batch.BatchID, URL: url}}, nil
}

func (s *QRService) createItemWise(tx *gorm.DB, order *models.Order, batch *models.Batch) ([]QRCode, error) {
	if err := tx.Create(batch).Error; err != nil {
		return nil, dbError("Failed to create batch", err)
	}

	fittings := make([]models.Fitting, 0, order.Quantity)
	for i := 1; i <= order.Quantity; i++ {
		fittings = append(fittings, models.Fitting{
			FittingID:  models.FittingIDFor(batch.BatchID, i),
			ItemNumber: i,
			BatchID:    batch.BatchID,
			Status:     models.FittingStatusNew,
		})
	}
	if err := tx.CreateInBatches(&fittings, 200).Error; err != nil {
		return nil, dbError("Failed to create fittings", err)
	}

	codes := make([]QRCode, 0, len(fittings))
	for _, f := range fittings {
		url, err := s.renderer.DataURL(itemPayload(order, batch.BatchID, f.FittingID))
		if err != nil {
			return nil, utils.Internal("QR_RENDER_ERROR", "Failed to render QR code", err)
		}
		codes = append(codes, QRCode{ID: f.FittingID, URL: url})
	}
	return codes, nil
}

// RenderForOrder re-renders the QR codes of an order that was already processed
func (s *QRService) RenderForOrder(ctx context.Context, vendorID, orderID string) ([]QRCode, error) {
	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.Where("order_id = ? AND vendor_id = ?", orderID, vendorID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, dbError("Failed to load order", err)
	}
	if order.Status == models.OrderStatusPending {
		return nil, ErrOrderNotProcessed
	}

	var batches []models.Batch
	if err := db.Where("order_id = ?", order.OrderID).Order("batch_number").Find(&batches).Error; err != nil {
		return nil, dbError("Failed to load batches", err)
	}

	var codes []QRCode
	for _, b := range batches {
		if order.OrderType == models.OrderTypeBatchWise {
			url, err := s.renderer.DataURL(batchPayload(&order, b.BatchID))
			if err != nil {
				return nil, utils.Internal("QR_RENDER_ERROR", "Failed to render QR code", err)
			}
			codes = append(codes, QRCode{ID: b.BatchID, URL: url})
			continue
		}

		var fittings []models.Fitting
		if err := db.Where("batch_id = ?", b.BatchID).Order("item_number").Find(&fittings).Error; err != nil {
			return nil, dbError("Failed to load fittings", err)
		}
		for _, f := range fittings {
			url, err := s.renderer.DataURL(itemPayload(&order, b.BatchID, f.FittingID))
			if err != nil {
				return nil, utils.Internal("QR_RENDER_ERROR", "Failed to render QR code", err)
			}
			codes = append(codes, QRCode{ID: f.FittingID, URL: url})
		}
	}
	return codes, nil
}

// CompleteOrder moves an in_process order to completed
func (s *QRService) CompleteOrder(ctx context.Context, vendorID, orderID string) (*models.Order, error) {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).
			Where("order_id = ? AND vendor_id = ?", orderID, vendorID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return dbError("Failed to load order", err)
		}

		if order.Status != models.OrderStatusInProcess {
			return ErrInvalidTransition.WithDetail(order.Status + " -> " + models.OrderStatusCompleted)
		}

		if err := tx.Model(&order).Update("status", models.OrderStatusCompleted).Error; err != nil {
			return dbError("Failed to update order status", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPrinted records that a batch label or a fitting label has been printed.
// Only identifiers belonging to the vendor's orders are accepted.
func (s *QRService) MarkPrinted(ctx context.Context, vendorID, batchID, fittingID string) error {
	db := s.db.WithContext(ctx)
	vendorBatches := db.Model(&models.Batch{}).
		Select("batches.batch_id").
		Joins("JOIN orders ON orders.order_id = batches.order_id").
		Where("orders.vendor_id = ?", vendorID)

	if fittingID != "" {
		var fitting models.Fitting
		if err := db.Where("fitting_id = ? AND batch_id IN (?)", fittingID, vendorBatches).First(&fitting).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFittingNotFound
			}
			return dbError("Failed to load fitting", err)
		}
		if fitting.Status != models.FittingStatusNew && fitting.Status != models.FittingStatusPrinted {
			return ErrInvalidTransition.WithDetail(fitting.Status + " -> " + models.FittingStatusPrinted)
		}
		if err := db.Model(&fitting).Update("status", models.FittingStatusPrinted).Error; err != nil {
			return dbError("Failed to update fitting", err)
		}
		return nil
	}

	result := db.Model(&models.Batch{}).
		Where("batch_id = ? AND batch_id IN (?)", batchID, vendorBatches).
		Updates(map[string]interface{}{"is_qr_printed": true, "printed_at": time.Now()})
	if result.Error != nil {
		return dbError("Failed to update batch", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBatchNotFound
	}
	return nil
}

func batchPayload(order *models.Order, batchID string) models.QRPayload {
	return models.QRPayload{
		Type:     models.QRTypeBatch,
		BatchID:  batchID,
		OrderID:  order.OrderID,
		VendorID: order.VendorID,
	}
}

func itemPayload(order *models.Order, batchID, fittingID string) models.QRPayload {
	return models.QRPayload{
		Type:      models.QRTypeItem,
		FittingID: fittingID,
		BatchID:   batchID,
		OrderID:   order.OrderID,
		VendorID:  order.VendorID,
	}
}
