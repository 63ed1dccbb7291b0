package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/utils"
)

// GenerateQRRequest is the body of POST /api/vendor/generate-qr
type GenerateQRRequest struct {
	VendorID string `json:"vendor_id" binding:"required"`
	OrderID  string `json:"order_id" binding:"required"`
}

// MarkPrintedRequest is the body of POST /api/vendor/mark-printed
type MarkPrintedRequest struct {
	BatchID   string `json:"batch_id" binding:"required_without=FittingID"`
	FittingID string `json:"fitting_id"`
}

func qrService() *services.QRService {
	size := 256
	if cfg := config.GetConfig(); cfg != nil && cfg.QRImageSize > 0 {
		size = cfg.QRImageSize
	}
	return services.NewQRService(config.GetDB(), services.NewPNGRenderer(size)).
		WithMaxQuantity(maxOrderQuantity())
}

func orderService() *services.OrderService {
	return services.NewOrderService(config.GetDB()).WithMaxQuantity(maxOrderQuantity())
}

// maxOrderQuantity is the configured cap, 0 keeps the service default
func maxOrderQuantity() int {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg.MaxOrderQuantity
	}
	return 0
}

// CreateOrder handles POST /api/vendor/orders
func CreateOrder(c *gin.Context) {
	var in services.CreateOrderInput
	if !bindJSON(c, &in) {
		return
	}
	if !requireSelf(c, in.VendorID) {
		return
	}

	order, err := orderService().Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// VendorDashboard handles GET /api/vendor/dashboard/:vendor_id
func VendorDashboard(c *gin.Context) {
	vendorID := c.Param("vendor_id")
	if !requireSelf(c, vendorID) {
		return
	}

	dashboard, err := orderService().Dashboard(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"pending":    dashboard.Pending,
		"in_process": dashboard.InProcess,
		"completed":  dashboard.Completed,
	})
}

// GenerateQR handles POST /api/vendor/generate-qr. Lot, batch and fitting
// numbers are allocated in one transaction.
func GenerateQR(c *gin.Context) {
	var req GenerateQRRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireSelf(c, req.VendorID) {
		return
	}

	codes, err := qrService().GenerateForOrder(c.Request.Context(), req.VendorID, req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "QR Codes generated successfully",
		"qr_codes": codes,
	})
}

// OrderQRCodes handles GET /api/vendor/order/:order_id/qrcodes
func OrderQRCodes(c *gin.Context) {
	vendorID, ok := currentUser(c)
	if !ok {
		return
	}

	codes, err := qrService().RenderForOrder(c.Request.Context(), vendorID, c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": c.Param("order_id"),
		"qr_codes": codes,
	})
}

// CompleteOrder handles POST /api/vendor/order/:order_id/complete
func CompleteOrder(c *gin.Context) {
	vendorID, ok := currentUser(c)
	if !ok {
		return
	}

	order, err := qrService().CompleteOrder(c.Request.Context(), vendorID, c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order marked as completed",
		"data":    order,
	})
}

// MarkPrinted handles POST /api/vendor/mark-printed. fitting_id wins when both ids are sent.
func MarkPrinted(c *gin.Context) {
	var req MarkPrintedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.ValidationError(err).WithDetail("Either batch_id or fitting_id is required."))
		return
	}

	vendorID, ok := currentUser(c)
	if !ok {
		return
	}

	if err := qrService().MarkPrinted(c.Request.Context(), vendorID, req.BatchID, req.FittingID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Status updated to printed.",
	})
}
