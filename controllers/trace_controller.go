package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/utils"
)

// ScanRequest is the body of POST /api/scan-qr. qr_data is the decoded QR
// text, either as a JSON string or as the payload object itself.
type ScanRequest struct {
	QRData json.RawMessage `json:"qr_data" binding:"required"`
}

func traceService() *services.TraceService {
	db := config.GetDB()
	return services.NewTraceService(db, services.NewFileService(db, services.GetS3Service()))
}

// qrText normalizes qr_data to the raw payload text
func qrText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

// ScanQR handles POST /api/scan-qr
func ScanQR(c *gin.Context) {
	var req ScanRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := traceService().Scan(c.Request.Context(), qrText(req.QRData))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// FittingDetails handles GET /api/officer/fitting/:fitting_id
func FittingDetails(c *gin.Context) {
	details, err := traceService().FittingDetails(c.Request.Context(), c.Param("fitting_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    details,
	})
}

// parseRecordID reads a numeric path parameter
func parseRecordID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, utils.BadRequest("VALIDATION_ERROR", "Invalid request data").
			WithDetail(name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
