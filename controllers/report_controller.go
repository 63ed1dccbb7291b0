package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/utils"
)

// ReportQuery filters GET /api/reports
type ReportQuery struct {
	VendorID string `form:"vendor_id"`
	LotID    string `form:"lot_id"`
	BatchID  string `form:"batch_id"`
	Limit    *int   `form:"limit" binding:"omitempty,min=1"`
}

// AlertQuery filters GET /api/alerts
type AlertQuery struct {
	VendorID  string `form:"vendor_id"`
	FittingID string `form:"fitting_id"`
	BatchID   string `form:"batch_id"`
	Status    string `form:"status" binding:"omitempty,oneof=open acknowledged resolved"`
	Limit     *int   `form:"limit" binding:"omitempty,min=1"`
}

// VendorScopeRequest is the body of the report generation and alert evaluation endpoints
type VendorScopeRequest struct {
	VendorID string `json:"vendor_id" binding:"required"`
}

// UpdateAlertRequest is the body of PATCH /api/alerts/:alert_id
type UpdateAlertRequest struct {
	Status string `json:"status" binding:"required,oneof=open acknowledged resolved"`
}

func summarizationService() *services.SummarizationService {
	db := config.GetDB()
	return services.NewSummarizationService(db, services.NewScopeLoader(db), services.GetGeminiClient())
}

func alertService() *services.AlertService {
	return services.NewAlertService(config.GetDB())
}

// ListReports handles GET /api/reports
func ListReports(c *gin.Context) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, utils.ValidationError(err))
		return
	}
	if !scopeToOwner(c, &q.VendorID) {
		return
	}

	reports, err := summarizationService().List(c.Request.Context(), services.ReportFilter{
		VendorID: q.VendorID,
		LotID:    q.LotID,
		BatchID:  q.BatchID,
		Limit:    lo.FromPtr(q.Limit),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": reports})
}

// GenerateReports handles POST /api/reports and POST /api/reports/generate
func GenerateReports(c *gin.Context) {
	var req VendorScopeRequest
	if !bindJSON(c, &req) {
		return
	}
	if !scopeToOwner(c, &req.VendorID) {
		return
	}

	result, err := summarizationService().GenerateForVendor(c.Request.Context(), req.VendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"status":   "ok",
		"vendorId": result.VendorID,
		"created":  result.Created,
	})
}

// ListAlerts handles GET /api/alerts
func ListAlerts(c *gin.Context) {
	var q AlertQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, utils.ValidationError(err))
		return
	}
	if !scopeToOwner(c, &q.VendorID) {
		return
	}

	alerts, err := alertService().List(c.Request.Context(), services.AlertFilter{
		VendorID:  q.VendorID,
		FittingID: q.FittingID,
		BatchID:   q.BatchID,
		Status:    q.Status,
		Limit:     lo.FromPtr(q.Limit),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": alerts})
}

// EvaluateAlerts handles POST /api/alerts and POST /api/alerts/evaluate
func EvaluateAlerts(c *gin.Context) {
	var req VendorScopeRequest
	if !bindJSON(c, &req) {
		return
	}
	if !scopeToOwner(c, &req.VendorID) {
		return
	}

	result, err := alertService().EvaluateForVendor(c.Request.Context(), req.VendorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"status":   "ok",
		"vendorId": result.VendorID,
		"created":  result.Created,
	})
}

// UpdateAlert handles PATCH /api/alerts/:alert_id
func UpdateAlert(c *gin.Context) {
	var req UpdateAlertRequest
	if !bindJSON(c, &req) {
		return
	}

	alert, err := alertService().UpdateStatus(c.Request.Context(), c.Param("alert_id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": alert})
}
