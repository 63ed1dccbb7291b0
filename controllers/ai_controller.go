package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
)

func aiService() *services.AIService {
	return services.NewAIService(services.NewScopeLoader(config.GetDB()), services.GetSarvamClient())
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func respondAnalysis(c *gin.Context, idKey, id string, analysis *services.Analysis) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		idKey:        id,
		"data":       analysis.Data,
		"aiAnalysis": analysis.AIAnalysis,
		"timestamp":  timestamp(),
	})
}

// ownedAIService restricts analyses to the calling vendor's records
func ownedAIService(c *gin.Context) (*services.AIService, bool) {
	owner, ok := vendorOwner(c)
	if !ok {
		return nil, false
	}
	return aiService().WithOwner(owner), true
}

// VendorSummary handles GET /api/ai/vendor/:vendor_id/summary
func VendorSummary(c *gin.Context) {
	vendorID := c.Param("vendor_id")
	owner, ok := vendorOwner(c)
	if !ok || (owner != "" && !requireSelf(c, vendorID)) {
		return
	}
	analysis, err := aiService().WithOwner(owner).VendorSummary(c.Request.Context(), vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondAnalysis(c, "vendorId", vendorID, analysis)
}

// BatchSummary handles GET /api/ai/batch/:batch_id/summary
func BatchSummary(c *gin.Context) {
	batchID := c.Param("batch_id")
	svc, ok := ownedAIService(c)
	if !ok {
		return
	}
	analysis, err := svc.BatchSummary(c.Request.Context(), batchID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondAnalysis(c, "batchId", batchID, analysis)
}

// LotSummary handles GET /api/ai/lot/:lot_id/summary
func LotSummary(c *gin.Context) {
	lotID := c.Param("lot_id")
	svc, ok := ownedAIService(c)
	if !ok {
		return
	}
	analysis, err := svc.LotSummary(c.Request.Context(), lotID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondAnalysis(c, "lotId", lotID, analysis)
}

// PerformanceReport handles GET /api/ai/performance/report
func PerformanceReport(c *gin.Context) {
	report, err := aiService().PerformanceReport(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"report":    report,
		"timestamp": timestamp(),
	})
}

// MaintenanceAlerts handles GET /api/ai/alerts/maintenance
func MaintenanceAlerts(c *gin.Context) {
	alerts, err := aiService().MaintenanceAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"alerts":    alerts,
		"timestamp": timestamp(),
	})
}
