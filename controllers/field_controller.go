package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
)

func fieldService() *services.FieldService {
	return services.NewFieldService(config.GetDB())
}

// RecordInstallation handles POST /api/worker/installation
func RecordInstallation(c *gin.Context) {
	var in services.InstallationInput
	if !bindJSON(c, &in) {
		return
	}
	if !requireSelf(c, in.WorkerID) {
		return
	}

	record, err := fieldService().RecordInstallation(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Installation recorded successfully",
		"record":  record,
	})
}

// ReportMaintenance handles POST /api/worker/maintenance
func ReportMaintenance(c *gin.Context) {
	var in services.WorkerMaintenanceInput
	if !bindJSON(c, &in) {
		return
	}
	if !requireSelf(c, in.WorkerID) {
		return
	}

	record, err := fieldService().ReportIssue(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Maintenance issue reported successfully",
		"record":  record,
	})
}

// LogMaintenance handles POST /api/officer/maintenance
func LogMaintenance(c *gin.Context) {
	var in services.OfficerMaintenanceInput
	if !bindJSON(c, &in) {
		return
	}
	if !requireSelf(c, in.OfficerID) {
		return
	}

	record, err := fieldService().LogMaintenance(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Maintenance record created successfully",
		"record":  record,
	})
}

// UpdateMaintenance handles PUT /api/officer/maintenance/:record_id
func UpdateMaintenance(c *gin.Context) {
	recordID, ok := parseRecordID(c, "record_id")
	if !ok {
		return
	}
	officerID, ok := currentUser(c)
	if !ok {
		return
	}

	var in services.ResolveInput
	if !bindJSON(c, &in) {
		return
	}

	record, err := fieldService().UpdateRecord(c.Request.Context(), recordID, officerID, in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Maintenance record updated successfully",
		"record":  record,
	})
}
