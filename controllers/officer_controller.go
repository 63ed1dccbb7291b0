package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
)

func oversightService() *services.OversightService {
	return services.NewOversightService(config.GetDB())
}

// OfficerDashboardSummary handles GET /api/officer/dashboard-summary
func OfficerDashboardSummary(c *gin.Context) {
	summary, err := oversightService().Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"vendors":    summary.Vendors,
		"orders":     summary.Orders,
		"items":      summary.Items,
		"completed":  summary.Completed,
		"inProgress": summary.InProgress,
		"pending":    summary.Pending,
	})
}

// ListVendors handles GET /api/officer/vendors
func ListVendors(c *gin.Context) {
	vendors, err := oversightService().Vendors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": vendors})
}

// ListOrders handles GET /api/officer/orders
func ListOrders(c *gin.Context) {
	orders, err := oversightService().Orders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": orders})
}

// ListInstalledFittings handles GET /api/officer/fittings
func ListInstalledFittings(c *gin.Context) {
	fittings, err := oversightService().InstalledFittings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": fittings})
}
