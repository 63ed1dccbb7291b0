package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvyavahare/railtrace/middleware"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/tests/testutil"
)

func TestOfficerViews(t *testing.T) {
	db := setupTestEnv(t)
	testutil.CreateVendor(t, db, "V-1")
	testutil.CreateWorker(t, db, "W-1")
	order := testutil.CreateOrder(t, db, "V-1", "ORD-1", models.OrderTypeItemWise, 1)
	testutil.CreateOrder(t, db, "V-1", "ORD-2", models.OrderTypeBatchWise, 4)
	_, _, fitting := testutil.CreateFittingChain(t, db, order, 1)
	require.NoError(t, db.Model(&order).Update("status", models.OrderStatusInProcess).Error)

	_, err := services.NewFieldService(db).RecordInstallation(context.Background(), services.InstallationInput{
		FittingID: fitting.FittingID, WorkerID: "W-1",
	})
	require.NoError(t, err)

	router := setupTestRouter()
	officer := router.Group("/api/officer", testutil.MockAuth("O-1", services.RoleOfficer), middleware.RequireRole(services.RoleOfficer))
	officer.GET("/dashboard-summary", OfficerDashboardSummary)
	officer.GET("/vendors", ListVendors)
	officer.GET("/orders", ListOrders)
	officer.GET("/fittings", ListInstalledFittings)

	t.Run("dashboard summary", func(t *testing.T) {
		w := performJSON(router, http.MethodGet, "/api/officer/dashboard-summary", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		response := decodeBody(t, w)
		assert.Equal(t, float64(1), response["vendors"])
		assert.Equal(t, float64(2), response["orders"])
		assert.Equal(t, float64(1), response["items"])
		assert.Equal(t, float64(1), response["inProgress"])
		assert.Equal(t, float64(1), response["pending"])
		assert.Equal(t, float64(0), response["completed"])
	})

	t.Run("vendors hide credentials", func(t *testing.T) {
		w := performJSON(router, http.MethodGet, "/api/officer/vendors", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		vendors := decodeBody(t, w)["data"].([]interface{})
		require.Len(t, vendors, 1)
		assert.NotContains(t, vendors[0], "password_hash")
	})

	t.Run("orders", func(t *testing.T) {
		w := performJSON(router, http.MethodGet, "/api/officer/orders", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		orders := decodeBody(t, w)["data"].([]interface{})
		require.Len(t, orders, 2)
		assert.Equal(t, "ORD-2", orders[0].(map[string]interface{})["order_id"])
	})

	t.Run("installed fittings", func(t *testing.T) {
		w := performJSON(router, http.MethodGet, "/api/officer/fittings", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		rows := decodeBody(t, w)["data"].([]interface{})
		require.Len(t, rows, 1)
		assert.Equal(t, fitting.FittingID, rows[0].(map[string]interface{})["fitting_id"])
	})
}

func TestOfficerRoutesRejectVendors(t *testing.T) {
	setupTestEnv(t)
	router := setupTestRouter()
	officer := router.Group("/api/officer", testutil.MockAuth("V-1", services.RoleVendor), middleware.RequireRole(services.RoleOfficer))
	officer.GET("/vendors", ListVendors)

	assertErrorResponse(t, performJSON(router, http.MethodGet, "/api/officer/vendors", nil), http.StatusForbidden, "FORBIDDEN")
}
