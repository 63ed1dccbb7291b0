package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/middleware"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/tests/testutil"
)

func serve(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

// TestDetailedHealthIntegration reports the database and the optional dependencies
func TestDetailedHealthIntegration(t *testing.T) {
	router := newTestRouter(t)

	w := serve(router, http.MethodGet, "/health/detailed", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	response := decode(t, w)
	assert.Equal(t, "healthy", response["status"])
	deps := response["dependencies"].(map[string]interface{})
	assert.Equal(t, "connected", deps["database"])
}

// TestHealthEndpointMethod checks that only GET is routed
func TestHealthEndpointMethod(t *testing.T) {
	router := newTestRouter(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		w := serve(router, method, "/health", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, "%s should not be routed", method)
	}
}

// TestProtectedRoutesRequireToken runs the real token middleware
func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/scan-qr"},
		{http.MethodPost, "/api/vendor/orders"},
		{http.MethodPost, "/api/worker/installation"},
		{http.MethodGet, "/api/officer/dashboard-summary"},
		{http.MethodGet, "/api/files/F-1"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := serve(router, tc.method, tc.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "INVALID_TOKEN", decode(t, w)["code"])
		})
	}
}

// TestLoginThenCreateOrderIntegration logs a vendor in and uses the issued token
func TestLoginThenCreateOrderIntegration(t *testing.T) {
	router := newTestRouter(t)
	db := config.GetDB()
	testutil.CreateVendor(t, db, "V-INT")

	w := serve(router, http.MethodPost, "/api/auth/login", gin.H{
		"user_id":  "V-INT",
		"password": testutil.DefaultPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = serve(router, http.MethodPost, "/api/vendor/orders", gin.H{
		"order_id":       "ORD-INT",
		"vendor_id":      "V-INT",
		"component_type": "elastic_rail_clip",
		"order_type":     models.OrderTypeBatchWise,
		"quantity":       10,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var stored models.Order
	require.NoError(t, db.First(&stored, "order_id = ?", "ORD-INT").Error)
	assert.Equal(t, models.OrderStatusPending, stored.Status)

	w = serve(router, http.MethodGet, "/api/officer/vendors", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decode(t, w)["code"])
}

// TestRequestIDHeader echoes a caller supplied request id and generates one otherwise
func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "trace-42", w.Header().Get(middleware.RequestIDHeader))

	w = serve(router, http.MethodGet, "/health", nil, "")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

// TestAIAndReportRoutesRoleBoundaries keeps workers out of analyses and
// limits vendors to their own records
func TestAIAndReportRoutesRoleBoundaries(t *testing.T) {
	services.SetSarvamClient(stubCompleter{})
	services.SetGeminiClient(stubSummarizer{})
	t.Cleanup(func() {
		services.SetSarvamClient(nil)
		services.SetGeminiClient(nil)
	})
	router := newTestRouter(t)
	testutil.CreateVendor(t, config.GetDB(), "V-INT")

	worker := testutil.MintToken(t, "W-INT", services.RoleWorker)
	vendor := testutil.MintToken(t, "V-INT", services.RoleVendor)

	testCases := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		token    string
		wantCode int
	}{
		{"worker reads vendor analysis", http.MethodGet, "/api/ai/vendor/V-INT/summary", nil, worker, http.StatusForbidden},
		{"worker lists reports", http.MethodGet, "/api/reports", nil, worker, http.StatusForbidden},
		{"worker generates reports", http.MethodPost, "/api/reports/generate", gin.H{"vendor_id": "V-INT"}, worker, http.StatusForbidden},
		{"worker evaluates alerts", http.MethodPost, "/api/alerts/evaluate", gin.H{"vendor_id": "V-INT"}, worker, http.StatusForbidden},
		{"vendor reads system report", http.MethodGet, "/api/ai/performance/report", nil, vendor, http.StatusForbidden},
		{"vendor reads maintenance analysis", http.MethodGet, "/api/ai/alerts/maintenance", nil, vendor, http.StatusForbidden},
		{"vendor updates alert", http.MethodPatch, "/api/alerts/AL-1", gin.H{"status": "resolved"}, vendor, http.StatusForbidden},
		{"vendor reads another vendor", http.MethodGet, "/api/ai/vendor/V-OTHER/summary", nil, vendor, http.StatusForbidden},
		{"vendor reads own analysis", http.MethodGet, "/api/ai/vendor/V-INT/summary", nil, vendor, http.StatusOK},
		{"vendor lists own reports", http.MethodGet, "/api/reports", nil, vendor, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(router, tc.method, tc.path, tc.body, tc.token)
			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
		})
	}
}
