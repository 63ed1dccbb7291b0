package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/controllers"
	"github.com/vaibhavvyavahare/railtrace/middleware"
	"github.com/vaibhavvyavahare/railtrace/services"
)

// newRouter mounts the public, vendor, worker and officer routes with real token validation
func newRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", controllers.HealthCheck)

	api := router.Group("/api")
	api.POST("/auth/login", controllers.Login)
	api.POST("/vendor/register", controllers.RegisterVendor)

	protected := api.Group("", middleware.EnsureValidToken(cfg))
	protected.POST("/scan-qr", controllers.ScanQR)
	protected.POST("/files", controllers.UploadFile)
	protected.GET("/files/:file_id", controllers.GetFile)

	vendor := protected.Group("/vendor", middleware.RequireRole(services.RoleVendor))
	vendor.POST("/orders", controllers.CreateOrder)
	vendor.GET("/dashboard/:vendor_id", controllers.VendorDashboard)
	vendor.POST("/generate-qr", controllers.GenerateQR)
	vendor.POST("/mark-printed", controllers.MarkPrinted)
	vendor.POST("/order/:order_id/complete", controllers.CompleteOrder)

	worker := protected.Group("/worker", middleware.RequireRole(services.RoleWorker))
	worker.POST("/installation", controllers.RecordInstallation)
	worker.POST("/maintenance", controllers.ReportMaintenance)

	officer := protected.Group("/officer", middleware.RequireRole(services.RoleOfficer))
	officer.PUT("/maintenance/:record_id", controllers.UpdateMaintenance)
	officer.GET("/dashboard-summary", controllers.OfficerDashboardSummary)
	officer.GET("/fitting/:fitting_id", controllers.FittingDetails)
	officer.POST("/workers", controllers.CreateWorker)

	return router
}

// apiClient talks to the test server as one logged-in user
type apiClient struct {
	baseURL string
	token   string
}

func (c *apiClient) do(method, path string, body interface{}) (*http.Response, map[string]interface{}, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.send(req)
}

func (c *apiClient) send(req *http.Request) (*http.Response, map[string]interface{}, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return resp, nil, err
	}
	return resp, decoded, nil
}
