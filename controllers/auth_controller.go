package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	UserID   string `json:"user_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func authService() *services.AuthService {
	return services.NewAuthService(
		config.GetDB(),
		services.NewTokenIssuer(config.GetConfig()),
		services.GetLoginLimiter(),
	)
}

// Login handles POST /api/auth/login. The id prefix selects the vendor,
// officer or worker table.
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := authService().Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{}
	for k, v := range result.Profile {
		body[k] = v
	}
	body["message"] = "Login successful"
	body["user_type"] = result.UserType
	body["token"] = result.Token
	body["expires_at"] = result.ExpiresAt
	c.JSON(http.StatusOK, withSuccess(body))
}

// RegisterVendor handles POST /api/vendor/register
func RegisterVendor(c *gin.Context) {
	var in services.RegisterVendorInput
	if !bindJSON(c, &in) {
		return
	}

	vendor, err := authService().RegisterVendor(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Vendor registered successfully",
		"vendor":  gin.H{"vendor_id": vendor.VendorID},
	})
}

// CreateWorker handles POST /api/officer/workers
func CreateWorker(c *gin.Context) {
	var in services.CreateWorkerInput
	if !bindJSON(c, &in) {
		return
	}

	worker, err := authService().CreateWorker(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Worker created successfully",
		"worker":  worker,
	})
}

// CreateOfficer handles POST /api/officer/officers
func CreateOfficer(c *gin.Context) {
	var in services.CreateOfficerInput
	if !bindJSON(c, &in) {
		return
	}

	officer, err := authService().CreateOfficer(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Officer created successfully",
		"officer": officer,
	})
}
