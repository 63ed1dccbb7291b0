package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/services"
)

const (
	serviceName    = "RailTrace API"
	serviceVersion = "1.0.0"
)

var errDatabaseNotInitialized = errors.New("database connection not initialized")

type configurable interface {
	Configured() bool
}

// HealthCheck handles GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": timestamp(),
		"version":   serviceVersion,
	})
}

// DetailedHealthCheck handles GET /health/detailed. Only a database failure
// makes the service unhealthy.
func DetailedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	body := gin.H{}

	dependencies := gin.H{
		"database":  "connected",
		"sarvam_ai": clientStatus(services.GetSarvamClient()),
		"gemini":    clientStatus(services.GetGeminiClient()),
		"storage":   storageStatus(),
		"redis":     redisStatus(ctx),
	}

	if err := pingDatabase(ctx); err != nil {
		dependencies["database"] = "disconnected"
		body["database_error"] = err.Error()
		status = "unhealthy"
	}

	body["success"] = status == "healthy"
	body["status"] = status
	body["service"] = serviceName
	body["timestamp"] = timestamp()
	body["version"] = serviceVersion
	body["dependencies"] = dependencies

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, body)
}

func pingDatabase(ctx context.Context) error {
	db := config.GetDB()
	if db == nil {
		return errDatabaseNotInitialized
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func clientStatus(client interface{}) string {
	if client == nil {
		return "disabled"
	}
	if cc, ok := client.(configurable); ok && !cc.Configured() {
		return "not_configured"
	}
	return "configured"
}

func storageStatus() string {
	if services.GetS3Service() == nil {
		return "not_configured"
	}
	return "configured"
}

func redisStatus(ctx context.Context) string {
	limiter := services.GetLoginLimiter()
	if _, ok := limiter.(services.NoopLoginLimiter); ok {
		return "not_configured"
	}
	if err := limiter.Ping(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}
