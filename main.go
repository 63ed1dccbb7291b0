package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/controllers"
	"github.com/vaibhavvyavahare/railtrace/logger"
	"github.com/vaibhavvyavahare/railtrace/middleware"
	"github.com/vaibhavvyavahare/railtrace/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Options{ServiceName: "railtrace-api", Format: "console", Output: os.Stderr})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		ServiceName: "railtrace-api",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	log.Info().Str("env", cfg.GoEnv).Msg("starting RailTrace API server")

	ctx := context.Background()

	if err := config.ConnectDatabase(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.MigrateOnStart {
		sqlDB, err := config.GetDB().DB()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get sql db handle")
		}
		if err := config.RunMigrations(sqlDB); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		version, _ := config.MigrationVersion(sqlDB)
		log.Info().Int64("version", version).Msg("database migration completed successfully")
	}

	initServices(ctx, cfg)

	router := setupRouter(cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// initServices wires the optional collaborators. Storage, Redis and the AI
// clients are only enabled when configured.
func initServices(ctx context.Context, cfg *config.Config) {
	log := logger.L()

	if cfg.BootstrapOfficerID != "" && cfg.BootstrapOfficerPassword != "" {
		auth := services.NewAuthService(config.GetDB(), services.NewTokenIssuer(cfg), nil)
		created, err := auth.EnsureBootstrapOfficer(ctx, cfg.BootstrapOfficerID, cfg.BootstrapOfficerName, cfg.BootstrapOfficerPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create bootstrap officer")
		}
		if created {
			log.Info().Str("officer_id", cfg.BootstrapOfficerID).Msg("bootstrap officer created")
		}
	}

	if cfg.StorageConfigured() {
		if _, err := services.InitS3Service(ctx, cfg); err != nil {
			log.Fatal().Err(err).Msg("failed to initialize S3 service")
		}
		log.Info().Str("bucket", cfg.AWSS3Bucket).Msg("S3 storage initialized")
	} else {
		log.Warn().Msg("S3 storage not configured, file uploads are disabled")
	}

	if _, err := services.InitLoginLimiter(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize login limiter")
	}

	if cfg.SarvamEnabled {
		client := services.NewSarvamClient(cfg)
		services.SetSarvamClient(client)
		if !client.Configured() {
			log.Warn().Msg("SARVAM_API_KEY not set, AI analysis requests will fail")
		}
	}
	if cfg.GeminiEnabled {
		client := services.NewGeminiClient(cfg)
		services.SetGeminiClient(client)
		if !client.Configured() {
			log.Warn().Msg("GEMINI_API_KEY not set, summaries use the fallback text")
		}
	}
}

// setupRouter builds the gin engine with every route. AI routes are only
// registered when their client has been initialized.
func setupRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.RequestLogger(*logger.L()))

	health := router.Group("/health")
	{
		health.GET("", controllers.HealthCheck)
		health.GET("/detailed", controllers.DetailedHealthCheck)
	}

	api := router.Group("/api")
	api.POST("/auth/login", controllers.Login)
	api.POST("/vendor/register", controllers.RegisterVendor)

	protected := api.Group("")
	protected.Use(middleware.EnsureValidToken(cfg))
	{
		protected.POST("/scan-qr", controllers.ScanQR)
		protected.POST("/files", controllers.UploadFile)
		protected.GET("/files/:file_id", controllers.GetFile)
	}

	vendor := protected.Group("/vendor")
	vendor.Use(middleware.RequireRole(services.RoleVendor))
	{
		vendor.POST("/orders", controllers.CreateOrder)
		vendor.GET("/dashboard/:vendor_id", controllers.VendorDashboard)
		vendor.POST("/generate-qr", controllers.GenerateQR)
		vendor.GET("/order/:order_id/qrcodes", controllers.OrderQRCodes)
		vendor.POST("/order/:order_id/complete", controllers.CompleteOrder)
		vendor.POST("/mark-printed", controllers.MarkPrinted)
	}

	worker := protected.Group("/worker")
	worker.Use(middleware.RequireRole(services.RoleWorker))
	{
		worker.POST("/installation", controllers.RecordInstallation)
		worker.POST("/maintenance", controllers.ReportMaintenance)
	}

	officer := protected.Group("/officer")
	officer.Use(middleware.RequireRole(services.RoleOfficer))
	{
		officer.POST("/maintenance", controllers.LogMaintenance)
		officer.PUT("/maintenance/:record_id", controllers.UpdateMaintenance)
		officer.GET("/dashboard-summary", controllers.OfficerDashboardSummary)
		officer.GET("/vendors", controllers.ListVendors)
		officer.GET("/orders", controllers.ListOrders)
		officer.GET("/fittings", controllers.ListInstalledFittings)
		officer.GET("/fitting/:fitting_id", controllers.FittingDetails)
		officer.POST("/workers", controllers.CreateWorker)
		officer.POST("/officers", controllers.CreateOfficer)
	}

	// vendors get their own analyses, reports and alerts; officers see everything
	officerOnly := middleware.RequireRole(services.RoleOfficer)

	if services.GetSarvamClient() != nil {
		ai := protected.Group("/ai")
		ai.Use(middleware.RequireRole(services.RoleOfficer, services.RoleVendor))
		{
			ai.GET("/vendor/:vendor_id/summary", controllers.VendorSummary)
			ai.GET("/batch/:batch_id/summary", controllers.BatchSummary)
			ai.GET("/lot/:lot_id/summary", controllers.LotSummary)
			ai.GET("/performance/report", officerOnly, controllers.PerformanceReport)
			ai.GET("/alerts/maintenance", officerOnly, controllers.MaintenanceAlerts)
		}
	}

	if services.GetGeminiClient() != nil {
		reports := protected.Group("/reports")
		reports.Use(middleware.RequireRole(services.RoleOfficer, services.RoleVendor))
		{
			reports.GET("", controllers.ListReports)
			reports.POST("", controllers.GenerateReports)
			reports.POST("/generate", controllers.GenerateReports)
		}

		alerts := protected.Group("/alerts")
		alerts.Use(middleware.RequireRole(services.RoleOfficer, services.RoleVendor))
		{
			alerts.GET("", controllers.ListAlerts)
			alerts.POST("", controllers.EvaluateAlerts)
			alerts.POST("/evaluate", controllers.EvaluateAlerts)
			alerts.PATCH("/:alert_id", officerOnly, controllers.UpdateAlert)
		}
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	corsCfg.ExposeHeaders = []string{middleware.RequestIDHeader}

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return corsCfg
}
