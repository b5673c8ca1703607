package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"peopledesk/internal/company"
	"peopledesk/internal/handler"
	"peopledesk/internal/middleware"
	"peopledesk/internal/model"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/config"
	"peopledesk/pkg/database"
	"peopledesk/pkg/jwtutil"
	"peopledesk/pkg/logger"
	"peopledesk/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("peopledesk")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting PeopleDesk backend...", cfg.LogConfig()...)

	// Initialize central database
	central, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize central database", zap.Error(err))
	}
	if err := database.MigrateModels(&model.Company{}); err != nil {
		log.Fatal("Failed to migrate central models", zap.Error(err))
	}
	log.Info("Central database connection established")

	// Initialize the tenant resolver with a bounded handle cache
	tenants := tenant.NewResolver(tenant.Options{
		Open:       database.TenantOpener(cfg),
		MaxEntries: cfg.Tenant.MaxCachedHandles,
		Logger:     log,
	})
	defer tenants.Close()

	// Initialize services
	counts := company.NewCountService(central, tenants, log)

	// Initialize JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize handlers
	companyHandler := handler.NewCompanyHandler(central, tenants, counts)
	employeeHandler := handler.NewEmployeeHandler(tenants, counts)
	leaveHandler := handler.NewLeaveHandler(tenants)
	ticketHandler := handler.NewTicketHandler(tenants)
	departmentHandler := handler.NewDepartmentHandler(tenants)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwtUtil))

	// Company registry and reconciliation - superadmin surface
	companies := api.Group("/companies")
	companies.POST("", companyHandler.Create)
	companies.GET("", companyHandler.List)
	companies.GET("/:id", companyHandler.Get)
	companies.POST("/:id/sync-user-count", companyHandler.SyncUserCount)
	companies.POST("/sync-user-counts", companyHandler.SyncAllUserCounts)

	// Tenant-scoped operations - require company context
	scoped := api.Group("", middleware.RequireTenantContext)

	employees := scoped.Group("/employees")
	employees.POST("", employeeHandler.Create)
	employees.GET("", employeeHandler.List)
	employees.GET("/deleted", employeeHandler.ListDeleted)
	employees.GET("/:id", employeeHandler.Get)
	employees.DELETE("/:id", employeeHandler.Delete)
	employees.POST("/:id/restore", employeeHandler.Restore)

	leaves := scoped.Group("/leaves")
	leaves.POST("", leaveHandler.Create)
	leaves.GET("", leaveHandler.List)
	leaves.DELETE("/:id", leaveHandler.Delete)
	leaves.POST("/:id/restore", leaveHandler.Restore)
	leaves.DELETE("/deleted/purge", leaveHandler.Purge)

	tickets := scoped.Group("/tickets")
	tickets.POST("", ticketHandler.Create)
	tickets.GET("", ticketHandler.List)
	tickets.DELETE("/:id", ticketHandler.Delete)
	tickets.POST("/:id/restore", ticketHandler.Restore)

	departments := scoped.Group("/departments")
	departments.GET("", departmentHandler.List)
	departments.POST("", departmentHandler.Create)

	// Get server port from configuration
	port := cfg.Server.Port

	// Start server
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
