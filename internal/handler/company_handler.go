package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"peopledesk/internal/company"
	"peopledesk/internal/model"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/apperr"
	"peopledesk/pkg/logger"
	"peopledesk/prometheus"
)

// CompanyHandler serves the central company registry and the user count
// reconciliation endpoints.
type CompanyHandler struct {
	central *gorm.DB
	tenants *tenant.Resolver
	counts  *company.CountService
}

// NewCompanyHandler wires the handler to the central database, the tenant
// resolver and the user count service.
func NewCompanyHandler(central *gorm.DB, tenants *tenant.Resolver, counts *company.CountService) *CompanyHandler {
	return &CompanyHandler{central: central, tenants: tenants, counts: counts}
}

// Create handles company registration: it stores the central record and
// materializes the tenant database with default reference data.
func (h *CompanyHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	// Parse request
	var req struct {
		Name   string `json:"name"`
		Domain string `json:"domain"`
		Plan   string `json:"plan,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse company creation request", zap.Error(err))
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" {
		log.Error("Invalid company data", zap.String("name", req.Name))
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	plan := req.Plan
	if plan == "" {
		plan = "free"
	}

	record := model.Company{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Domain: req.Domain,
		Plan:   plan,
		Active: true,
	}

	// Save to central database
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := h.central.WithContext(c.Request().Context()).Create(&record); result.Error != nil {
		log.Error("Failed to create company", zap.Error(result.Error))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company creation failed"})
	}

	// Materialize the tenant database and seed default reference data
	cols, err := h.tenants.Collections(c.Request().Context(), record.ID)
	if err != nil {
		prometheus.RecordTenantResolution("error")
		log.Error("Failed to resolve tenant database", zap.String("company_id", record.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant provisioning failed"})
	}
	prometheus.RecordTenantResolution("ok")
	prometheus.UpdateCachedTenants(h.tenants.Len())

	if err := tenant.Bootstrap(c.Request().Context(), cols); err != nil {
		log.Error("Failed to bootstrap tenant database", zap.String("company_id", record.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant bootstrap failed"})
	}

	log.Info("Company created",
		zap.String("company_id", record.ID),
		zap.String("name", record.Name))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Company created successfully",
		"company": record,
	})
}

// List returns every company record in the central database.
func (h *CompanyHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var companies []model.Company
	if err := h.central.WithContext(c.Request().Context()).Find(&companies).Error; err != nil {
		log.Error("Failed to list companies", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list companies"})
	}

	return c.JSON(http.StatusOK, echo.Map{"companies": companies})
}

// Get returns one company record by id.
func (h *CompanyHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var record model.Company
	err := h.central.WithContext(c.Request().Context()).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			prometheus.RecordError("not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		log.Error("Failed to get company", zap.String("company_id", id), zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get company"})
	}

	return c.JSON(http.StatusOK, echo.Map{"company": record})
}

// SyncUserCount reconciles one company's cached user count against its tenant
// database.
func (h *CompanyHandler) SyncUserCount(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")
	prometheus.RecordUserCountOperation("sync")

	count, err := h.counts.Sync(c.Request().Context(), id)
	if err != nil {
		prometheus.RecordError(errType(err))
		if errors.Is(err, apperr.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
		}
		if errors.Is(err, apperr.ErrValidation) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed company id"})
		}
		log.Error("Failed to sync user count", zap.String("company_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user count sync failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":    "User count synced",
		"user_count": count,
	})
}

// SyncAllUserCounts reconciles every company, continuing past individual
// failures.
func (h *CompanyHandler) SyncAllUserCounts(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordUserCountOperation("sync_all")

	report, err := h.counts.SyncAll(c.Request().Context())
	if err != nil {
		log.Error("Failed to sync user counts", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user count sync failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User counts synced",
		"synced":  report.Synced,
		"failed":  report.Failed,
	})
}
