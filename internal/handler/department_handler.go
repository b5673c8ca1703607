package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"peopledesk/internal/model"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/logger"
	"peopledesk/prometheus"
)

// DepartmentHandler serves tenant-scoped department endpoints. Departments
// are reference data without soft delete, so they go through the tenant
// database handle directly.
type DepartmentHandler struct {
	tenants *tenant.Resolver
}

// NewDepartmentHandler wires the handler to the tenant resolver.
func NewDepartmentHandler(tenants *tenant.Resolver) *DepartmentHandler {
	return &DepartmentHandler{tenants: tenants}
}

func (h *DepartmentHandler) collections(c echo.Context) (*tenant.Collections, error) {
	claims, ok := claimsFrom(c)
	if !ok {
		return nil, errors.New("authentication required")
	}
	cols, err := h.tenants.Collections(c.Request().Context(), claims.CompanyID)
	if err != nil {
		prometheus.RecordTenantResolution("error")
		return nil, err
	}
	prometheus.RecordTenantResolution("ok")
	prometheus.UpdateCachedTenants(h.tenants.Len())
	return cols, nil
}

// List returns the tenant's departments.
func (h *DepartmentHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var departments []model.Department
	err = cols.DB().WithContext(c.Request().Context()).Order("department asc").Find(&departments).Error
	if err != nil {
		log.Error("Failed to list departments", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list departments"})
	}

	return c.JSON(http.StatusOK, echo.Map{"departments": departments})
}

// Create adds a department to the tenant database.
func (h *DepartmentHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	var req struct {
		Department string `json:"department"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse department creation request", zap.Error(err))
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Department == "" {
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "department is required"})
	}

	department := model.Department{Department: req.Department, Status: "active"}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err = cols.DB().WithContext(c.Request().Context()).Create(&department).Error
	if err != nil {
		log.Error("Failed to create department", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "department creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Department created successfully",
		"department": department,
	})
}
