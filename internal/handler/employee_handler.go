package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"peopledesk/internal/company"
	"peopledesk/internal/model"
	"peopledesk/internal/softdelete"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/apperr"
	"peopledesk/pkg/logger"
	"peopledesk/prometheus"
)

// EmployeeHandler serves tenant-scoped employee endpoints. Soft deletes and
// restores keep the central user count in step through the count service.
type EmployeeHandler struct {
	tenants *tenant.Resolver
	counts  *company.CountService
}

// NewEmployeeHandler wires the handler to the tenant resolver and user count
// service.
func NewEmployeeHandler(tenants *tenant.Resolver, counts *company.CountService) *EmployeeHandler {
	return &EmployeeHandler{tenants: tenants, counts: counts}
}

// collections resolves the caller's tenant collections from the claims set by
// the auth and tenant-context middleware.
func (h *EmployeeHandler) collections(c echo.Context) (*tenant.Collections, string, error) {
	claims, ok := claimsFrom(c)
	if !ok {
		return nil, "", errors.New("authentication required")
	}
	cols, err := h.tenants.Collections(c.Request().Context(), claims.CompanyID)
	if err != nil {
		prometheus.RecordTenantResolution("error")
		return nil, "", err
	}
	prometheus.RecordTenantResolution("ok")
	prometheus.UpdateCachedTenants(h.tenants.Len())
	return cols, claims.ActorID, nil
}

// Create handles employee creation, incrementing the company user count for
// active hires.
func (h *EmployeeHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	// Parse request
	var req struct {
		EmployeeCode string `json:"employee_code"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		Department   string `json:"department"`
		Designation  string `json:"designation"`
		Status       string `json:"status,omitempty"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse employee creation request", zap.Error(err))
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.FirstName == "" || req.EmployeeCode == "" {
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_code and first_name are required"})
	}

	status := req.Status
	if status == "" {
		status = model.StatusActive
	}

	employee := model.Employee{
		EmployeeCode: req.EmployeeCode,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Department:   req.Department,
		Designation:  req.Designation,
		Status:       status,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := cols.Employees.Create(c.Request().Context(), &employee); err != nil {
		log.Error("Failed to create employee", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "employee creation failed"})
	}

	// Keep the cached company user count in step for active hires
	if employee.Status == model.StatusActive {
		prometheus.RecordUserCountOperation("increment")
		if _, err := h.counts.Increment(c.Request().Context(), cols.TenantID); err != nil {
			// The count drifts instead of failing the hire; sync will heal it
			log.Warn("Failed to increment user count",
				zap.String("company_id", cols.TenantID),
				zap.Error(err))
		}
	}

	log.Info("Employee created",
		zap.String("company_id", cols.TenantID),
		zap.Uint("employee_id", employee.ID),
		zap.String("employee_code", employee.EmployeeCode))

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Employee created successfully",
		"employee": employee,
	})
}

// List returns active employees, optionally filtered by status or department.
func (h *EmployeeHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	// Build filter from query parameters
	filter := softdelete.Filter{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if department := c.QueryParam("department"); department != "" {
		filter["department"] = department
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	employees, err := cols.Employees.FindActive(c.Request().Context(), filter)
	if err != nil {
		log.Error("Failed to list employees", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list employees"})
	}

	return c.JSON(http.StatusOK, echo.Map{"employees": employees})
}

// ListDeleted returns soft-deleted employees for audit and restore flows.
func (h *EmployeeHandler) ListDeleted(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	employees, err := cols.Employees.FindDeleted(c.Request().Context(), softdelete.Filter{})
	if err != nil {
		log.Error("Failed to list deleted employees", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list deleted employees"})
	}

	return c.JSON(http.StatusOK, echo.Map{"employees": employees})
}

// Get returns one active employee by id.
func (h *EmployeeHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	employee, err := cols.Employees.FindOneActive(c.Request().Context(), softdelete.Filter{"id": id})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			prometheus.RecordError("not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		log.Error("Failed to get employee", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get employee"})
	}

	return c.JSON(http.StatusOK, echo.Map{"employee": employee})
}

// Delete soft-deletes an employee, stamping the acting user, and decrements
// the company user count when the employee was active.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, actorID, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}

	// Look at the record first: only active employees affect the user count
	employee, err := cols.Employees.FindOneActive(c.Request().Context(), softdelete.Filter{"id": id})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			prometheus.RecordError("not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "employee not found"})
		}
		log.Error("Failed to get employee", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get employee"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	prometheus.RecordSoftDeleteOperation("employee", "soft_delete")
	if _, err := cols.Employees.SoftDelete(c.Request().Context(), actorID, softdelete.Filter{"id": id}); err != nil {
		log.Error("Failed to soft delete employee", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "employee deletion failed"})
	}

	if employee.Status == model.StatusActive {
		prometheus.RecordUserCountOperation("decrement")
		if _, err := h.counts.Decrement(c.Request().Context(), cols.TenantID); err != nil {
			log.Warn("Failed to decrement user count",
				zap.String("company_id", cols.TenantID),
				zap.Error(err))
		}
	}

	log.Info("Employee soft deleted",
		zap.String("company_id", cols.TenantID),
		zap.Uint64("employee_id", id),
		zap.String("deleted_by", actorID))

	return c.JSON(http.StatusOK, echo.Map{"message": "Employee deleted successfully"})
}

// Restore brings a soft-deleted employee back and re-increments the company
// user count for active employees.
func (h *EmployeeHandler) Restore(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	prometheus.RecordSoftDeleteOperation("employee", "restore")
	if err := cols.Employees.Restore(c.Request().Context(), softdelete.Filter{"id": id}); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			prometheus.RecordError("not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no deleted employee with that id"})
		}
		log.Error("Failed to restore employee", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "employee restore failed"})
	}

	employee, err := cols.Employees.FindOneActive(c.Request().Context(), softdelete.Filter{"id": id})
	if err != nil {
		log.Error("Failed to reload restored employee", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "employee restore failed"})
	}

	if employee.Status == model.StatusActive {
		prometheus.RecordUserCountOperation("increment")
		if _, err := h.counts.Increment(c.Request().Context(), cols.TenantID); err != nil {
			log.Warn("Failed to increment user count",
				zap.String("company_id", cols.TenantID),
				zap.Error(err))
		}
	}

	log.Info("Employee restored",
		zap.String("company_id", cols.TenantID),
		zap.Uint64("employee_id", id))

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Employee restored successfully",
		"employee": employee,
	})
}
