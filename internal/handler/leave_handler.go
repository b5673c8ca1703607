package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"peopledesk/internal/model"
	"peopledesk/internal/softdelete"
	"peopledesk/internal/tenant"
	"peopledesk/pkg/apperr"
	"peopledesk/pkg/logger"
	"peopledesk/prometheus"
)

// LeaveHandler serves tenant-scoped leave request endpoints.
type LeaveHandler struct {
	tenants *tenant.Resolver
}

// NewLeaveHandler wires the handler to the tenant resolver.
func NewLeaveHandler(tenants *tenant.Resolver) *LeaveHandler {
	return &LeaveHandler{tenants: tenants}
}

func (h *LeaveHandler) collections(c echo.Context) (*tenant.Collections, string, error) {
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

// Create handles leave request creation.
func (h *LeaveHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	var req struct {
		EmployeeID uint      `json:"employee_id"`
		LeaveType  string    `json:"leave_type"`
		From       time.Time `json:"from"`
		To         time.Time `json:"to"`
		Days       float64   `json:"days"`
		Reason     string    `json:"reason"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse leave creation request", zap.Error(err))
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.EmployeeID == 0 || req.LeaveType == "" {
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "employee_id and leave_type are required"})
	}

	leave := model.Leave{
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		From:       req.From,
		To:         req.To,
		Days:       req.Days,
		Reason:     req.Reason,
		Status:     "Pending",
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := cols.Leaves.Create(c.Request().Context(), &leave); err != nil {
		log.Error("Failed to create leave", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "leave creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Leave created successfully",
		"leave":   leave,
	})
}

// List returns active leave requests, optionally filtered by employee or
// status.
func (h *LeaveHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	filter := softdelete.Filter{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if employeeID := c.QueryParam("employee_id"); employeeID != "" {
		id, err := strconv.ParseUint(employeeID, 10, 64)
		if err != nil {
			prometheus.RecordError("validation")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid employee id"})
		}
		filter["employee_id"] = id
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	leaves, err := cols.Leaves.FindActive(c.Request().Context(), filter)
	if err != nil {
		log.Error("Failed to list leaves", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list leaves"})
	}

	return c.JSON(http.StatusOK, echo.Map{"leaves": leaves})
}

// Delete soft-deletes a leave request.
func (h *LeaveHandler) Delete(c echo.Context) error {
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
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leave id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	prometheus.RecordSoftDeleteOperation("leave", "soft_delete")
	n, err := cols.Leaves.SoftDelete(c.Request().Context(), actorID, softdelete.Filter{"id": id})
	if err != nil {
		log.Error("Failed to soft delete leave", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "leave deletion failed"})
	}
	if n == 0 {
		prometheus.RecordError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "leave not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Leave deleted successfully"})
}

// Restore brings a soft-deleted leave request back.
func (h *LeaveHandler) Restore(c echo.Context) error {
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
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leave id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	prometheus.RecordSoftDeleteOperation("leave", "restore")
	if err := cols.Leaves.Restore(c.Request().Context(), softdelete.Filter{"id": id}); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			prometheus.RecordError("not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no deleted leave with that id"})
		}
		log.Error("Failed to restore leave", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "leave restore failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Leave restored successfully"})
}

// Purge permanently removes soft-deleted leave requests. Admin only at the
// routing layer; irreversible.
func (h *LeaveHandler) Purge(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	prometheus.RecordSoftDeleteOperation("leave", "purge")
	n, err := cols.Leaves.PurgeDeleted(c.Request().Context(), softdelete.Filter{})
	if err != nil {
		log.Error("Failed to purge deleted leaves", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "leave purge failed"})
	}

	log.Info("Deleted leaves purged",
		zap.String("company_id", cols.TenantID),
		zap.Int64("purged", n))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Deleted leaves purged",
		"purged":  n,
	})
}
