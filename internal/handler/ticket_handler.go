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

// TicketHandler serves tenant-scoped helpdesk ticket endpoints.
type TicketHandler struct {
	tenants *tenant.Resolver
}

// NewTicketHandler wires the handler to the tenant resolver.
func NewTicketHandler(tenants *tenant.Resolver) *TicketHandler {
	return &TicketHandler{tenants: tenants}
}

func (h *TicketHandler) collections(c echo.Context) (*tenant.Collections, string, error) {
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

// Create handles ticket creation.
func (h *TicketHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	cols, _, err := h.collections(c)
	if err != nil {
		log.Error("Failed to resolve tenant collections", zap.Error(err))
		prometheus.RecordError(errType(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant resolution failed"})
	}

	var req struct {
		Subject     string `json:"subject"`
		Description string `json:"description"`
		Priority    string `json:"priority,omitempty"`
		AssigneeID  *uint  `json:"assignee_id,omitempty"`
		ReporterID  uint   `json:"reporter_id"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse ticket creation request", zap.Error(err))
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Subject == "" || req.ReporterID == 0 {
		prometheus.RecordError("validation")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "subject and reporter_id are required"})
	}

	priority := req.Priority
	if priority == "" {
		priority = "Medium"
	}

	ticket := model.Ticket{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    priority,
		Status:      "Open",
		AssigneeID:  req.AssigneeID,
		ReporterID:  req.ReporterID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := cols.Tickets.Create(c.Request().Context(), &ticket); err != nil {
		log.Error("Failed to create ticket", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket creation failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Ticket created successfully",
		"ticket":  ticket,
	})
}

// List returns active tickets, optionally filtered by status or priority.
func (h *TicketHandler) List(c echo.Context) error {
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
	if priority := c.QueryParam("priority"); priority != "" {
		filter["priority"] = priority
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	tickets, err := cols.Tickets.FindActive(c.Request().Context(), filter)
	if err != nil {
		log.Error("Failed to list tickets", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list tickets"})
	}

	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// Delete soft-deletes a ticket.
func (h *TicketHandler) Delete(c echo.Context) error {
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
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	prometheus.RecordSoftDeleteOperation("ticket", "soft_delete")
	n, err := cols.Tickets.SoftDelete(c.Request().Context(), actorID, softdelete.Filter{"id": id})
	if err != nil {
		log.Error("Failed to soft delete ticket", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket deletion failed"})
	}
	if n == 0 {
		prometheus.RecordError("not_found")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Ticket deleted successfully"})
}

// Restore brings a soft-deleted ticket back.
func (h *TicketHandler) Restore(c echo.Context) error {
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
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	prometheus.RecordSoftDeleteOperation("ticket", "restore")
	if err := cols.Tickets.Restore(c.Request().Context(), softdelete.Filter{"id": id}); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			prometheus.RecordError("not_found")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no deleted ticket with that id"})
		}
		log.Error("Failed to restore ticket", zap.Error(err))
		prometheus.RecordError("db_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket restore failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Ticket restored successfully"})
}
