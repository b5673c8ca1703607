package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"peopledesk/internal/tenant"
	"peopledesk/pkg/jwtutil"
	"peopledesk/pkg/logger"
)

// RequireTenantContext ensures the authenticated user carries a well-formed
// company id. Tenant id validation belongs here, before any resolver call:
// handlers behind this middleware can trust claims.CompanyID.
func RequireTenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		claims, ok := c.Get("user").(*jwtutil.UserClaims)
		if !ok {
			log.Error("Failed to get user claims from context")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		if claims.CompanyID == "" {
			log.Warn("Company context missing from claims", zap.String("actor_id", claims.ActorID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "company context required"})
		}

		if !tenant.ValidID(claims.CompanyID) {
			log.Warn("Malformed company id in claims", zap.String("company_id", claims.CompanyID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "malformed company id"})
		}

		return next(c)
	}
}
