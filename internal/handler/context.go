package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"peopledesk/pkg/apperr"
	"peopledesk/pkg/jwtutil"
)

// claimsFrom extracts the authenticated claims set by the auth middleware.
func claimsFrom(c echo.Context) (*jwtutil.UserClaims, bool) {
	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	return claims, ok
}

// errType maps a data-access error to a metrics label.
func errType(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrValidation):
		return "validation"
	case errors.Is(err, apperr.ErrNotConnected):
		return "not_connected"
	default:
		return "db_error"
	}
}
