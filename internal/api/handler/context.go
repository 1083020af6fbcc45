package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobzen/identity-service/internal/core/ports"
)

// ctxCaller extracts the auth claims injected by the Auth middleware.
// Presence of sub and role proves the middleware ran; a token without them
// is structurally valid but operationally unusable.
func ctxCaller(c echo.Context) (ports.Caller, error) {
	sub, _ := c.Get("sub").(string)
	role, _ := c.Get("role").(string)
	if sub == "" || role == "" {
		return ports.Caller{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Caller{ID: sub, Role: role}, nil
}
