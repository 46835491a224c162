// Package handler exposes HTTP handlers for the public game API, the admin
// API and asset serving.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health responds with a minimal liveness payload. Load balancers and
// monitoring hit this endpoint to verify the service is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
