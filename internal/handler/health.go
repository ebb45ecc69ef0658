package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness check.
func Health(c echo.Context) error { // no dependencies are checked
	return ok(c, http.StatusOK, "API is running", echo.Map{"status": "OK"}) // 200 with the standard envelope
}
