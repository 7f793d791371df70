package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nholden/beacon/internal/domain"
)

// errorResponse is the uniform error body returned by the JSON API.
type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps domain errors to HTTP status codes. Unrecognized errors
// are logged and surface as opaque 500s.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid credentials"})
	case errors.Is(err, domain.ErrNotAuthorized):
		return c.JSON(http.StatusForbidden, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
	case errors.Is(err, domain.ErrEmailExists):
		return c.JSON(http.StatusConflict, errorResponse{Message: "Email already exists"})
	default:
		slog.Error("Unhandled error in handler", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Message: "Internal Server Error"})
	}
}
