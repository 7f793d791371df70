package handlers

import (
	"mime"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"github.com/nholden/beacon/internal/storage"
)

// MediaHandler serves uploaded media objects.
type MediaHandler struct {
	media *storage.MediaService
}

// NewMediaHandler creates a MediaHandler.
func NewMediaHandler(media *storage.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Get streams a stored object by name.
func (h *MediaHandler) Get(c echo.Context) error {
	name := c.Param("name")

	rc, err := h.media.Open(c.Request().Context(), name)
	if err != nil {
		return writeError(c, err)
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Stream(http.StatusOK, contentType, rc)
}
