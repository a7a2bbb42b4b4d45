package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-booking/internal/media"
)

// MediaHandler serves stored poster files.
type MediaHandler struct {
	lib *media.Library
}

func NewMediaHandler(lib *media.Library) *MediaHandler { return &MediaHandler{lib: lib} }

// Poster handles GET /api/storage/posters/:filename.
func (h *MediaHandler) Poster(c echo.Context) error {
	path, err := h.lib.Resolve(c.Param("filename"))
	if err != nil {
		return fail(c, http.StatusNotFound, "Poster not found", nil)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return c.File(path)
}
