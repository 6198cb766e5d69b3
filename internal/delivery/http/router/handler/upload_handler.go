package handler

import (
	"log/slog"
	"net/http"

	"pointshop/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UploadHandler streams stored product images.
type UploadHandler struct {
	images service.ImageStorage
	logger *slog.Logger
}

func NewUploadHandler(images service.ImageStorage, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{images: images, logger: logger}
}

func (h *UploadHandler) Serve(c echo.Context) error {
	r, contentType, err := h.images.Open(c.Request().Context(), c.Param("name"))
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")

	return c.Stream(http.StatusOK, contentType, r)
}
