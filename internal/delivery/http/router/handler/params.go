package handler

import (
	"strconv"
	"strings"

	domainerrors "pointshop/internal/domain/errors"

	"github.com/labstack/echo/v4"
)

// bind decodes the request into req and runs the registered validator.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request body")
	}

	return c.Validate(req)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerrors.ErrValidationFailed.WithDetails(name + " must be a positive integer")
	}

	return id, nil
}

// queryPage reads ?page=, defaulting to 1. Out of range pages are clamped by the usecase.
func queryPage(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil {
		return 1
	}

	return page
}

func formInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerrors.ErrValidationFailed.WithDetails(name + " must be an integer")
	}

	return v, nil
}

// formBool accepts HTML checkbox values as well as strconv booleans.
func formBool(c echo.Context, name string) bool {
	raw := strings.ToLower(strings.TrimSpace(c.FormValue(name)))
	if raw == "on" || raw == "yes" {
		return true
	}

	v, _ := strconv.ParseBool(raw)

	return v
}
