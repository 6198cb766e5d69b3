package handler

import (
	"log/slog"
	"net/http"

	"pointshop/internal/delivery/http/response"
	"pointshop/internal/domain/service"
	"pointshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AdminHandler serves allow-lists, balances and shop schedules.
type AdminHandler struct {
	uc     usecase.AdminUsecase
	clock  service.Clock
	logger *slog.Logger
}

func NewAdminHandler(uc usecase.AdminUsecase, clock service.Clock, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		uc:     uc,
		clock:  clock,
		logger: logger,
	}
}

func (h *AdminHandler) ListAllowlist(c echo.Context) error {
	entries, err := h.uc.ListAllowlist(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	out := make([]*allowlistEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newAllowlistEntryResponse(e))
	}

	return response.Success(c, http.StatusOK, out, "")
}

func (h *AdminHandler) AddToAllowlist(c echo.Context) error {
	var req allowlistRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	entry, err := h.uc.AddToAllowlist(c.Request().Context(), req.Handle, req.Shop)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAllowlistEntryResponse(entry), "Access granted")
}

func (h *AdminHandler) RemoveFromAllowlist(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.uc.RemoveFromAllowlist(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Access revoked")
}

// AllowAllUsers grants the shop to every existing user.
func (h *AdminHandler) AllowAllUsers(c echo.Context) error {
	added, err := h.uc.AllowAllUsers(c.Request().Context(), c.Param("shop"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int{"added": added}, "")
}

func (h *AdminHandler) RevokeShop(c echo.Context) error {
	removed, err := h.uc.RevokeShop(c.Request().Context(), c.Param("shop"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"removed": removed}, "")
}

func (h *AdminHandler) SetPoints(c echo.Context) error {
	var req pointsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.uc.SetPoints(c.Request().Context(), req.Handle, *req.Points)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user), "Balance updated")
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, err := h.uc.ListUsers(c.Request().Context(), queryPage(c))
	if err != nil {
		return errors.WithStack(err)
	}

	users := make([]*userResponse, 0, len(page.Users))
	for _, u := range page.Users {
		users = append(users, newUserResponse(u))
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"users": users,
		"page":  pageResponse{Page: page.Page, TotalPages: page.TotalPages, Total: page.Total},
	}, "")
}

func (h *AdminHandler) ListSettings(c echo.Context) error {
	settings, err := h.uc.ListShopSettings(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	now := h.clock.Now()
	out := make([]*shopSettingsResponse, 0, len(settings))
	for _, s := range settings {
		out = append(out, newShopSettingsResponse(s, now))
	}

	return response.Success(c, http.StatusOK, out, "")
}

// SetSchedule takes local datetimes; blank values close the shop.
func (h *AdminHandler) SetSchedule(c echo.Context) error {
	var req scheduleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	settings, err := h.uc.SetShopSchedule(c.Request().Context(), c.Param("shop"), req.OpensAt, req.ClosesAt)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newShopSettingsResponse(settings, h.clock.Now()), "Schedule saved")
}
