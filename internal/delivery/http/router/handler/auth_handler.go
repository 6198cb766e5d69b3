package handler

import (
	"log/slog"
	"net/http"

	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/delivery/http/middleware"
	"pointshop/internal/delivery/http/response"
	"pointshop/internal/domain/entity"
	"pointshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler serves user and admin sign-in.
type AuthHandler struct {
	uc      usecase.AuthUsecase
	session *middleware.SessionMiddleware
	logger  *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, session *middleware.SessionMiddleware, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:      uc,
		session: session,
		logger:  logger,
	}
}

// Register creates or claims an account and logs the caller in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Handle:          req.Handle,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.signIn(c, user); err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, newUserResponse(user), "Registration successful")
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Handle:   req.Handle,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.signIn(c, user); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newUserResponse(user), "Login successful")
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.session.Clear(c)

	return response.Success(c, http.StatusOK, nil, "Logged out")
}

// Me returns the logged-in user with a fresh balance.
func (h *AuthHandler) Me(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)

	user, err := h.uc.CurrentUser(c.Request().Context(), identity)
	if err != nil {
		if identity.Authenticated() {
			// The user row is gone; drop the handle but keep any admin flag.
			if saveErr := h.session.Save(c, entity.Identity{Admin: identity.Admin}); saveErr != nil {
				return saveErr
			}
		}

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserResponse(user), "")
}

func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req adminLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.uc.AdminLogin(c.Request().Context(), req.Password); err != nil {
		return errors.WithStack(err)
	}

	identity := deliverycontext.GetIdentity(c)
	identity.Admin = true
	if err := h.session.Save(c, identity); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, nil, "Admin login successful")
}

// AdminLogout drops the admin flag and keeps any user login.
func (h *AuthHandler) AdminLogout(c echo.Context) error {
	identity := deliverycontext.GetIdentity(c)
	identity.Admin = false
	if err := h.session.Save(c, identity); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, nil, "Admin logged out")
}

func (h *AuthHandler) signIn(c echo.Context, user *entity.User) error {
	identity := deliverycontext.GetIdentity(c)
	identity.Handle = user.Handle

	return h.session.Save(c, identity)
}
