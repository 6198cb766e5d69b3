package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"pointshop/config"
	deliverycontext "pointshop/internal/delivery/context"
	"pointshop/internal/domain/entity"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SessionMiddleware keeps the caller identity in a signed cookie.
type SessionMiddleware struct {
	tokens     service.SessionTokenService
	cookieName string
	secure     bool
	logger     *slog.Logger
}

func NewSessionMiddleware(tokens service.SessionTokenService, cfg *config.Config, logger *slog.Logger) *SessionMiddleware {
	return &SessionMiddleware{
		tokens:     tokens,
		cookieName: cfg.Session.CookieName,
		secure:     cfg.Session.Secure,
		logger:     logger,
	}
}

// Resolve loads the identity from the session cookie. Requests without a
// valid cookie continue as anonymous and a bad cookie is cleared.
func (m *SessionMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		identity, err := m.tokens.Parse(cookie.Value)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger).
				Debug("Discarding invalid session", slog.Any("error", err))
			m.Clear(c)

			return next(c)
		}

		deliverycontext.SetIdentity(c, identity)

		return next(c)
	}
}

// RequireUser rejects anonymous callers. It must be used after Resolve.
func (m *SessionMiddleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !deliverycontext.GetIdentity(c).Authenticated() {
			return domainerrors.ErrUnauthorized
		}

		return next(c)
	}
}

// RequireAdmin rejects callers whose session lacks the admin flag.
func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !deliverycontext.GetIdentity(c).Admin {
			return domainerrors.ErrForbidden
		}

		return next(c)
	}
}

// Save writes identity to the session cookie and to the current context.
func (m *SessionMiddleware) Save(c echo.Context, identity entity.Identity) error {
	if !identity.Authenticated() && !identity.Admin {
		m.Clear(c)

		return nil
	}

	token, err := m.tokens.Issue(identity)
	if err != nil {
		return errors.Wrap(err, "failed to issue session")
	}

	c.SetCookie(m.cookie(token, time.Now().Add(m.tokens.TTL()), int(m.tokens.TTL().Seconds())))
	deliverycontext.SetIdentity(c, identity)

	return nil
}

// Clear removes the session cookie.
func (m *SessionMiddleware) Clear(c echo.Context) {
	c.SetCookie(m.cookie("", time.Unix(0, 0), -1))
	deliverycontext.SetIdentity(c, entity.Identity{})
}

func (m *SessionMiddleware) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
