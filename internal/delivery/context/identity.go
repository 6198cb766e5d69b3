package context

import (
	"pointshop/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// KeyIdentity holds the caller resolved from the session cookie.
const KeyIdentity ContextKey = "identity"

func SetIdentity(c echo.Context, identity entity.Identity) {
	c.Set(string(KeyIdentity), identity)
}

// GetIdentity returns the anonymous identity when no session was resolved.
func GetIdentity(c echo.Context) entity.Identity {
	if identity, ok := c.Get(string(KeyIdentity)).(entity.Identity); ok {
		return identity
	}

	return entity.Identity{}
}
