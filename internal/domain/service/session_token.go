package service

import (
	"time"

	"pointshop/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the signed session payload carried in the session cookie.
type SessionClaims struct {
	Handle string `json:"handle,omitempty"`
	Admin  bool   `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// SessionTokenService issues and verifies opaque session tokens.
type SessionTokenService interface {
	Issue(identity entity.Identity) (string, error)

	// Parse returns the identity stored in token. Expired or tampered tokens are errors.
	Parse(token string) (entity.Identity, error)

	TTL() time.Duration
}
