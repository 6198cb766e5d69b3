package auth

import (
	"time"

	"pointshop/config"
	"pointshop/internal/domain/entity"
	"pointshop/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const sessionIssuer = "pointshop"

// jwtSessionService signs session state as an HS256 JWT.
type jwtSessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionTokenService(cfg *config.Config) (service.SessionTokenService, error) {
	if cfg.Session.Secret == "" {
		return nil, errors.New("session secret must be provided")
	}

	return &jwtSessionService{
		secret: []byte(cfg.Session.Secret),
		ttl:    cfg.Session.TTL,
		now:    time.Now,
	}, nil
}

func (s *jwtSessionService) Issue(identity entity.Identity) (string, error) {
	now := s.now()
	claims := &service.SessionClaims{
		Handle: identity.Handle,
		Admin:  identity.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session")
	}

	return token, nil
}

func (s *jwtSessionService) Parse(token string) (entity.Identity, error) {
	claims := &service.SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return entity.Identity{}, errors.Wrap(err, "invalid session")
	}

	return entity.Identity{Handle: claims.Handle, Admin: claims.Admin}, nil
}

func (s *jwtSessionService) TTL() time.Duration {
	return s.ttl
}
