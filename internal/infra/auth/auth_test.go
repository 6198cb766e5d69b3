package auth

import (
	"testing"
	"time"

	"pointshop/config"
	"pointshop/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Session.Secret = "test_session_secret_key_very_long_for_testing"
	cfg.Session.TTL = time.Hour
	cfg.Auth.BcryptCost = bcrypt.MinCost

	return cfg
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasher(testConfig())

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, hasher.Check("secret1", hash))
	assert.False(t, hasher.Check("secret2", hash))
	assert.False(t, hasher.Check("secret1", "not-a-hash"))
}

func TestBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.BcryptCost = 99

	h, ok := NewBcryptHasher(cfg).(*bcryptHasher)
	require.True(t, ok)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestSessionTokenService_RoundTrip(t *testing.T) {
	svc, err := NewSessionTokenService(testConfig())
	require.NoError(t, err)

	token, err := svc.Issue(entity.Identity{Handle: "@alice", Admin: true})
	require.NoError(t, err)

	identity, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, entity.Identity{Handle: "@alice", Admin: true}, identity)
	assert.Equal(t, time.Hour, svc.TTL())
}

func TestSessionTokenService_RejectsTamperedAndExpired(t *testing.T) {
	svc, err := NewSessionTokenService(testConfig())
	require.NoError(t, err)

	token, err := svc.Issue(entity.Identity{Handle: "@alice"})
	require.NoError(t, err)

	_, err = svc.Parse(token + "x")
	assert.Error(t, err)

	other := testConfig()
	other.Session.Secret = "another_secret_of_reasonable_length_here"
	otherSvc, err := NewSessionTokenService(other)
	require.NoError(t, err)
	_, err = otherSvc.Parse(token)
	assert.Error(t, err)

	impl, ok := svc.(*jwtSessionService)
	require.True(t, ok)
	impl.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Parse(token)
	assert.Error(t, err)
}

func TestNewSessionTokenService_RequiresSecret(t *testing.T) {
	_, err := NewSessionTokenService(&config.Config{})
	assert.Error(t, err)
}
