package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocartshop/gocart-api/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "gocart",
		ExpirationMinutes: 60,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	token, err := MintSessionToken(cfg, now, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseSessionToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "gocart", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestMintValidatesConfig(t *testing.T) {
	now := time.Now()

	cfg := testJWTConfig()
	cfg.Secret = ""
	_, err := MintSessionToken(cfg, now, "alice")
	require.Error(t, err)

	cfg = testJWTConfig()
	cfg.Issuer = ""
	_, err = MintSessionToken(cfg, now, "alice")
	require.Error(t, err)

	cfg = testJWTConfig()
	cfg.ExpirationMinutes = 0
	_, err = MintSessionToken(cfg, now, "alice")
	require.Error(t, err)

	_, err = MintSessionToken(testJWTConfig(), now, "")
	require.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintSessionToken(cfg, time.Now(), "alice")
	require.NoError(t, err)

	other := cfg
	other.Secret = "different"
	_, err = ParseSessionToken(other, token)
	require.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintSessionToken(cfg, time.Now(), "alice")
	require.NoError(t, err)

	other := cfg
	other.Issuer = "someone-else"
	_, err = ParseSessionToken(other, token)
	require.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintSessionToken(cfg, time.Now().Add(-2*time.Hour), "alice")
	require.NoError(t, err)

	_, err = ParseSessionToken(cfg, token)
	require.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := ParseSessionToken(testJWTConfig(), "not.a.jwt")
	require.Error(t, err)
}
