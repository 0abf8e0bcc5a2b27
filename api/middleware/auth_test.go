package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/gocartshop/gocart-api/pkg/auth"
	"github.com/gocartshop/gocart-api/pkg/config"
)

type stubSession struct {
	active bool
}

func (s stubSession) IsLoggedIn() bool { return s.active }

func jwtCfg() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "gocart", ExpirationMinutes: 60}
}

func protected(t *testing.T, sessions sessionChecker) (http.Handler, *string) {
	t.Helper()
	var seenUsername string
	handler := RequireLogin(jwtCfg(), sessions, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if username, ok := UsernameFromContext(r.Context()); ok {
			seenUsername = username
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	return handler, &seenUsername
}

func TestRequireLoginRejectsMissingToken(t *testing.T) {
	handler, _ := protected(t, stubSession{active: true})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireLoginRejectsGarbageToken(t *testing.T) {
	handler, _ := protected(t, stubSession{active: true})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireLoginRejectsTokenWithoutActiveSession(t *testing.T) {
	handler, _ := protected(t, stubSession{active: false})

	token, err := pkgauth.MintSessionToken(jwtCfg(), time.Now(), "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireLoginSeedsUsername(t *testing.T) {
	handler, seenUsername := protected(t, stubSession{active: true})

	token, err := pkgauth.MintSessionToken(jwtCfg(), time.Now(), "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "alice", *seenUsername)
}

func TestRequireLoginAcceptsBareToken(t *testing.T) {
	// The header is accepted with or without the Bearer prefix.
	handler, _ := protected(t, stubSession{active: true})

	token, err := pkgauth.MintSessionToken(jwtCfg(), time.Now(), "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
