package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gocartshop/gocart-api/api/responses"
	pkgauth "github.com/gocartshop/gocart-api/pkg/auth"
	"github.com/gocartshop/gocart-api/pkg/config"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/logger"
)

type sessionChecker interface {
	IsLoggedIn() bool
}

// RequireLogin guards checkout-style routes: the caller must present the
// token minted at login and a session must still be active. This is the
// routing-level gate, not a store invariant; the stores themselves never
// check login state.
func RequireLogin(cfg config.JWTConfig, sessions sessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "login required"))
				return
			}

			claims, err := pkgauth.ParseSessionToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if sessions != nil && !sessions.IsLoggedIn() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUsername, claims.Username)
			if logg != nil {
				ctx = logg.WithUsername(ctx, claims.Username)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
