package controllers

import (
	"net/http"
	"time"

	"github.com/gocartshop/gocart-api/api/responses"
	"github.com/gocartshop/gocart-api/api/validators"
	"github.com/gocartshop/gocart-api/internal/session"
	pkgauth "github.com/gocartshop/gocart-api/pkg/auth"
	"github.com/gocartshop/gocart-api/pkg/config"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/logger"
	"github.com/gocartshop/gocart-api/pkg/metrics"
)

const tokenHeader = "X-GoCart-Token"

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty"`
}

type userResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserResponse(user *session.User) *userResponse {
	if user == nil {
		return nil
	}
	return &userResponse{Username: user.Username, Email: user.Email}
}

// AuthRegister creates a new account in the registry.
func AuthRegister(svc *session.Service, m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Register(r.Context(), body.Username, body.Email, body.Password); err != nil {
			m.IncRegistration("rejected")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		m.IncRegistration("success")
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"message": "registered successfully",
		})
	}
}

// AuthLogin activates a session and mints the checkout token.
func AuthLogin(svc *session.Service, jwtCfg config.JWTConfig, m *metrics.StorefrontMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Login(r.Context(), body.Username, body.Password)
		if err != nil {
			m.IncLogin("failure")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := pkgauth.MintSessionToken(jwtCfg, time.Now(), user.Username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}

		m.IncLogin("success")
		w.Header().Set(tokenHeader, token)
		responses.WriteSuccess(w, map[string]any{
			"user":    newUserResponse(user),
			"token":   token,
			"message": "logged in successfully",
		})
	}
}

// AuthLogout ends the session. The cart empties as a side effect.
func AuthLogout(svc *session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		if err := svc.Logout(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "logged out successfully"})
	}
}

// AuthSession reports the current session state.
func AuthSession(svc *session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		user, ok := svc.CurrentUser()
		responses.WriteSuccess(w, map[string]any{
			"is_logged_in": ok,
			"user":         newUserResponse(user),
		})
	}
}

// AuthUpdateProfile merges profile changes into the active account.
func AuthUpdateProfile(svc *session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var body updateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), session.UpdateInput{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newUserResponse(user))
	}
}
