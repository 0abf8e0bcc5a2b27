package controllers

import (
	"net/http"

	"github.com/gocartshop/gocart-api/api/responses"
	"github.com/gocartshop/gocart-api/pkg/config"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/kv"
	"github.com/gocartshop/gocart-api/pkg/logger"
)

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

// HealthReady verifies the durable storage backend is reachable.
func HealthReady(cfg *config.Config, logg *logger.Logger, storage kv.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage != nil {
			if err := storage.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
