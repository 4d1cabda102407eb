package controllers

import (
	"net/http"

	"github.com/RMarques88/gelatoprod-backend/api/responses"
	"github.com/RMarques88/gelatoprod-backend/pkg/config"
	"github.com/RMarques88/gelatoprod-backend/pkg/db"
	pkgerrors "github.com/RMarques88/gelatoprod-backend/pkg/errors"
	"github.com/RMarques88/gelatoprod-backend/pkg/logger"
)

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

// HealthReady checks the database before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dbP == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database not wired"))
			return
		}
		if err := dbP.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database not reachable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"status": "ready",
			"env":    cfg.App.Env,
		})
	}
}
