package controllers

import (
	"net/http"

	"go.uber.org/multierr"

	"github.com/mleong/mangobox-backend/api/responses"
	"github.com/mleong/mangobox-backend/pkg/config"
	"github.com/mleong/mangobox-backend/pkg/db"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
	pkgredis "github.com/mleong/mangobox-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MangoBox-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MangoBox-Env", cfg.App.Env)

		var errs error
		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "postgres unreachable"))
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				errs = multierr.Append(errs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
			}
		}
		if errs != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "readiness check failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
