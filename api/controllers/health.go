package controllers

import (
	"net/http"

	"github.com/ilmekten/shop-backend/api/responses"
	"github.com/ilmekten/shop-backend/pkg/config"
	pkgerrors "github.com/ilmekten/shop-backend/pkg/errors"
	"github.com/ilmekten/shop-backend/pkg/kvstore"
	"github.com/ilmekten/shop-backend/pkg/logger"
	pkgredis "github.com/ilmekten/shop-backend/pkg/redis"
)

const envHeader = "X-Ilmekten-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the durable store and, when configured, redis. Redis is
// optional; a nil client is simply skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, store kvstore.Pinger, redisClient *pkgredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}

		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unreachable"))
				return
			}
			checks["store"] = "ok"
		}
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
			checks["redis"] = "ok"
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
