package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/pgroom/pgroom-backend/api/responses"
	"github.com/pgroom/pgroom-backend/pkg/config"
	"github.com/pgroom/pgroom-backend/pkg/db"
	"github.com/pgroom/pgroom-backend/pkg/logger"
	"github.com/pgroom/pgroom-backend/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PGRoom-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing stores; any failure flips the response to 503
// so the orchestrator stops routing traffic here.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PGRoom-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["database"] = pingStatus(ctx, func(ctx context.Context) error {
			if dbP == nil {
				return nil
			}
			return dbP.Ping(ctx)
		}, &healthy)
		checks["redis"] = pingStatus(ctx, func(ctx context.Context) error {
			if redisP == nil {
				return nil
			}
			return redisP.Ping(ctx)
		}, &healthy)

		if !healthy {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "checks", checks), "readiness check failed")
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, checks)
			return
		}

		responses.WriteSuccess(w, checks)
	}
}

func pingStatus(ctx context.Context, ping func(context.Context) error, healthy *bool) string {
	if err := ping(ctx); err != nil {
		*healthy = false
		return "down"
	}
	return "up"
}
