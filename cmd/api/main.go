package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/pgroom/pgroom-backend/api/routes"
	"github.com/pgroom/pgroom-backend/internal/payments"
	razorpaywebhook "github.com/pgroom/pgroom-backend/internal/webhooks/razorpay"
	"github.com/pgroom/pgroom-backend/pkg/auth"
	"github.com/pgroom/pgroom-backend/pkg/config"
	"github.com/pgroom/pgroom-backend/pkg/db"
	"github.com/pgroom/pgroom-backend/pkg/logger"
	"github.com/pgroom/pgroom-backend/pkg/metrics"
	"github.com/pgroom/pgroom-backend/pkg/migrate"
	"github.com/pgroom/pgroom-backend/pkg/razorpay"
	"github.com/pgroom/pgroom-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	verifier, err := auth.NewVerifier(cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create token verifier", err)
		os.Exit(1)
	}

	razorpayClient, err := razorpay.NewClient(cfg.Razorpay, logg)
	if err != nil {
		logg.Error(ctx, "failed to create razorpay client", err)
		os.Exit(1)
	}

	paymentRepo := payments.NewRepository(dbClient.DB())

	paymentService, err := payments.NewService(payments.ServiceParams{
		Logger:  logg,
		Repo:    paymentRepo,
		Gateway: razorpayClient,
		Config:  cfg.Razorpay,
	})
	if err != nil {
		logg.Error(ctx, "failed to create payment service", err)
		os.Exit(1)
	}

	webhookMetrics := metrics.NewWebhookMetrics(prometheus.DefaultRegisterer)

	webhookService, err := razorpaywebhook.NewService(razorpaywebhook.ServiceParams{
		Logger:  logg,
		Repo:    paymentRepo,
		Metrics: webhookMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := razorpaywebhook.NewIdempotencyGuard(redisClient, cfg.Razorpay.IdempotencyTTL, "razorpay")
	if err != nil {
		logg.Error(ctx, "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			verifier,
			razorpayClient,
			paymentService,
			webhookService,
			webhookGuard,
			webhookMetrics,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "api server listening")
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	if err := multierr.Combine(dbClient.Close(), redisClient.Close()); err != nil {
		logg.Error(ctx, "error closing resources", err)
		os.Exit(1)
	}
}
