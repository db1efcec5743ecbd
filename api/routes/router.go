package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pgroom/pgroom-backend/api/controllers"
	paymentcontrollers "github.com/pgroom/pgroom-backend/api/controllers/payments"
	webhookcontrollers "github.com/pgroom/pgroom-backend/api/controllers/webhooks"
	"github.com/pgroom/pgroom-backend/api/middleware"
	razorpaywebhook "github.com/pgroom/pgroom-backend/internal/webhooks/razorpay"
	"github.com/pgroom/pgroom-backend/pkg/auth"
	"github.com/pgroom/pgroom-backend/pkg/config"
	"github.com/pgroom/pgroom-backend/pkg/db"
	"github.com/pgroom/pgroom-backend/pkg/logger"
	"github.com/pgroom/pgroom-backend/pkg/metrics"
	"github.com/pgroom/pgroom-backend/pkg/razorpay"
	"github.com/pgroom/pgroom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	verifier *auth.Verifier,
	razorpayClient *razorpay.Client,
	paymentService paymentcontrollers.PaymentService,
	webhookService webhookcontrollers.RazorpayWebhookService,
	webhookGuard *razorpaywebhook.IdempotencyGuard,
	webhookMetrics *metrics.WebhookMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Webhook deliveries authenticate with the gateway signature, never a
	// bearer token.
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(webhookService, razorpayClient, webhookGuard, webhookMetrics, logg))
	})

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier, logg))

		r.Post("/orders", paymentcontrollers.CreateOrder(paymentService, razorpayClient.KeyID(), logg))
		r.Post("/confirm", paymentcontrollers.ConfirmPayment(paymentService, logg))
		r.Get("/", paymentcontrollers.ListPayments(paymentService, logg))
		r.Get("/{paymentID}", paymentcontrollers.GetPayment(paymentService, logg))

		r.With(middleware.RequireRole(auth.RoleOwner, logg)).
			Post("/{paymentID}/refund", paymentcontrollers.RefundPayment(paymentService, logg))
	})

	return r
}
