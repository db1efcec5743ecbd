package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pgroom/pgroom-backend/api/responses"
	razorpaywebhook "github.com/pgroom/pgroom-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/pgroom/pgroom-backend/pkg/errors"
	"github.com/pgroom/pgroom-backend/pkg/logger"
	"github.com/pgroom/pgroom-backend/pkg/metrics"
	"github.com/pgroom/pgroom-backend/pkg/razorpay"
)

const (
	signatureHeader = "X-Razorpay-Signature"
	eventIDHeader   = "X-Razorpay-Event-Id"
)

type RazorpayWebhookService interface {
	HandleEvent(ctx context.Context, event *razorpaywebhook.Event) error
}

type razorpayWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type secretProvider interface {
	WebhookSecret() string
}

// RazorpayWebhook authenticates and dispatches gateway event deliveries. The
// signature covers the raw body, so the body is read before any decoding.
func RazorpayWebhook(svc RazorpayWebhookService, secrets secretProvider, guard razorpayWebhookGuard, wm *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}
		if secrets == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}
		if guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		signature := r.Header.Get(signatureHeader)
		if signature == "" {
			wm.IncSignatureFailure()
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSecurity, "webhook signature missing"))
			return
		}

		if !razorpay.VerifyWebhookSignature(payload, signature, secrets.WebhookSecret()) {
			wm.IncSignatureFailure()
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSecurity, "webhook signature mismatch"))
			return
		}

		var event razorpaywebhook.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook payload"))
			return
		}

		// Deliveries without an event id header dedupe on the signature,
		// which is stable for a given body.
		eventID := r.Header.Get(eventIDHeader)
		if eventID == "" {
			eventID = signature
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, eventID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "check idempotency"))
			return
		}
		if alreadyProcessed {
			responses.WriteSuccess(w, nil)
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			_ = guard.Delete(ctx, eventID)
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithField(ctx, "event", event.Event), "razorpay webhook processed")
		}
		responses.WriteSuccess(w, nil)
	}
}
