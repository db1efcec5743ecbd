package razorpaywebhook

import (
	"context"
	stdErrors "errors"

	"github.com/pgroom/pgroom-backend/internal/payments"
	"github.com/pgroom/pgroom-backend/pkg/db/models"
	"github.com/pgroom/pgroom-backend/pkg/enums"
	"github.com/pgroom/pgroom-backend/pkg/errors"
	"github.com/pgroom/pgroom-backend/pkg/logger"
	"github.com/pgroom/pgroom-backend/pkg/metrics"
)

// Gateway event names this processor understands.
const (
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventOrderPaid         = "order.paid"
)

// Event is the envelope Razorpay posts to the webhook endpoint.
type Event struct {
	Event   string  `json:"event"`
	Payload Payload `json:"payload"`
}

type Payload struct {
	Payment *PaymentWrapper `json:"payment"`
	Order   *OrderWrapper   `json:"order"`
}

type PaymentWrapper struct {
	Entity PaymentEntity `json:"entity"`
}

type PaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Method  string `json:"method"`
}

type OrderWrapper struct {
	Entity OrderEntity `json:"entity"`
}

type OrderEntity struct {
	ID string `json:"id"`
}

type ServiceParams struct {
	Logger  *logger.Logger
	Repo    payments.Repository
	Metrics *metrics.WebhookMetrics
}

// Service applies authenticated gateway events onto payment rows. It always
// acknowledges authentic events; rows it cannot match are counted and
// skipped so the gateway does not retry them forever.
type Service struct {
	logg    *logger.Logger
	repo    payments.Repository
	metrics *metrics.WebhookMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, stdErrors.New("logger is required")
	}
	if params.Repo == nil {
		return nil, stdErrors.New("repo is required")
	}
	return &Service{
		logg:    params.Logger,
		repo:    params.Repo,
		metrics: params.Metrics,
	}, nil
}

// HandleEvent dispatches a single authenticated webhook event. Unknown event
// types are acknowledged without side effects for forward compatibility.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New(errors.CodeValidation, "event is required")
	}

	switch event.Event {
	case EventPaymentAuthorized:
		return s.apply(ctx, event, enums.PaymentStatusAuthorized)
	case EventPaymentCaptured:
		return s.apply(ctx, event, enums.PaymentStatusCaptured)
	case EventPaymentFailed:
		return s.apply(ctx, event, enums.PaymentStatusFailed)
	case EventOrderPaid:
		return s.apply(ctx, event, enums.PaymentStatusCaptured)
	default:
		s.logg.Info(s.logg.WithField(ctx, "event", event.Event), "ignoring unhandled webhook event")
		return nil
	}
}

func (s *Service) apply(ctx context.Context, event *Event, target enums.PaymentStatus) error {
	orderID, entity := extractPayment(event)
	if orderID == "" && (entity == nil || entity.ID == "") {
		return errors.New(errors.CodeValidation, "event payload carries no payment or order id")
	}
	if orderID != "" {
		ctx = s.logg.WithOrderID(ctx, orderID)
	}

	// Payment id is the most specific handle, but a row that has not been
	// confirmed yet only carries its order id, so fall back to that.
	var payment *models.Payment
	var err error
	if entity != nil && entity.ID != "" {
		payment, err = s.repo.FindByPaymentID(ctx, entity.ID)
		if err != nil {
			return errors.Wrap(errors.CodePersistence, err, "loading payment for webhook")
		}
	}
	if payment == nil && orderID != "" {
		payment, err = s.repo.FindByOrderID(ctx, orderID)
		if err != nil {
			return errors.Wrap(errors.CodePersistence, err, "loading payment for webhook")
		}
	}
	if payment == nil {
		// No row to advance. Acknowledge so the gateway stops retrying;
		// the metric keeps the gap visible.
		s.metrics.IncUnmatched(event.Event)
		s.logg.Warn(ctx, "webhook event matched no payment row")
		return nil
	}
	ctx = s.logg.WithPaymentID(ctx, payment.ID)

	updates := map[string]any{}
	if entity != nil && entity.ID != "" {
		updates["razorpay_payment_id"] = entity.ID
	}
	if target != enums.PaymentStatusFailed && entity != nil && entity.Method != "" {
		updates["payment_method"] = enums.NormalizeGatewayMethod(entity.Method)
	}

	applied, err := s.repo.UpdateStatusIf(ctx, payment.ID, target, payments.AllowedPredecessors(target), updates)
	if err != nil {
		return errors.Wrap(errors.CodePersistence, err, "applying webhook status")
	}
	if !applied {
		// Replay or out-of-order delivery; the row already moved on.
		s.logg.Info(ctx, "webhook event left status unchanged")
	} else {
		s.logg.Info(ctx, "webhook advanced payment to "+target.String())
	}

	s.metrics.IncProcessed(event.Event)
	return nil
}

func extractPayment(event *Event) (string, *PaymentEntity) {
	var entity *PaymentEntity
	if event.Payload.Payment != nil {
		e := event.Payload.Payment.Entity
		entity = &e
	}

	orderID := ""
	if entity != nil {
		orderID = entity.OrderID
	}
	if orderID == "" && event.Payload.Order != nil {
		orderID = event.Payload.Order.Entity.ID
	}
	return orderID, entity
}
