package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records gateway webhook processing outcomes. The unmatched
// counter exists because events for unknown rows are acknowledged silently;
// a sustained non-zero rate for fully-formed orders points at a
// reconciliation gap rather than forward-compatibility noise.
type WebhookMetrics struct {
	processed        *prometheus.CounterVec
	unmatched        *prometheus.CounterVec
	signatureFailure prometheus.Counter
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_processed_total",
		Help: "Authentic webhook events handled, by event type.",
	}, []string{"event"})
	unmatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_unmatched_total",
		Help: "Authentic webhook events with no matching payment row.",
	}, []string{"event"})
	signatureFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_signature_failures_total",
		Help: "Webhook deliveries rejected for a bad signature.",
	})
	reg.MustRegister(processed, unmatched, signatureFailure)
	return &WebhookMetrics{
		processed:        processed,
		unmatched:        unmatched,
		signatureFailure: signatureFailure,
	}
}

// IncProcessed counts a handled event by type.
func (m *WebhookMetrics) IncProcessed(event string) {
	if m == nil || m.processed == nil {
		return
	}
	m.processed.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncUnmatched counts an authentic event that found no payment row.
func (m *WebhookMetrics) IncUnmatched(event string) {
	if m == nil || m.unmatched == nil {
		return
	}
	m.unmatched.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncSignatureFailure counts a rejected delivery.
func (m *WebhookMetrics) IncSignatureFailure() {
	if m == nil || m.signatureFailure == nil {
		return
	}
	m.signatureFailure.Inc()
}

func normalizeLabel(event string) string {
	if event == "" {
		return "unknown"
	}
	return event
}
