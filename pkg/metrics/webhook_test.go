package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWebhookMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	wm := NewWebhookMetrics(reg)

	wm.IncProcessed("payment.captured")
	wm.IncProcessed("payment.captured")
	wm.IncUnmatched("order.paid")
	wm.IncUnmatched("")
	wm.IncSignatureFailure()

	assert.Equal(t, float64(2), testutil.ToFloat64(wm.processed.WithLabelValues("payment.captured")))
	assert.Equal(t, float64(1), testutil.ToFloat64(wm.unmatched.WithLabelValues("order.paid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(wm.unmatched.WithLabelValues("unknown")))
	assert.Equal(t, float64(1), testutil.ToFloat64(wm.signatureFailure))
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var wm *WebhookMetrics
	assert.NotPanics(t, func() {
		wm.IncProcessed("payment.captured")
		wm.IncUnmatched("payment.captured")
		wm.IncSignatureFailure()
	})

	empty := NewWebhookMetrics(nil)
	assert.NotPanics(t, func() {
		empty.IncProcessed("payment.captured")
	})
}
