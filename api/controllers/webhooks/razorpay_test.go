package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	razorpaywebhook "github.com/pgroom/pgroom-backend/internal/webhooks/razorpay"
	pkgerrors "github.com/pgroom/pgroom-backend/pkg/errors"
	"github.com/pgroom/pgroom-backend/pkg/logger"
	"github.com/pgroom/pgroom-backend/pkg/types"
)

const testWebhookSecret = "webhook-secret"

type stubWebhookService struct {
	handled []*razorpaywebhook.Event
	err     error
}

func (s *stubWebhookService) HandleEvent(ctx context.Context, event *razorpaywebhook.Event) error {
	s.handled = append(s.handled, event)
	return s.err
}

type stubGuard struct {
	seen    map[string]bool
	deleted []string
	err     error
}

func newStubGuard() *stubGuard { return &stubGuard{seen: map[string]bool{}} }

func (g *stubGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen[eventID] {
		return true, nil
	}
	g.seen[eventID] = true
	return false, nil
}

func (g *stubGuard) Delete(ctx context.Context, eventID string) error {
	g.deleted = append(g.deleted, eventID)
	delete(g.seen, eventID)
	return nil
}

type stubSecrets struct{}

func (stubSecrets) WebhookSecret() string { return testWebhookSecret }

func signBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func capturedBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(razorpaywebhook.Event{
		Event: razorpaywebhook.EventPaymentCaptured,
		Payload: razorpaywebhook.Payload{
			Payment: &razorpaywebhook.PaymentWrapper{Entity: razorpaywebhook.PaymentEntity{
				ID:      "pay_1",
				OrderID: "order_1",
				Status:  "captured",
				Method:  "upi",
			}},
		},
	})
	require.NoError(t, err)
	return body
}

func serveWebhook(svc RazorpayWebhookService, guard razorpayWebhookGuard, req *http.Request) *httptest.ResponseRecorder {
	logg := logger.New(logger.Options{ServiceName: "webhook-test", Output: io.Discard})
	handler := RazorpayWebhook(svc, stubSecrets{}, guard, nil, logg)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func newWebhookRequest(body []byte, signature, eventID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Razorpay-Signature", signature)
	}
	if eventID != "" {
		req.Header.Set("X-Razorpay-Event-Id", eventID)
	}
	return req
}

func TestRazorpayWebhook(t *testing.T) {
	t.Run("authentic event is dispatched", func(t *testing.T) {
		svc := &stubWebhookService{}
		body := capturedBody(t)

		rec := serveWebhook(svc, newStubGuard(), newWebhookRequest(body, signBody(body), "evt_1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, svc.handled, 1)
		assert.Equal(t, razorpaywebhook.EventPaymentCaptured, svc.handled[0].Event)
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		svc := &stubWebhookService{}
		body := capturedBody(t)

		rec := serveWebhook(svc, newStubGuard(), newWebhookRequest(body, "", "evt_1"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.handled)
	})

	t.Run("tampered body is rejected without leaking detail", func(t *testing.T) {
		svc := &stubWebhookService{}
		body := capturedBody(t)
		signature := signBody(body)
		tampered := bytes.Replace(body, []byte("order_1"), []byte("order_2"), 1)

		rec := serveWebhook(svc, newStubGuard(), newWebhookRequest(tampered, signature, "evt_1"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, svc.handled)

		var envelope types.ErrorEnvelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, string(pkgerrors.CodeSecurity), envelope.Error.Code)
		assert.Equal(t, "signature verification failed", envelope.Error.Message)
		assert.Nil(t, envelope.Error.Details)
	})

	t.Run("duplicate delivery is acknowledged once", func(t *testing.T) {
		svc := &stubWebhookService{}
		guard := newStubGuard()
		body := capturedBody(t)

		first := serveWebhook(svc, guard, newWebhookRequest(body, signBody(body), "evt_dup"))
		second := serveWebhook(svc, guard, newWebhookRequest(body, signBody(body), "evt_dup"))

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Len(t, svc.handled, 1)
	})

	t.Run("processing failure releases the event id", func(t *testing.T) {
		svc := &stubWebhookService{err: pkgerrors.New(pkgerrors.CodePersistence, "db down")}
		guard := newStubGuard()
		body := capturedBody(t)

		rec := serveWebhook(svc, guard, newWebhookRequest(body, signBody(body), "evt_fail"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, guard.deleted, "evt_fail")
	})

	t.Run("guard failure maps to upstream error", func(t *testing.T) {
		guard := newStubGuard()
		guard.err = fmt.Errorf("redis down")
		body := capturedBody(t)

		rec := serveWebhook(&stubWebhookService{}, guard, newWebhookRequest(body, signBody(body), "evt_1"))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing event id falls back to signature", func(t *testing.T) {
		svc := &stubWebhookService{}
		guard := newStubGuard()
		body := capturedBody(t)
		signature := signBody(body)

		serveWebhook(svc, guard, newWebhookRequest(body, signature, ""))
		serveWebhook(svc, guard, newWebhookRequest(body, signature, ""))

		assert.Len(t, svc.handled, 1)
	})
}
