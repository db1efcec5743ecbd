package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(t *testing.T, payload, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	secret := "key-secret"
	orderID := "order_Nxq2Z3v"
	paymentID := "pay_Nxq9Kf1"
	good := sign(t, orderID+"|"+paymentID, secret)

	assert.True(t, VerifyPaymentSignature(orderID, paymentID, good, secret))
	assert.False(t, VerifyPaymentSignature(orderID, paymentID, good, "wrong-secret"))
	assert.False(t, VerifyPaymentSignature(orderID, "pay_other", good, secret))
	assert.False(t, VerifyPaymentSignature(orderID, paymentID, "deadbeef", secret))
	assert.False(t, VerifyPaymentSignature("", paymentID, good, secret))
	assert.False(t, VerifyPaymentSignature(orderID, paymentID, "", secret))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "webhook-secret"
	body := []byte(`{"event":"payment.captured","payload":{}}`)
	good := sign(t, string(body), secret)

	assert.True(t, VerifyWebhookSignature(body, good, secret))

	// A single whitespace change in the body must break verification.
	assert.False(t, VerifyWebhookSignature([]byte(`{"event": "payment.captured","payload":{}}`), good, secret))
	assert.False(t, VerifyWebhookSignature(body, good, "other-secret"))
	assert.False(t, VerifyWebhookSignature(nil, good, secret))
	assert.False(t, VerifyWebhookSignature(body, "", secret))
}
