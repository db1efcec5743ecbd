package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyPaymentSignature checks the client-side confirmation signature.
// The gateway signs "orderID|paymentID" with the API key secret.
func VerifyPaymentSignature(orderID, paymentID, signature, keySecret string) bool {
	if orderID == "" || paymentID == "" || signature == "" || keySecret == "" {
		return false
	}
	return verify([]byte(orderID+"|"+paymentID), signature, keySecret)
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header against the
// raw request body. Any reserialization of the body breaks the digest, so
// callers must pass the bytes exactly as received.
func VerifyWebhookSignature(body []byte, signature, webhookSecret string) bool {
	if len(body) == 0 || signature == "" || webhookSecret == "" {
		return false
	}
	return verify(body, signature, webhookSecret)
}

func verify(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
