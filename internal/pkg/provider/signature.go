package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Webhook signature headers.
const (
	HeaderSignature = "X-Provider-Signature"
	HeaderTimestamp = "X-Provider-Timestamp"
)

// Sign computes the webhook signature: an HMAC-SHA256 over body, callback
// URL and timestamp, base64 encoded, and then an HMAC-SHA256 over that
// string, base64 encoded again. body must be the raw request bytes.
func Sign(secret string, body []byte, callbackURL, timestamp string) string {
	content := make([]byte, 0, len(body)+len(callbackURL)+len(timestamp))
	content = append(content, body...)
	content = append(content, callbackURL...)
	content = append(content, timestamp...)
	return base64Digest(secret, []byte(base64Digest(secret, content)))
}

// VerifySignature reports whether signature matches the delivery.
func VerifySignature(secret string, body []byte, callbackURL, timestamp, signature string) bool {
	if signature == "" {
		return false
	}
	expected := Sign(secret, body, callbackURL, timestamp)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// CallbackURL is the URL the provider signed for a delivery of eventType.
func CallbackURL(host, eventType string) string {
	return "https://" + host + "/api/webhooks/" + eventType
}

func base64Digest(secret string, data []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
