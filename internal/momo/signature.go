package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns the lowercase hex HMAC-SHA256 of message keyed by secret
func Sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether candidate is the signature of message under secret.
// The candidate is compared as decoded bytes, so hex case does not matter.
// Malformed candidates (bad hex, wrong length) are reported as a mismatch.
func Verify(message, secret, candidate string) bool {
	got, err := hex.DecodeString(candidate)
	if err != nil || len(got) != sha256.Size {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hmac.Equal(got, mac.Sum(nil))
}

// VerifyNotification checks the IPN signature against the locally held keys
func VerifyNotification(n *Notification, accessKey, secret string) bool {
	return Verify(n.RawSignature(accessKey), secret, n.Signature.String())
}

// SignNotification fills in the signature of n the way the gateway would.
// Used by the local IPN simulator and tests.
func SignNotification(n *Notification, accessKey, secret string) {
	n.Signature = NewValue(Sign(n.RawSignature(accessKey), secret))
}

// SignRequest fills in the signature of a create-payment request
func SignRequest(r *CreatePaymentRequest, secret string) {
	r.Signature = Sign(r.RawSignature(), secret)
}
