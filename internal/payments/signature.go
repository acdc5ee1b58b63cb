package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader carries the provider's HMAC over the raw webhook body
const SignatureHeader = "X-Provider-Signature"

var (
	ErrMissingSignature = errors.New("webhook signature header is missing")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
)

// VerifySignature checks the provider's HMAC-SHA256 signature over the raw
// request body. The comparison is constant time. Signatures may carry a
// "sha256=" prefix; both forms are accepted.
func VerifySignature(secret string, body []byte, signature string) error {
	if signature == "" {
		return ErrMissingSignature
	}

	signature = strings.TrimPrefix(signature, "sha256=")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	return nil
}

// Sign computes the hex HMAC-SHA256 of body. Used by tests and by the
// sandbox replay tooling.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
