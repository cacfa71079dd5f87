package connector

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// computeSignature returns the hex HMAC-SHA256 of payload under secret.
func computeSignature(secret, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature checks a signature header against the HMAC of the raw
// payload bytes. Comparison is constant time. An optional "sha256=" prefix
// on the header value is accepted.
func verifySignature(secret, payload []byte, header string) bool {
	header = strings.TrimSpace(header)
	header = strings.TrimPrefix(header, "sha256=")
	if header == "" || len(secret) == 0 {
		return false
	}
	expected := computeSignature(secret, payload)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(header)))
}
