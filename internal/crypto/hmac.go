// Package crypto implements the header-signing schemes of the REST
// exchanges. Both Max and BitoPro sign a base64-encoded JSON payload with an
// HMAC over the exchange secret; they differ in hash function and header
// names.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"hash"
)

// HMACAuth holds the credential pair for a signed exchange API.
type HMACAuth struct {
	AccessKey string
	SecretKey string
}

// MaxHeaders returns the authentication headers for a Max API request. The
// JSON payload (which must include the request path and a millisecond nonce)
// is base64-encoded into X-MAX-PAYLOAD and signed with HMAC-SHA256, hex
// encoded, into X-MAX-SIGNATURE.
func (h *HMACAuth) MaxHeaders(payloadJSON []byte) map[string]string {
	payload := base64.StdEncoding.EncodeToString(payloadJSON)
	sig := hmacHex(sha256.New, []byte(h.SecretKey), payload)

	return map[string]string{
		"X-MAX-ACCESSKEY": h.AccessKey,
		"X-MAX-PAYLOAD":   payload,
		"X-MAX-SIGNATURE": sig,
	}
}

// BitoHeaders returns the authentication headers for a BitoPro API request.
// The JSON payload (carrying a millisecond nonce) is base64-encoded into
// X-BITOPRO-PAYLOAD and signed with HMAC-SHA384, hex encoded, into
// X-BITOPRO-SIGNATURE.
func (h *HMACAuth) BitoHeaders(payloadJSON []byte) map[string]string {
	payload := base64.StdEncoding.EncodeToString(payloadJSON)
	sig := hmacHex(sha512.New384, []byte(h.SecretKey), payload)

	return map[string]string{
		"X-BITOPRO-APIKEY":    h.AccessKey,
		"X-BITOPRO-PAYLOAD":   payload,
		"X-BITOPRO-SIGNATURE": sig,
	}
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.AccessKey), redact(h.SecretKey))
}

func hmacHex(newHash func() hash.Hash, key []byte, message string) string {
	mac := hmac.New(newHash, key)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
