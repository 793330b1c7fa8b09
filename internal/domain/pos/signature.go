package pos

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ValidateSignature checks the webhook signature against the channel signing key.
//
// The signed message is timestamp + "." + payload with backslash escapes removed,
// and the signature is the lower-case hex HMAC-SHA256 of it.
func ValidateSignature(webhook *Webhook, signingKey string) error {
	if webhook.Signature == "" {
		return ErrWebhookUnauthenticated
	}
	if signingKey == "" {
		return ErrWebhookNotRegistered
	}

	expected := ComputeSignature(webhook.Timestamp, webhook.Payload, signingKey)
	if !hmac.Equal([]byte(expected), []byte(webhook.Signature)) {
		return ErrWebhookInvalidSignature
	}
	return nil
}

// ComputeSignature returns the hex signature iZettle sends for timestamp and payload
func ComputeSignature(timestamp, payload, signingKey string) string {
	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(stripSlashes(timestamp + "." + payload)))
	return hex.EncodeToString(mac.Sum(nil))
}

// stripSlashes un-quotes a backslash-escaped string.
// "\\x" becomes "x", "\\\\" becomes "\\", "\\0" becomes NUL and a trailing
// lone backslash is dropped.
func stripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			break
		}
		if s[i] == '0' {
			b.WriteByte(0)
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
