package clover

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var ErrBadSignature = errors.New("webhook signature verification failed")

// VerifySignature checks a Clover-Signature header of the form
// "t=<unix-ms>,v1=<hex hmac-sha256>" where the MAC is computed over
// "{t}.{rawBody}" with the tenant's shared secret.
func VerifySignature(header string, rawBody []byte, secret string) error {
	var ts, sig string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "t="):
			ts = part[2:]
		case strings.HasPrefix(part, "v1="):
			sig = part[3:]
		}
	}
	if ts == "" || sig == "" {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(sig))) {
		return ErrBadSignature
	}
	return nil
}

// SignPayload produces a Clover-Signature header value for a body; used by
// the trigger tool and tests to exercise the production ingress path.
func SignPayload(timestampMillis string, rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestampMillis))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	return "t=" + timestampMillis + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
