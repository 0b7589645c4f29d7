// Package webhook authenticates inbound callback notifications from the
// payment provider. The inbound scheme is deliberately simpler than the
// outbound request-signing scheme: the signed content is the raw timestamp
// immediately followed by the raw body bytes, with no separators and no
// digest step. The two schemes must not share a code path.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	errorutils "github.com/infini-money/infini-go/errors"
)

// Verifier checks webhook signatures against a shared secret.
// The secret is set once at construction and never mutated, so a single
// Verifier is safe for concurrent use.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a verifier bound to the given shared secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify reports whether receivedSignature is the provider's signature over
// rawBody and timestamp. rawBody must be the exact bytes received on the
// wire; any re-serialization invalidates the signature.
//
// The return values keep three outcomes distinguishable: (true, nil) for a
// match, (false, nil) for a computed mismatch, and (false, err) when
// verification could not be computed at all. The computed signature is
// never returned or logged.
func (v *Verifier) Verify(rawBody []byte, receivedSignature, timestamp string) (bool, error) {
	if len(v.secret) == 0 {
		return false, errorutils.ErrNoWebhookSecret
	}

	expected, err := sign(v.secret, rawBody, timestamp)
	if err != nil {
		return false, errorutils.New(errorutils.ErrVerificationFailure, "failed to compute webhook signature", nil)
	}

	// comparison time must not depend on where the first mismatch occurs
	return hmac.Equal([]byte(expected), []byte(receivedSignature)), nil
}

// Verify is a convenience for one-off verification with a caller-supplied secret
func Verify(rawBody []byte, receivedSignature, timestamp, secret string) (bool, error) {
	return NewVerifier(secret).Verify(rawBody, receivedSignature, timestamp)
}

func sign(secret, rawBody []byte, timestamp string) (string, error) {
	mac := hmac.New(sha256.New, secret)
	if _, err := mac.Write([]byte(timestamp)); err != nil {
		return "", err
	}
	if _, err := mac.Write(rawBody); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
