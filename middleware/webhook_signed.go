package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	errorutils "github.com/infini-money/infini-go/errors"
	"github.com/infini-money/infini-go/handlers"
	"github.com/infini-money/infini-go/logging"
	"github.com/infini-money/infini-go/requestutils"
	"github.com/infini-money/infini-go/webhook"
)

const (
	// WebhookSignatureHeader carries the provider's signature over the callback
	WebhookSignatureHeader = "Infini-Signature"
	// WebhookTimestampHeader carries the timestamp the signature covers
	WebhookTimestampHeader = "Infini-Timestamp"
)

var (
	errMissingSignature = errors.New("missing webhook signature")
	errInvalidSignature = errors.New("invalid webhook signature")
	errInvalidHeader    = errors.New("invalid http header")
)

// WebhookSignedOnly is a middleware that requires an inbound callback to carry
// a valid signature over its exact body bytes. The body is read once and
// restored for downstream handlers unmodified.
func WebhookSignedOnly(verifier *webhook.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := logging.Logger(r.Context(), "WebhookSignedOnly")

			sig := r.Header.Get(WebhookSignatureHeader)
			ts := r.Header.Get(WebhookTimestampHeader)
			if sig == "" || ts == "" {
				logger.Warn().Msg("signature and timestamp must be present for webhook middleware")
				ae := handlers.AppError{
					Cause:   errMissingSignature,
					Message: "webhook signature headers must be present",
					Code:    http.StatusBadRequest,
				}
				ae.ServeHTTP(w, r)
				return
			}

			body, err := requestutils.Read(r.Context(), r.Body)
			if err != nil {
				ae := handlers.AppError{
					Cause:   err,
					Message: "failed to read webhook body",
					Code:    http.StatusBadRequest,
				}
				ae.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			ok, err := verifier.Verify(body, sig, ts)
			if err != nil {
				// configuration problems are ours, computation problems are the caller's
				code := http.StatusBadRequest
				if errors.Is(err, errorutils.ErrNoWebhookSecret) {
					code = http.StatusInternalServerError
				}
				logger.Error().Err(err).Msg("failed to verify webhook")
				ae := handlers.AppError{
					Cause:   err,
					Message: "webhook signature verification could not be performed",
					Code:    code,
				}
				ae.ServeHTTP(w, r)
				return
			}
			if !ok {
				logger.Warn().Msg("webhook signature did not match")
				ae := handlers.AppError{
					Cause:   errInvalidSignature,
					Message: "webhook signature verification failure",
					Code:    http.StatusForbidden,
				}
				ae.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
