// Package errors provides the error bundle type used throughout infini-go
// along with the sentinel errors for the signing and verification taxonomy.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials - no api key / secret key pair was configured for request signing
	ErrNoCredentials = errors.New("api credentials are not configured")
	// ErrNoWebhookSecret - no webhook secret was configured or supplied for verification
	ErrNoWebhookSecret = errors.New("no webhook secret available")
	// ErrVerificationFailure - the webhook signature could not be computed
	ErrVerificationFailure = errors.New("failed to compute webhook verification")
	// ErrInvalidMethod - the http method is not a recognized verb
	ErrInvalidMethod = errors.New("invalid http method")
	// ErrInvalidPath - the request path is empty or missing the leading slash
	ErrInvalidPath = errors.New("invalid request path")
	// ErrSignRequest - failed to sign the api request
	ErrSignRequest = errors.New("failed to sign the api request")
)

// ErrorBundle creates a new response error
type ErrorBundle struct {
	cause   error
	message string
	data    interface{}
}

// New creates a new response error
func New(cause error, message string, data interface{}) error {
	return &ErrorBundle{
		cause,
		message,
		data,
	}
}

// Data from error origin
func (e ErrorBundle) Data() interface{} {
	return e.data
}

// Cause returns the associated cause
func (e ErrorBundle) Cause() error {
	return e.cause
}

// Unwrap returns the associated cause
func (e ErrorBundle) Unwrap() error {
	return e.cause
}

// Error turns into an error
func (e ErrorBundle) Error() string {
	return e.message
}

// DataToString returns string representation of data
func (e ErrorBundle) DataToString() string {
	if e.data == nil {
		return "no error bundle data"
	}
	b, err := json.Marshal(e.data)
	if err != nil {
		return fmt.Sprintf("error retrieving error bundle data %s", err.Error())
	}
	return string(b)
}

// Wrap wraps an error
func Wrap(cause error, message string) error {
	return &ErrorBundle{
		cause:   cause,
		message: message,
		data:    nil,
	}
}
