package clients

import (
	"fmt"

	errorutils "github.com/infini-money/infini-go/errors"
)

var (
	// ErrUnableToDecode unable to decode body
	ErrUnableToDecode = "unable to decode response"
	// ErrProtocolError the error was within the data that went into the endpoint
	ErrProtocolError = "protocol error"
	// ErrUnableToEscapeURL the url could not be escaped
	ErrUnableToEscapeURL = "unable to escape url"
	// ErrInvalidHost the host was invalid
	ErrInvalidHost = "invalid host"
	// ErrMalformedRequest the request was malformed
	ErrMalformedRequest = "malformed request"
	// ErrUnableToEncodeBody body could not be encoded
	ErrUnableToEncodeBody = "unable to encode body"
)

// HTTPState captures the state of the response to be read by lower fns in the stack
type HTTPState struct {
	Status int
	Path   string
	Body   interface{}
}

// NewHTTPError creates a new errors.ErrorBundle with an HTTPState wrapping the status, path and v.
func NewHTTPError(err error, path, message string, status int, v interface{}) error {
	return errorutils.New(err, message, HTTPState{
		Status: status,
		Path:   path,
		Body:   v,
	})
}

// InfiniError holds error info directly from the payment api
type InfiniError struct {
	Code           int    `json:"code"`
	Message        string `json:"message"`
	HTTPStatusCode int    `json:"-"`
}

// Error returns the error string
func (ie *InfiniError) Error() string {
	return fmt.Sprintf("message: %s - code: %d - http status: %d", ie.Message, ie.Code, ie.HTTPStatusCode)
}
