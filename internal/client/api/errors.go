package api

import (
	"errors"
	"net/http"
)

// DefaultErrorMessage is used when a failed response carries no message.
const DefaultErrorMessage = "Something went wrong"

// ErrRejected marks a 2xx envelope with success=false.
var ErrRejected = errors.New("request rejected by server")

// ErrNilResponse is wrapped by a decode error when a 2xx body is JSON null.
var ErrNilResponse = errors.New("response body is null")

// networkErrorMessage is the message of transport failures.
const networkErrorMessage = "Network request failed"

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport means no response was obtained.
	KindTransport Kind = iota + 1
	// KindHTTP means the server answered with a non-2xx status.
	KindHTTP
	// KindDecode means the body was not valid JSON for the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every failed client call. Message is meant to be
// shown to the user as is.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is an HTTP 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindHTTP && apiErr.StatusCode == http.StatusUnauthorized
}
