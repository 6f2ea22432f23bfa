package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// RequestError describes a request that produced no HTTP response.
type RequestError struct {
	Type  ErrorType
	URL   string
	Cause error
}

type ErrorType int

const (
	ErrorTypeBuild ErrorType = iota
	ErrorTypeConnection
	ErrorTypeTimeout
	ErrorTypeRead
	ErrorTypeCanceled
)

// String returns the label used in the error breakdown of a run.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeBuild:
		return "request_build_error"
	case ErrorTypeConnection:
		return "connection_error"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeRead:
		return "read_error"
	case ErrorTypeCanceled:
		return "canceled"
	default:
		return "unknown_error"
	}
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: GET %s: %v", e.Type, e.URL, e.Cause)
	}
	return fmt.Sprintf("%s: GET %s", e.Type, e.URL)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

func NewRequestError(errorType ErrorType, url string, cause error) *RequestError {
	return &RequestError{
		Type:  errorType,
		URL:   url,
		Cause: cause,
	}
}

// classify maps a transport error to a RequestError.
func classify(url string, err error) *RequestError {
	switch {
	case errors.Is(err, context.Canceled):
		return NewRequestError(ErrorTypeCanceled, url, err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewRequestError(ErrorTypeTimeout, url, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewRequestError(ErrorTypeTimeout, url, err)
	}
	return NewRequestError(ErrorTypeConnection, url, err)
}

// ErrorLabel returns the breakdown label for err: the RequestError type
// when err is one, "unknown_error" otherwise.
func ErrorLabel(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Type.String()
	}
	return ErrorType(-1).String()
}
