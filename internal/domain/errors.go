package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingSelection means a local precondition failed and no request was issued.
	ErrMissingSelection  = errors.New("missing selection")
	ErrNotFound          = errors.New("not found")
	ErrMalformedResult   = errors.New("malformed result")
	ErrUnsupportedMethod = errors.New("unsupported method")
	// ErrSubmitInFlight is returned while a stage is already submitting.
	ErrSubmitInFlight = errors.New("a request is already in flight for this stage")
	// ErrStaleResponse marks a response superseded by a newer state transition.
	ErrStaleResponse = errors.New("stale response discarded")
)

// TransportError is a network failure or a non-2xx response from the service.
type TransportError struct {
	StatusCode int
	Message    string
	// Detail is the server supplied "detail" field, kept verbatim.
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
