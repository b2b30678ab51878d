package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/erp/posconsole/internal/infrastructure/i18n"
)

// Kind classifies a failed API call
type Kind string

const (
	KindNetwork      Kind = "network"
	KindTimeout      Kind = "timeout"
	KindCanceled     Kind = "canceled"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindRateLimited  Kind = "rate_limited"
	KindServer       Kind = "server"
	KindRejected     Kind = "rejected"
	KindDecode       Kind = "decode"
)

// APIError is returned for every failed API call
type APIError struct {
	Kind       Kind
	StatusCode int
	Code       string // backend error code, when the envelope carries one
	Message    string // backend message, kept verbatim
	Method     string
	Path       string
	RequestID  string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Kind)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying transport error
func (e *APIError) Unwrap() error {
	return e.Err
}

// ServerMessage returns the backend message shown verbatim to the user.
// Missing records, rate limiting and server faults always get the localized
// generic text, so their raw backend message stays in Error() for the logs.
func (e *APIError) ServerMessage() string {
	switch e.Kind {
	case KindNotFound, KindRateLimited, KindServer, KindTimeout:
		return ""
	default:
		return e.Message
	}
}

// MessageKey returns the localized message key for the error class
func (e *APIError) MessageKey() string {
	switch e.Kind {
	case KindNetwork:
		return i18n.KeyNetwork
	case KindTimeout:
		return i18n.KeyTimeout
	case KindUnauthorized:
		return i18n.KeyUnauthorized
	case KindForbidden:
		return i18n.KeyForbidden
	case KindNotFound:
		return i18n.KeyNotFound
	case KindRateLimited:
		return i18n.KeyRateLimited
	case KindServer:
		return i18n.KeyServer
	default:
		return i18n.KeyGeneric
	}
}

// Temporary reports whether retrying the same request may succeed
func (e *APIError) Temporary() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindRateLimited, KindServer:
		return true
	}
	return false
}

// IsKind reports whether err is an APIError of the given kind
func IsKind(err error, kind Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// KindForStatus maps an HTTP error status to a Kind
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	case status >= 500:
		return KindServer
	default:
		return KindRejected
	}
}

// classifyTransport maps an http.Client error to a Kind
func classifyTransport(ctx context.Context, err error) Kind {
	if errors.Is(ctx.Err(), context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
