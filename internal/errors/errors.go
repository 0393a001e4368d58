package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable, machine-readable category of a failure returned to callers.
type Kind string

const (
	KindUnauthenticated       Kind = "unauthenticated"
	KindRefreshUnavailable    Kind = "refresh_unavailable"
	KindStoreUnavailable      Kind = "store_unavailable"
	KindUpstreamRefreshFailed Kind = "upstream_refresh_failed"
	KindUpstreamRequestFailed Kind = "upstream_request_failed"
	KindInvalidCode           Kind = "invalid_code"
	KindProviderError         Kind = "provider_error"
	KindInvalidRequest        Kind = "invalid_request"
	KindInternal              Kind = "internal"
)

// Common sentinel errors
var (
	ErrInvalidState  = errors.New("invalid state")
	ErrMissingConfig = errors.New("missing configuration")
)

// Error carries a Kind alongside a human readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to err. A nil err still produces an error.
func Wrap(kind Kind, err error, message string) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the message of the outermost *Error in err's chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its HTTP-equivalent status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated, KindRefreshUnavailable:
		return http.StatusUnauthorized
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case KindUpstreamRefreshFailed, KindUpstreamRequestFailed:
		return http.StatusBadGateway
	case KindInvalidCode, KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
