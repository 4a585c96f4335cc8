// Package errors defines the error taxonomy shared by the payment components.
// Errors are built with NewError/WithError and classified with Mark, so callers
// can test the category with errors.Is regardless of how deeply they were wrapped.
package errors

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/cockroachdb/errors"
)

var (
	// ErrValidation marks malformed caller input (InputError)
	ErrValidation = errors.New("validation error")
	// ErrAlreadyMember marks a same-tier repurchase
	ErrAlreadyMember = errors.New("already member")
	// ErrUnauthorized marks a request without an authenticated principal
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSecurity marks a signature mismatch (SecurityError)
	ErrSecurity = errors.New("security error")
	// ErrDecode marks a corrupt opaque payload (DecodeError)
	ErrDecode = errors.New("decode error")
	// ErrDownstream marks a failed collaborator call (DownstreamError)
	ErrDownstream = errors.New("downstream error")
	// ErrTimeout marks a collaborator call abandoned on its deadline
	ErrTimeout = errors.New("timeout")
	// ErrConflict marks a duplicate transaction reported by a collaborator
	ErrConflict = errors.New("conflict")
	// ErrConfiguration marks missing credentials or endpoints
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks a missing record
	ErrNotFound = errors.New("not found")
	// ErrInternal marks everything else
	ErrInternal = errors.New("internal error")
)

// ErrorBuilder accumulates context before an error is marked with its category.
type ErrorBuilder struct {
	err  error
	hint string
}

// NewError starts a new error with the given message
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepth(1, msg)}
}

// NewErrorf starts a new formatted error
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{err: errors.NewWithDepthf(1, format, args...)}
}

// WithError starts from an existing error
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.NewWithDepth(1, "unknown error")
	}
	return &ErrorBuilder{err: err}
}

// WithMessage wraps the underlying error with an extra message
func (b *ErrorBuilder) WithMessage(msg string) *ErrorBuilder {
	b.err = errors.WrapWithDepth(1, b.err, msg)
	return b
}

// WithHint attaches a caller-facing hint
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hint = hint
	return b
}

// WithHintf attaches a formatted caller-facing hint
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	return b.WithHint(fmt.Sprintf(format, args...))
}

// Mark finalizes the error and tags it with the category reference.
func (b *ErrorBuilder) Mark(reference error) error {
	err := b.err
	if b.hint != "" {
		err = errors.WithHint(err, b.hint)
	}
	return errors.Mark(err, reference)
}

// Is reports whether err carries the category reference
func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// Hint returns the first hint attached to err, or an empty string
func Hint(err error) string {
	hints := errors.GetAllHints(err)
	if len(hints) == 0 {
		return ""
	}
	return hints[0]
}

// HTTPStatus maps an error category to the status surfaced on the outbound path.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrAlreadyMember):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrDownstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromTransport classifies an HTTP client failure as a timeout or a generic
// downstream error.
func FromTransport(err error, msg string) error {
	if IsTimeout(err) {
		return WithError(err).WithMessage(msg).Mark(ErrTimeout)
	}
	return WithError(err).WithMessage(msg).Mark(ErrDownstream)
}

// IsTimeout reports whether err was caused by a deadline or a network timeout
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
