// Package errs defines the small, closed set of error kinds the secret core
// surfaces to its callers. Every core-raised error carries one of these
// kinds so a caller can branch on it with errors.Is/errors.As instead of
// string-matching a message.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind tags an Error with one of the core's ten failure categories.
type Kind string

const (
	KindNotInitialised      Kind = "not-initialised"
	KindAuthenticationFail  Kind = "authentication-failed"
	KindUnsupportedVersion  Kind = "unsupported-version"
	KindValidationFailed    Kind = "validation-failed"
	KindMissingReference    Kind = "missing-reference"
	KindCircularReference   Kind = "circular-reference"
	KindVerificationFailed  Kind = "verification-failed"
	KindKeyMismatch         Kind = "key-mismatch"
	KindNetworkUnreachable  Kind = "network-unreachable"
	KindSpawnFailed         Kind = "spawn-failed"
)

// Error is the tagged sum type carried through the core's result paths.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As see through to the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Kind, so
// errors.Is(err, &errs.Error{Kind: errs.KindAuthenticationFail}) style
// checks work without matching Message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a bare Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error that carries cause as its wrapped root, annotated via
// github.com/pkg/errors: formatting the value Unwrap returns with %+v prints
// a stack trace of where it was wrapped. The Error itself prints kind,
// message and cause without a stack trace.
func Wrap(kind Kind, message string, cause error) *Error {
	if cause == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, cause: errors.Wrap(cause, message)}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, returning ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Sentinels for errors.Is comparisons against a specific kind, e.g.
// errors.Is(err, errs.ErrAuthenticationFail).
var (
	ErrNotInitialised     = New(KindNotInitialised, "not initialised")
	ErrAuthenticationFail = New(KindAuthenticationFail, "authentication failed")
	ErrUnsupportedVersion = New(KindUnsupportedVersion, "unsupported envelope version")
	ErrValidationFailed   = New(KindValidationFailed, "validation failed")
	ErrMissingReference   = New(KindMissingReference, "missing reference")
	ErrCircularReference  = New(KindCircularReference, "circular reference")
	ErrVerificationFailed = New(KindVerificationFailed, "verification failed")
	ErrKeyMismatch        = New(KindKeyMismatch, "key fingerprint mismatch")
	ErrNetworkUnreachable = New(KindNetworkUnreachable, "network unreachable")
	ErrSpawnFailed        = New(KindSpawnFailed, "failed to spawn process")
)
