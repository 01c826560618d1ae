/*
Package apperr
File: internal/apperr/apperr.go
Description:
    The six error kinds from spec.md §7, as a small closed set of
    errors.Is-compatible sentinel wraps. Handlers in internal/transport
    translate these into {event}:error envelopes; everything else is an
    InternalError, recovered and logged, never propagated past a handler
    or a tick phase (spec.md §4.6 failure semantics).
*/
package apperr

import "errors"

// Kind is one of the six error categories spec.md §7 defines.
type Kind int

const (
	KindAuth Kind = iota
	KindValidation
	KindState
	KindPersistence
	KindProtocol
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AuthError"
	case KindValidation:
		return "ValidationError"
	case KindState:
		return "StateError"
	case KindPersistence:
		return "PersistenceError"
	case KindProtocol:
		return "ProtocolError"
	case KindInternal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// Error is an application error carrying a stable, user-facing message.
// Message is what goes back on the wire in {event}:error {message}; it
// must never change shape across releases since it appears in UI toasts.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error with 'message' as the stable client-facing string
// and 'cause' preserved for logs via errors.Unwrap.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Auth(message string) *Error        { return New(KindAuth, message) }
func Validation(message string) *Error  { return New(KindValidation, message) }
func State(message string) *Error       { return New(KindState, message) }
func Persistence(message string, cause error) *Error {
	return Wrap(KindPersistence, message, cause)
}
func Protocol(message string) *Error   { return New(KindProtocol, message) }
func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ClientMessage extracts the stable user-facing string from err, falling
// back to a generic failure message for anything not one of our kinds
// (spec.md §7: internal/persistence failures surface a generic message).
func ClientMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindPersistence, KindInternal:
			return "Something went wrong, please try again"
		default:
			return e.Message
		}
	}
	return "Something went wrong, please try again"
}
