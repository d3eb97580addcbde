package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an operational failure so transport adapters can map it
// to a response without string matching.
type Kind int

const (
	// KindValidation marks malformed or missing input.
	KindValidation Kind = iota
	// KindAuthorization marks an authenticated caller with an insufficient
	// role or an ownership mismatch.
	KindAuthorization
	// KindNotFound marks a referenced order, product, or user that does
	// not exist.
	KindNotFound
	// KindInvalidState marks an operation not permitted in the record's
	// current state.
	KindInvalidState
	// KindInternal marks everything else. Never fatal to the process.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindInvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error carries a kind plus a human-readable message. Wrapped causes stay
// reachable through errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// KindOf reports the kind of err, or KindInternal when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool    { return is(err, KindValidation) }
func IsAuthorization(err error) bool { return is(err, KindAuthorization) }
func IsNotFound(err error) bool      { return is(err, KindNotFound) }
func IsInvalidState(err error) bool  { return is(err, KindInvalidState) }

func is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
