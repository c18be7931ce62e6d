package game

import (
	"errors"
	"fmt"
)

// Kind classifies engine errors.
type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindValidation Kind = "validation" // bad input, nothing changed
	KindConflict   Kind = "conflict"   // wrong phase or stale state
	KindNotFound   Kind = "not_found"
	KindInvariant  Kind = "invariant" // mutation aborted, prior snapshot kept
	KindExternal   Kind = "external"  // collaborator failed, logged and swallowed
)

// Error is the engine error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target has the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks by kind.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrInvariant  = &Error{Kind: KindInvariant}
	ErrExternal   = &Error{Kind: KindExternal}
)

func newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error { return newf(KindValidation, format, args...) }
func Conflictf(format string, args ...any) *Error   { return newf(KindConflict, format, args...) }
func NotFoundf(format string, args ...any) *Error   { return newf(KindNotFound, format, args...) }
func Invariantf(format string, args ...any) *Error  { return newf(KindInvariant, format, args...) }

// External wraps a collaborator failure.
func External(op string, cause error) *Error {
	return &Error{Kind: KindExternal, Message: op, Cause: cause}
}

// KindOf returns the kind of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
