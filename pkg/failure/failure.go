// Package failure defines the application error categories that the HTTP
// layer knows how to turn into problem responses.
package failure

import (
	"fmt"
	"strings"
)

// Kind is a recognized error category.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindBadRequest
	KindUnauthenticated
	KindPermissionDenied
	KindNotFound
	KindMethodNotAllowed
	KindConflict
	KindPayloadTooLarge
	KindTooManyRequests
	KindInternal
	KindUnavailable
	KindTimeout
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindValidation:       "validation-failure",
	KindBadRequest:       "bad-request",
	KindUnauthenticated:  "unauthenticated",
	KindPermissionDenied: "permission-denied",
	KindNotFound:         "not-found",
	KindMethodNotAllowed: "method-not-allowed",
	KindConflict:         "conflict",
	KindPayloadTooLarge:  "payload-too-large",
	KindTooManyRequests:  "too-many-requests",
	KindInternal:         "internal",
	KindUnavailable:      "unavailable",
	KindTimeout:          "timeout",
}

// Kinds returns every known kind except KindUnknown.
func Kinds() []Kind {
	return []Kind{
		KindValidation, KindBadRequest, KindUnauthenticated, KindPermissionDenied,
		KindNotFound, KindMethodNotAllowed, KindConflict, KindPayloadTooLarge,
		KindTooManyRequests, KindInternal, KindUnavailable, KindTimeout,
	}
}

// String returns the kebab-case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kebab-case kind name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// Violation is a single failed constraint.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// Error is an application error with a known category.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind caused by err.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: err}
}

// Validation reports a single invalid field.
func Validation(field, message string) *Error {
	return Violations(Violation{Field: field, Message: message})
}

// Violations reports one or more failed constraints.
func Violations(violations ...Violation) *Error {
	parts := make([]string, len(violations))
	for i, v := range violations {
		parts[i] = v.String()
	}
	return &Error{
		Kind:       KindValidation,
		Message:    strings.Join(parts, "; "),
		Violations: violations,
	}
}

func BadRequest(format string, args ...any) *Error {
	return New(KindBadRequest, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func PermissionDenied(format string, args ...any) *Error {
	return New(KindPermissionDenied, fmt.Sprintf(format, args...))
}

func Unauthenticated(format string, args ...any) *Error {
	return New(KindUnauthenticated, fmt.Sprintf(format, args...))
}

// Internal marks err as an internal fault. Its message is never shown to
// clients unless stack traces are enabled.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Cause: err}
}

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
