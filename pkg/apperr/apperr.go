// Package apperr defines the user-facing error taxonomy shared by the
// resume optimizer and the image generator.
//
// Every error a user can see falls into one Kind. All of them end the
// current invocation: there is no retry and no partial output.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is anything not classified below.
	KindUnknown Kind = iota
	// KindMissingCredential means a required API key is absent.
	KindMissingCredential
	// KindMissingInput means a required file or text field is empty or unreadable.
	KindMissingInput
	// KindExternalService means a text or image collaborator failed.
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindMissingInput:
		return "missing_input"
	case KindExternalService:
		return "external_service_failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against a Kind.
var (
	ErrMissingCredential = &Error{Kind: KindMissingCredential}
	ErrMissingInput      = &Error{Kind: KindMissingInput}
	ErrExternalService   = &Error{Kind: KindExternalService}
)

// Error is a classified failure.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "optimize"
	Msg  string // message shown to the user
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Kind, so errors.Is(err,
// ErrMissingInput) works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// MissingCredential reports an absent API key. name is the env var or
// config key the user should set.
func MissingCredential(op, name string) error {
	return &Error{
		Kind: KindMissingCredential,
		Op:   op,
		Msg:  fmt.Sprintf("please set your %s environment variable or enter it in the form", name),
	}
}

// MissingInput reports an empty or unusable required input.
func MissingInput(op, msg string) error {
	return &Error{Kind: KindMissingInput, Op: op, Msg: msg}
}

// External wraps a collaborator failure.
func External(op, msg string, err error) error {
	return &Error{Kind: KindExternalService, Op: op, Msg: msg, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Message returns the text to show a user for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingInput:
		return http.StatusBadRequest
	case KindMissingCredential:
		return http.StatusUnauthorized
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
