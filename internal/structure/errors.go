package structure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure reported by the structure tools.
type Kind string

const (
	KindInvalidArgument      Kind = "InvalidArgument"
	KindDuplicateName        Kind = "DuplicateName"
	KindNotFound             Kind = "NotFound"
	KindParseError           Kind = "ParseError"
	KindIncompleteDefinition Kind = "IncompleteDefinition"
	KindInternal             Kind = "Internal"
)

// Error is the structured failure returned by every model, serializer,
// generator and facade operation.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Err     error  `json:"-"`
}

// Sentinels for errors.Is matching on kind only.
var (
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
	ErrDuplicateName        = &Error{Kind: KindDuplicateName}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrParse                = &Error{Kind: KindParseError}
	ErrIncompleteDefinition = &Error{Kind: KindIncompleteDefinition}
)

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Path != "" {
		msg += " (at " + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds a structured error of the given kind anchored at path.
func Errorf(kind Kind, path string, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new structured error.
func Wrap(kind Kind, path string, err error, message string) *Error {
	return &Error{Kind: kind, Path: path, Message: message, Err: err}
}

// AsError converts any error into a structured one. Unstructured errors
// become KindInternal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err, or KindInternal for unstructured errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}
