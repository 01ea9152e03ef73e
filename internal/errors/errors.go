// Package errors defines the error taxonomy shared by the service client and
// the view models.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind uint8

const (
	// KindUnknown is any error that did not come through this package.
	KindUnknown Kind = iota
	// KindTransport means the service could not be reached.
	KindTransport
	// KindService means the service answered with a non-success status.
	KindService
	// KindDecode means the service answered with a malformed body.
	KindDecode
	// KindValidation means an operation was attempted in the wrong state or
	// with bad input.
	KindValidation
)

var kindNames = map[Kind]string{
	KindUnknown:    "unknown",
	KindTransport:  "transport",
	KindService:    "service",
	KindDecode:     "decode",
	KindValidation: "validation",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	err     error
}

func New(kind Kind, opts ...Option) *Error {
	e := &Error{
		Kind:    kind,
		Message: kind.String() + " error",
	}

	for _, opt := range opts {
		opt.apply(e)
	}

	return e
}

func (e *Error) Error() string {
	s := e.Message
	if e.Status != 0 {
		s = fmt.Sprintf("%s (status %d)", s, e.Status)
	}
	if e.err != nil {
		s += fmt.Sprintf(": %s", e.err)
	}

	return s
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is matches another *Error of the same kind so errors.Is works with the
// sentinel-style values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Status == 0
}

var (
	ErrTransport  = &Error{Kind: KindTransport}
	ErrService    = &Error{Kind: KindService}
	ErrDecode     = &Error{Kind: KindDecode}
	ErrValidation = &Error{Kind: KindValidation}
)

// Convert returns err as an *Error, wrapping foreign errors as KindUnknown.
func Convert(err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return New(KindUnknown, WithCause(err), WithMessagef("unexpected error"))
	}

	return e
}

// KindOf reports the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Transport(err error) *Error {
	return New(KindTransport, WithCause(err), WithMessagef("service unreachable"))
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, WithMessagef(format, args...))
}

type Option interface {
	apply(*Error)
}

type optionFunc func(*Error)

func (f optionFunc) apply(e *Error) {
	f(e)
}

func WithCause(err error) Option {
	return optionFunc(func(e *Error) {
		e.err = err
	})
}

func WithMessagef(format string, args ...any) Option {
	return optionFunc(func(e *Error) {
		e.Message = fmt.Sprintf(format, args...)
	})
}

func WithStatus(status int) Option {
	return optionFunc(func(e *Error) {
		e.Status = status
	})
}
