package pkg

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a chain of errors, innermost first.
//
// Sentinels declared here are for failures outside the language itself:
// locating and decoding configuration, and preparing runtime directories.
type Error []error

// ErrDecodeConfig is returned when a configuration file cannot be decoded.
var ErrDecodeConfig = MakeErrorf("invalid configuration file")

// ErrCreateDir is returned when a runtime directory cannot be created.
var ErrCreateDir = MakeErrorf("cannot create directory")

// MakeError constructs an Error from the given errors, flattening any chains
// they wrap. Nil errors are skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the messages in the chain with ": ", innermost first.
func (e Error) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, ": ")
}

// Wrap returns a copy of the chain with err appended.
func (e Error) Wrap(err ...error) Error {
	return append(e[:len(e):len(e)], err...)
}

// Wrapf returns a copy of the chain with a formatted error appended.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Is reports whether target is a chain whose outermost error appears in e.
// This lets a sentinel Error match any chain built from it.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 {
		return false
	}

	for _, err := range e {
		if errors.Is(err, t[len(t)-1]) {
			return true
		}
	}

	return false
}

// Unwrap returns the errors contained in the chain.
func (e Error) Unwrap() []error { return e }

// UnwrapErrors recursively unwraps err and returns every error in its chain,
// innermost first.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	var chain Error

	switch e := err.(type) {
	case Error:
		return append(chain, e...)
	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}
	case interface{ Unwrap() error }:
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
