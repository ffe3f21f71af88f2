package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Errors returned by this package are derived from one of these sentinels and
// match it with [errors.Is] regardless of any detail, attributes, or position
// attached to them.
var (
	ErrParse                    = NewError("parse error")
	ErrIncomplete               = NewError("incomplete input")
	ErrUndefinedVariable        = NewError("undefined variable")
	ErrUndefinedFunction        = NewError("undefined function")
	ErrInvalidVariableReference = NewError("invalid variable reference")
	ErrInvalidFunctionReference = NewError("invalid function reference")
	ErrInvalidArguments         = NewError("invalid arguments")
	ErrInvalidNativeArguments   = NewError("invalid native function arguments")
	ErrMaxDepthExceeded         = NewError("maximum depth exceeded")
	ErrReadInput                = NewError("failed to read input")
)

// Position identifies a location in source text.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// IsValid reports whether p refers to an actual source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind   *Error // sentinel this error derives from (nil for sentinels)
	msg    string
	detail string
	err    error       // Wrapped error (for errors.Unwrap)
	attrs  []slog.Attr // Attributes for structured logging
	pos    Position
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// IsIncomplete reports whether err signals that the parser ran out of input
// in the middle of a construct. Callers holding more input should append it
// and parse again.
func IsIncomplete(err error) bool { return errors.Is(err, ErrIncomplete) }

// Error implements the error interface.
//
// The message has the form "<msg>[ at <line:col>][: <detail>][: <cause>]".
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	head := e.msg
	if e.pos.IsValid() {
		head += " at " + e.pos.String()
	}

	if head != "" {
		part = append(part, head)
	}

	if e.detail != "" {
		part = append(part, e.detail)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel (or an error derived from the
// same sentinel) that e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.kind != nil {
		return e.kind
	}

	return e
}

// Position returns the source position attached to e, if any.
func (e *Error) Position() (Position, bool) { return e.pos, e.pos.IsValid() }

// Attr returns the value of the structured attribute with the given key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.detail != "" {
		attrs = append(attrs, slog.String("detail", e.detail))
	}

	if e.pos.IsValid() {
		attrs = append(attrs, slog.String("position", e.pos.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) clone() *Error {
	c := *e
	c.kind = e.root()

	return &c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.clone()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := e.clone()
	c.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(c.attrs, e.attrs)
	copy(c.attrs[len(e.attrs):], attrs)

	return c
}

// WithPosition returns a copy of e located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	c := e.clone()
	c.pos = pos

	return c
}

// Withf returns a copy of e with a formatted human-readable detail.
func (e *Error) Withf(format string, args ...any) *Error {
	c := e.clone()
	c.detail = fmt.Sprintf(format, args...)

	return c
}

// Snippet renders the source line containing the error position followed by
// a caret marking the column. It returns "" if e has no position or the line
// is out of range of src.
func (e *Error) Snippet(src string) string {
	if !e.pos.IsValid() {
		return ""
	}

	lines := strings.Split(src, "\n")
	if e.pos.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.pos.Line)

	var b strings.Builder

	b.WriteString("  " + num + " | " + lines[e.pos.Line-1] + "\n")
	// 2 leading spaces + " | " (3 chars)
	b.WriteString(strings.Repeat(" ", len(num)+5))

	if e.pos.Column > 1 {
		b.WriteString(strings.Repeat(" ", e.pos.Column-1))
	}

	b.WriteString("^\n")

	return b.String()
}
