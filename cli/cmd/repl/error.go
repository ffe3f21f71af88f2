package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index with no entry.
	ErrOutOfBounds = errors.New("history index out of range")

	// ErrEditDeclined is returned when the user leaves the multi-line editor
	// without accepting its contents.
	ErrEditDeclined = errors.New("edit declined")
)
