package lang

import (
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Binding is a value bound to a name in an [Environment].
//
// The set of implementations is closed: [Value], [Function], and [Native].
type Binding interface {
	BindingKind() BindingKind

	binding()
}

// BindingKind indicates the type of a [Binding].
type BindingKind int

const (
	// BindingValue is a computed number.
	BindingValue BindingKind = iota // value

	// BindingFunction is a user-defined function.
	BindingFunction // function

	// BindingNative is a host-supplied single-argument function.
	BindingNative // native
)

type (
	// Value is a computed number.
	Value float64

	// Function is a user-defined function: parameter names and a body.
	Function struct {
		Params []string
		Body   []Expr
	}

	// Native is a host-supplied numeric transformation of exactly one
	// argument.
	Native struct {
		Name string
		Doc  string
		Fn   func(float64) float64
	}
)

func (Value) BindingKind() BindingKind    { return BindingValue }
func (Function) BindingKind() BindingKind { return BindingFunction }
func (Native) BindingKind() BindingKind   { return BindingNative }

func (Value) binding()    {}
func (Function) binding() {}
func (Native) binding()   {}

// Signature returns the function's call form, e.g. "f(a, b)".
func (f Function) Signature(name string) string {
	return name + "(" + strings.Join(f.Params, ", ") + ")"
}

// Signature returns the native's call form, e.g. "sqrt(x)".
func (n Native) Signature() string { return n.Name + "(x)" }

// Describe renders a short human-readable summary of a binding.
func Describe(name string, b Binding) string {
	switch b := b.(type) {
	case Value:
		return name + " = " + FormatResult(float64(b))

	case Function:
		return "define " + b.Signature(name) + " { " +
			strconv.Itoa(len(b.Body)) + " expression(s) }"

	case Native:
		if b.Doc != "" {
			return b.Signature() + "  # " + b.Doc
		}

		return b.Signature()

	default:
		return name
	}
}

// Environment maps names to bindings.
//
// An Environment is owned by a single evaluation session and is not safe for
// concurrent use. Nested calls and conditional bodies evaluate in a [Fork],
// so their local bindings never reach the environment they were forked from.
type Environment struct {
	bindings map[string]Binding
}

// EnvOption configures a new [Environment].
type EnvOption func(*Environment)

// WithoutBuiltins creates the environment without the default natives.
func WithoutBuiltins() EnvOption {
	return func(e *Environment) { clear(e.bindings) }
}

// WithNative binds an additional native function.
func WithNative(name, doc string, fn func(float64) float64) EnvOption {
	return func(e *Environment) {
		e.bindings[name] = Native{Name: name, Doc: doc, Fn: fn}
	}
}

// NewEnvironment creates an environment pre-populated with the built-in
// native functions (see [Builtins]).
func NewEnvironment(opts ...EnvOption) *Environment {
	env := &Environment{bindings: makeBuiltins()}

	for _, opt := range opts {
		opt(env)
	}

	return env
}

// Get returns the binding for name, if any.
func (e *Environment) Get(name string) (Binding, bool) {
	b, ok := e.bindings[name]

	return b, ok
}

// Bind binds name to b, replacing any previous binding, and returns e so that
// calls may be chained.
func (e *Environment) Bind(name string, b Binding) *Environment {
	e.bindings[name] = b

	return e
}

// Fork returns an independent copy of e.
func (e *Environment) Fork() *Environment {
	return &Environment{bindings: maps.Clone(e.bindings)}
}

// Len returns the number of bound names.
func (e *Environment) Len() int { return len(e.bindings) }

// Names returns all bound names in sorted order.
func (e *Environment) Names() []string {
	return slices.Sorted(maps.Keys(e.bindings))
}

// All returns an iterator over all bindings in name order.
func (e *Environment) All() iter.Seq2[string, Binding] {
	return func(yield func(string, Binding) bool) {
		for _, name := range e.Names() {
			if !yield(name, e.bindings[name]) {
				return
			}
		}
	}
}
