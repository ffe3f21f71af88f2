package lang

// This file defines the native functions bound in every environment created
// by NewEnvironment. The table is built once per process and cloned on every
// access so environments may rebind or shadow natives freely.

import (
	"maps"
	"math"
	"slices"
	"sync"
)

// Private singleton cache.
//
//nolint:gochecknoglobals
var builtinCache = sync.OnceValue(func() map[string]Binding {
	natives := []Native{
		{Name: "sqrt", Doc: "square root", Fn: math.Sqrt},
		{Name: "abs", Doc: "absolute value", Fn: math.Abs},
		{Name: "exp", Doc: "e raised to x", Fn: math.Exp},
		{Name: "ln", Doc: "natural logarithm", Fn: math.Log},
		{Name: "log", Doc: "base-10 logarithm", Fn: math.Log10},
		{Name: "sin", Doc: "sine (radians)", Fn: math.Sin},
		{Name: "cos", Doc: "cosine (radians)", Fn: math.Cos},
		{Name: "tan", Doc: "tangent (radians)", Fn: math.Tan},
		{Name: "floor", Doc: "greatest integer <= x", Fn: math.Floor},
		{Name: "ceil", Doc: "least integer >= x", Fn: math.Ceil},
		{Name: "round", Doc: "nearest integer, half away from zero", Fn: math.Round},
	}

	m := make(map[string]Binding, len(natives))
	for _, n := range natives {
		m[n.Name] = n
	}

	return m
})

func makeBuiltins() map[string]Binding { return maps.Clone(builtinCache()) }

// Builtins returns the names of the native functions bound by default, in
// sorted order.
func Builtins() []string {
	return slices.Sorted(maps.Keys(builtinCache()))
}
