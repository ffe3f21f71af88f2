package lang

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/expr-lang/expr"
)

const fib = `
define fib(n) {
  if (n == 0) { return 0; }
  else if (n == 1) { return 1; }
  else { return fib(n - 1) + fib(n - 2); }
}
`

// evalAll evaluates src in a fresh environment and returns the value of its
// last construct.
func evalAll(t *testing.T, src string, opts ...Option) (float64, *Environment, error) {
	t.Helper()

	exprs, err := ParseAll(t.Context(), src)
	if err != nil {
		t.Fatalf("ParseAll(%q) error = %v", src, err)
	}

	env := NewEnvironment()

	var v float64

	for _, e := range exprs {
		if v, err = Evaluate(t.Context(), env, e, opts...); err != nil {
			return 0, env, err
		}
	}

	return v, env, nil
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{"literal", "42", 42},
		{"precedence", "1 + 2 * 3", 7},
		{"power right", "2^3^2", 512},
		{"power grouped", "(2^3)^2", 64},
		{"subtraction left", "8 - 3 - 2", 3},
		{"division left", "64 / 4 / 2", 8},
		{"mixed", "1 * 2 + 3 / 4 ^ 6", 2 + 3.0/4096},
		{"let value", "let y = 3", 3},
		{"let persists", "let x = 5; x * 2", 10},
		{"rebind", "let x = 1; let x = x + 1; x", 2},
		{"define value", "define f(a) { return a; }", 0},
		{"call", "define f(a) { return a + 1; } f(f(1))", 3},
		{"two params", "define sub(a, b) { return a - b; } sub(10, 4)", 6},
		{"fibonacci", fib + "fib(4)", 3},
		{"fibonacci ten", fib + "fib(10)", 55},
		{"else branch", "if (1 == 2) { 10; } else { 20; }", 20},
		{"first branch", "if (2 == 2) { 10; } else { 20; }", 10},
		{"else if branch", "let x = 2; if (x == 1) { 1; } else if (x == 2) { 2; } else { 3; }", 2},
		{"last expression", "define g(a) { let b = a * 2; b + 1; } g(3)", 7},
		{"early return", "define h(a) { return a; 99; } h(5)", 5},
		{"empty body", "define z() {} z()", 0},
		{"empty else", "if (1 == 2) { 5; } else {}", 0},
		{"return in branch", "define s(x) { if (x == 0) { return 7; } else { 1; } return 9; } s(0) * 10 + s(1)", 79},
		{"nested define", "define outer(x) { define inner(y) { return y * 2; } return inner(x) + 1; } outer(4)", 9},
		{"caller bindings visible", "let k = 3; define addk(a) { return a + k; } addk(1)", 4},
		{"native", "sqrt(16)", 4},
		{"native expression argument", "abs(0 - 3) + floor(2.7) + round(2.5)", 8},
		{"native shadowed", "define sqrt(x) { return x; } sqrt(16)", 16},
		{"top-level return", "return 3 + 4", 7},
		{"arguments in caller scope", "let n = 10; define f(n, m) { return m; } f(1, n)", 10},
		{"untaken branch not evaluated", "if (1 == 2) { undefinedfn(); } else { 5; }", 5},
		{"untaken else not evaluated", "if (1 == 1) { 5; } else { undefinedfn(); }", 5},
		{"first matching branch wins", "if (1 == 1) { 1; } else if (2 == 2) { 2; } else { 3; }", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := evalAll(t, tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("%q = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvaluate_DivisionByZero(t *testing.T) {
	tests := []struct {
		src   string
		check func(float64) bool
	}{
		{"1 / 0", func(v float64) bool { return math.IsInf(v, 1) }},
		{"0 - 1 / 0", func(v float64) bool { return math.IsInf(v, -1) }},
		{"0 / 0", math.IsNaN},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, _, err := evalAll(t, tt.src)
			if err != nil || !tt.check(got) {
				t.Errorf("%q = %v, %v", tt.src, got, err)
			}
		})
	}
}

func TestEvaluate_Scope(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check string // variable that must not be bound afterwards
		keep  map[string]float64
	}{
		{
			name:  "parameters do not leak",
			src:   "define f(p) { return p; } f(1)",
			check: "p",
		},
		{
			name:  "locals do not leak",
			src:   "let a = 1; define f() { let a = 2; let b = 3; return a; } f()",
			check: "b",
			keep:  map[string]float64{"a": 1},
		},
		{
			name:  "branch bindings do not leak",
			src:   "let q = 1; if (1 == 1) { let q = 5; let r = 2; } else { 0; }",
			check: "r",
			keep:  map[string]float64{"q": 1},
		},
		{
			name:  "nested define stays local",
			src:   "define outer() { define inner() { return 1; } return inner(); } outer()",
			check: "inner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env, err := evalAll(t, tt.src)
			if err != nil {
				t.Fatal(err)
			}

			if b, ok := env.Get(tt.check); ok {
				t.Errorf("%s leaked into caller: %v", tt.check, b)
			}

			for name, want := range tt.keep {
				if b, ok := env.Get(name); !ok || b != Value(want) {
					t.Errorf("%s = %v, want %v", name, b, want)
				}
			}
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opts    []Option
		wantErr error
		attrs   map[string]string
	}{
		{
			name:    "undefined variable",
			src:     "nope + 1",
			wantErr: ErrUndefinedVariable,
			attrs:   map[string]string{"name": "nope"},
		},
		{
			name:    "undefined function",
			src:     "nope(1)",
			wantErr: ErrUndefinedFunction,
			attrs:   map[string]string{"name": "nope"},
		},
		{
			name:    "later guard fails after a match",
			src:     "if (1 == 1) { 1; } else if (nope == 1) { 2; } else { 3; }",
			wantErr: ErrUndefinedVariable,
			attrs:   map[string]string{"name": "nope"},
		},
		{
			name:    "function used as variable",
			src:     "define f(a) { return a; } f + 1",
			wantErr: ErrInvalidVariableReference,
			attrs:   map[string]string{"name": "f", "kind": "function"},
		},
		{
			name:    "native used as variable",
			src:     "sqrt",
			wantErr: ErrInvalidVariableReference,
			attrs:   map[string]string{"name": "sqrt", "kind": "native"},
		},
		{
			name:    "value called",
			src:     "let x = 1; x(2)",
			wantErr: ErrInvalidFunctionReference,
			attrs:   map[string]string{"name": "x", "kind": "value"},
		},
		{
			name:    "too many arguments",
			src:     "define f(a) { return a; } f(1, 2)",
			wantErr: ErrInvalidArguments,
			attrs:   map[string]string{"name": "f", "expected": "1", "actual": "2"},
		},
		{
			name:    "too few arguments",
			src:     "define f(a, b) { return a; } f(1)",
			wantErr: ErrInvalidArguments,
			attrs:   map[string]string{"expected": "2", "actual": "1"},
		},
		{
			name:    "native arity",
			src:     "sqrt(1, 2)",
			wantErr: ErrInvalidNativeArguments,
			attrs:   map[string]string{"name": "sqrt", "actual": "2"},
		},
		{
			name:    "native without argument",
			src:     "sqrt()",
			wantErr: ErrInvalidNativeArguments,
			attrs:   map[string]string{"actual": "0"},
		},
		{
			name:    "error in argument",
			src:     "define f(a) { return a; } f(missing)",
			wantErr: ErrUndefinedVariable,
		},
		{
			name:    "error in body",
			src:     "define f(a) { return a + missing; } f(1)",
			wantErr: ErrUndefinedVariable,
		},
		{
			name:    "unbounded recursion",
			src:     "define f(n) { return f(n + 1); } f(0)",
			opts:    []Option{WithMaxDepth(10)},
			wantErr: ErrMaxDepthExceeded,
			attrs:   map[string]string{"limit": "10"},
		},
		{
			name:    "default depth limit",
			src:     "define f(n) { return f(n + 1); } f(0)",
			wantErr: ErrMaxDepthExceeded,
			attrs:   map[string]string{"limit": strconv.Itoa(DefaultMaxDepth)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := evalAll(t, tt.src, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("%q error = %v, want %v", tt.src, err, tt.wantErr)
			}

			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not *Error", err)
			}

			for key, want := range tt.attrs {
				if got, ok := le.Attr(key); !ok || got.String() != want {
					t.Errorf("Attr(%q) = %v, %v; want %s", key, got, ok, want)
				}
			}
		})
	}
}

func TestEvaluate_DepthBoundary(t *testing.T) {
	const countdown = `define c(n) { if (n == 0) { return 0; } else { return c(n - 1); } } c(50)`

	// c(50) nests 51 calls.
	if _, _, err := evalAll(t, countdown, WithMaxDepth(51)); err != nil {
		t.Errorf("depth 51: %v", err)
	}

	if _, _, err := evalAll(t, countdown, WithMaxDepth(50)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("depth 50: error = %v, want ErrMaxDepthExceeded", err)
	}

	if _, _, err := evalAll(t, countdown, WithMaxDepth(0)); err != nil {
		t.Errorf("unlimited: %v", err)
	}
}

// oracle evaluates src with expr-lang/expr, whose operators agree with
// ours on precedence and associativity.
func oracle(t *testing.T, src string) float64 {
	t.Helper()

	out, err := expr.Eval(src, nil)
	if err != nil {
		t.Fatalf("expr.Eval(%q) error = %v", src, err)
	}

	switch v := out.(type) {
	case int:
		return float64(v)
	case float64:
		return v
	default:
		t.Fatalf("expr.Eval(%q) = %T", src, out)

		return 0
	}
}

func sameFloat(a, b float64) bool {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return math.IsNaN(a) && math.IsNaN(b)
	case math.IsInf(a, 0) || math.IsInf(b, 0):
		return a == b
	case a == b:
		return true
	}

	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func TestEvaluate_Oracle(t *testing.T) {
	for _, src := range []string{
		"1 + 2 * 3",
		"2 ^ 3 ^ 2",
		"(1 + 2) * (3 + 4) / 5",
		"100 / 7 / 3",
		"10 - 4 - 3 - 2",
		"2 ^ 10 - 1",
		"1.5 * 4 ^ 0.5 + 3 / 8",
		"((2))",
		"1 * 2 + 3 / 4 ^ 6",
		"9 - 2 ^ 3 * 2 / 4 + 1",
		"1e3 / 8",
	} {
		t.Run(src, func(t *testing.T) {
			got, _, err := evalAll(t, src)
			if err != nil {
				t.Fatal(err)
			}

			if want := oracle(t, src); !sameFloat(got, want) {
				t.Errorf("%q = %v, oracle %v", src, got, want)
			}
		})
	}
}

// randomMath builds a random arithmetic expression of the given depth. The
// depth is kept small so that integer arithmetic in the oracle is exact.
func randomMath(r *rand.Rand, depth int) string {
	if depth == 0 || r.IntN(4) == 0 {
		return strconv.Itoa(r.IntN(20))
	}

	ops := []string{"+", "-", "*", "/"}
	left := randomMath(r, depth-1)
	right := randomMath(r, depth-1)

	if r.IntN(3) == 0 {
		return "(" + left + " " + ops[r.IntN(len(ops))] + " " + right + ")"
	}

	return left + " " + ops[r.IntN(len(ops))] + " " + right
}

func TestEvaluate_RandomOracle(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for i := range 200 {
		src := randomMath(r, 3)

		got, _, err := evalAll(t, src)
		if err != nil {
			t.Fatalf("#%d %q: %v", i, src, err)
		}

		if want := oracle(t, src); !sameFloat(got, want) {
			t.Errorf("#%d %q = %v, oracle %v", i, src, got, want)
		}

		// The canonical rendering must evaluate the same.
		exprs, _ := ParseAll(t.Context(), src)
		rendered := exprs[0].String()

		again, _, err := evalAll(t, rendered)
		if err != nil || !sameFloat(again, got) {
			t.Errorf("#%d rendering %q = %v, %v; want %v", i, rendered, again, err, got)
		}
	}
}
