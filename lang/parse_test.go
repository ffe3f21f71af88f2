package lang

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
)

func num(v float64) Expr                  { return &Number{Value: v} }
func ref(name string) Expr                { return &Var{Name: name} }
func bin(op Op, l, r Expr) Expr           { return &Binary{Op: op, Left: l, Right: r} }
func call(name string, args ...Expr) Expr { return &Call{Name: name, Args: args} }

func TestParse_Shape(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Expr
	}{
		{
			name: "integer",
			src:  "42",
			want: num(42),
		},
		{
			name: "decimal exponent",
			src:  "1.25e2",
			want: num(125),
		},
		{
			name: "precedence",
			src:  "1 * 2 + 3 / 4 ^ 6",
			want: bin(OpAdd,
				bin(OpMul, num(1), num(2)),
				bin(OpDiv, num(3), bin(OpPow, num(4), num(6)))),
		},
		{
			name: "power groups right",
			src:  "2^3^2",
			want: bin(OpPow, num(2), bin(OpPow, num(3), num(2))),
		},
		{
			name: "subtraction groups left",
			src:  "8 - 3 - 2",
			want: bin(OpSub, bin(OpSub, num(8), num(3)), num(2)),
		},
		{
			name: "parentheses",
			src:  "(1 + 2) * x",
			want: bin(OpMul, bin(OpAdd, num(1), num(2)), ref("x")),
		},
		{
			name: "call",
			src:  "f(1, g(y), 2 + 3)",
			want: call("f", num(1), call("g", ref("y")), bin(OpAdd, num(2), num(3))),
		},
		{
			name: "call without arguments",
			src:  "now ()",
			want: &Call{Name: "now"},
		},
		{
			name: "let",
			src:  "let x = 1 + y",
			want: &Let{Name: "x", Value: bin(OpAdd, num(1), ref("y"))},
		},
		{
			name: "return",
			src:  "return a",
			want: &Return{Value: ref("a")},
		},
		{
			name: "define",
			src:  "define f(a, b) { let c = a; return c * b; }",
			want: &Define{
				Name:   "f",
				Params: []string{"a", "b"},
				Body: []Expr{
					&Let{Name: "c", Value: ref("a")},
					&Return{Value: bin(OpMul, ref("c"), ref("b"))},
				},
			},
		},
		{
			name: "define empty",
			src:  "define f() {}",
			want: &Define{Name: "f"},
		},
		{
			name: "if chain",
			src:  "if (x == 1) { 2; } else if (x == 2) { 3; } else { 4; }",
			want: &If{
				Branches: []Branch{
					{Left: ref("x"), Right: num(1), Body: []Expr{num(2)}},
					{Left: ref("x"), Right: num(2), Body: []Expr{num(3)}},
				},
				Else: []Expr{num(4)},
			},
		},
		{
			name: "nested block without separator",
			src:  "define f(n) { if (n == 0) { return 1; } else { return 2; } n; }",
			want: &Define{
				Name:   "f",
				Params: []string{"n"},
				Body: []Expr{
					&If{
						Branches: []Branch{{Left: ref("n"), Right: num(0), Body: []Expr{&Return{Value: num(1)}}}},
						Else:     []Expr{&Return{Value: num(2)}},
					},
					ref("n"),
				},
			},
		},
		{
			name: "comments",
			src:  "1 /* one */ + # plus\n 2 // two",
			want: bin(OpAdd, num(1), num(2)),
		},
		{
			name: "keyword prefix is a name",
			src:  "letter + iffy",
			want: bin(OpAdd, ref("letter"), ref("iffy")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAll(t.Context(), tt.src)
			if err != nil {
				t.Fatalf("ParseAll(%q) error = %v", tt.src, err)
			}

			if len(got) != 1 {
				t.Fatalf("ParseAll(%q) = %d constructs, want 1", tt.src, len(got))
			}

			if !reflect.DeepEqual(got[0], tt.want) {
				t.Errorf("ParseAll(%q) = %s, want %s", tt.src, got[0], tt.want)
			}
		})
	}
}

func TestParse_Remainder(t *testing.T) {
	e, rest, err := Parse(t.Context(), "  let x = 1; x + 1")
	if err != nil {
		t.Fatal(err)
	}

	if e.Kind() != KindLet || rest != "; x + 1" {
		t.Errorf("Parse() = %s, %q", e, rest)
	}

	_, rest, err = Parse(t.Context(), "1 +")
	if !IsIncomplete(err) || rest != "1 +" {
		t.Errorf("Parse(incomplete) = %q, %v", rest, err)
	}

	if _, rest, err = Parse(t.Context(), "1 /* open"); !IsIncomplete(err) || rest != "1 /* open" {
		t.Errorf("Parse(open comment) = %q, %v", rest, err)
	}
}

func TestParseAll_Separators(t *testing.T) {
	got, err := ParseAll(t.Context(), ";; 1;\n2 ;3\n# done\n")
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d constructs, want 3", len(got))
	}

	// Closing braces and comments separate constructs on their own.
	tight, err := ParseAll(t.Context(), "define f() {}f()/* c */x")
	if err != nil || len(tight) != 3 {
		t.Errorf("ParseAll(tight) = %v, %v", tight, err)
	}

	blank, err := ParseAll(t.Context(), "  ; /* nothing */ ;\n")
	if err != nil || len(blank) != 0 {
		t.Errorf("ParseAll(blank) = %v, %v", blank, err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		wantPos string
		wantMsg string
	}{
		{
			name:    "unexpected token",
			src:     ")",
			wantErr: ErrParse,
			wantPos: "1:1",
			wantMsg: `parse error at 1:1: expected operand, found ")"`,
		},
		{
			name:    "second line",
			src:     "let x = 1\nlet y = )",
			wantErr: ErrParse,
			wantPos: "2:9",
		},
		{
			name:    "reserved binding",
			src:     "let if = 1",
			wantErr: ErrParse,
			wantPos: "1:5",
			wantMsg: `parse error at 1:5: "if" is a reserved word`,
		},
		{
			name:    "reserved operand",
			src:     "1 + else;",
			wantErr: ErrParse,
			wantPos: "1:5",
		},
		{
			name:    "parameter list",
			src:     "define f(a { }",
			wantErr: ErrParse,
			wantPos: "1:12",
		},
		{
			name:    "missing else",
			src:     "if (1 == 1) { 2; } x",
			wantErr: ErrParse,
			wantPos: "1:20",
		},
		{
			name:    "missing separator in block",
			src:     "define f() { 1 2 }",
			wantErr: ErrParse,
			wantPos: "1:16",
		},
		{
			name:    "guard without equality",
			src:     "if (1) { 2; } else { 3; }",
			wantErr: ErrParse,
			wantPos: "1:6",
		},
		{
			name:    "fraction digit",
			src:     "1.x",
			wantErr: ErrParse,
			wantPos: "1:3",
		},
		{
			name:    "number against name",
			src:     "2x",
			wantErr: ErrParse,
			wantPos: "1:2",
			wantMsg: `parse error at 1:2: expected separator, found "x"`,
		},
		{
			name:    "call against call",
			src:     "f(1)g(2)",
			wantErr: ErrParse,
			wantPos: "1:5",
		},
		{
			name:    "non-ascii name",
			src:     "é",
			wantErr: ErrParse,
			wantPos: "1:1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAll(t.Context(), tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseAll(%q) error = %v, want %v", tt.src, err, tt.wantErr)
			}

			if IsIncomplete(err) {
				t.Errorf("ParseAll(%q) reported incomplete input", tt.src)
			}

			var le *Error
			if !errors.As(err, &le) {
				t.Fatalf("error %T is not *Error", err)
			}

			if pos, ok := le.Position(); !ok || pos.String() != tt.wantPos {
				t.Errorf("position = %v, want %s", pos, tt.wantPos)
			}

			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParse_Incomplete(t *testing.T) {
	for _, src := range []string{
		"1 +",
		"(1 + 2",
		"f(1, 2",
		"let",
		"let x",
		"let x =",
		"return",
		"define f(a",
		"define f(a) {",
		"define f(a) { return a;",
		"if (1 == 1) { 2; }",
		"if (1 == 1) { 2; } el",
		"if (1 == 1) { 2; } else",
		"if (1 =",
		"1.",
		"2e",
		"/* open",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := ParseAll(t.Context(), src)
			if !IsIncomplete(err) {
				t.Errorf("ParseAll(%q) error = %v, want ErrIncomplete", src, err)
			}

			if errors.Is(err, ErrParse) {
				t.Errorf("ParseAll(%q) also matches ErrParse", src)
			}
		})
	}
}

func TestParse_Nesting(t *testing.T) {
	deep := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)

	if _, err := ParseAll(t.Context(), deep); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("default nesting: error = %v, want ErrMaxDepthExceeded", err)
	}

	if _, err := ParseAll(t.Context(), deep, WithMaxNesting(0)); err != nil {
		t.Errorf("unlimited nesting: error = %v", err)
	}

	if _, err := ParseAll(t.Context(), "((((1))))", WithMaxNesting(3)); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("nesting 3: error = %v, want ErrMaxDepthExceeded", err)
	}

	if _, err := ParseAll(t.Context(), "(((1)))", WithMaxNesting(3)); err != nil {
		t.Errorf("nesting 3: error = %v", err)
	}
}

func TestKeywords(t *testing.T) {
	kw := Keywords()

	if !slices.IsSorted(kw) {
		t.Errorf("Keywords() = %v, not sorted", kw)
	}

	for _, word := range kw {
		if !IsReserved(word) {
			t.Errorf("IsReserved(%q) = false", word)
		}
	}

	if IsReserved("sqrt") || IsReserved("lets") {
		t.Error("IsReserved reports a non-keyword")
	}
}

func TestWalk(t *testing.T) {
	exprs, err := ParseAll(t.Context(), "define f(a) { if (a == 1) { return g(a); } else { let b = 2 ^ a; } }")
	if err != nil {
		t.Fatal(err)
	}

	var kinds []string
	for e := range Walk(exprs[0]) {
		kinds = append(kinds, e.Kind().String())
	}

	want := []string{"define", "if", "var", "number", "return", "call", "var", "let", "binary", "number", "var"}
	if !slices.Equal(kinds, want) {
		t.Errorf("Walk() kinds = %v, want %v", kinds, want)
	}
}

func TestKind_String(t *testing.T) {
	exprs, err := ParseAll(t.Context(), "1; x; 1 + x; let y = 2; define f() {} f(); return 1; if (1 == 1) {} else {}")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"number", "var", "binary", "let", "define", "call", "return", "if"}
	for i, e := range exprs {
		if got := e.Kind().String(); got != want[i] {
			t.Errorf("Kind(%s) = %q, want %q", e, got, want[i])
		}
	}

	if got := Kind(42).String(); got != "Kind(42)" {
		t.Errorf("Kind(42).String() = %q", got)
	}
}
