package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/bcalc/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after plus", "a + fo", 6, "fo", 4, 6},
		{"after paren", "double(fo", 9, "fo", 7, 9},
		{"after comma", "add(a, fo", 9, "fo", 7, 9},
		{"after caret", "x^fo", 4, "fo", 2, 4},
		{"after equals", "let x = fo", 10, "fo", 8, 10},
		{"digits delimit", "2fo", 3, "fo", 1, 3},
		{"empty at boundary", "a + ", 4, "", 4, 4},
		{"mid word", "foobar", 3, "foobar", 0, 6},
		{"at start", "foo", 0, "foo", 0, 3},
		{"between operators", "a+b", 2, "b", 2, 3},
		{"cursor clamped", "ab", 10, "ab", 0, 2},
		{"empty input", "", 0, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestNameCandidates(t *testing.T) {
	env := lang.NewEnvironment(lang.WithoutBuiltins()).
		Bind("total", lang.Value(1)).
		Bind("fib", lang.Function{Params: []string{"n"}})

	got := nameCandidates(env)
	want := []string{"define", "else", "fib", "if", "let", "return", "total"}

	if !slices.Equal(got, want) {
		t.Errorf("nameCandidates() = %q, want %q", got, want)
	}
}

func TestCompleteLine(t *testing.T) {
	env := lang.NewEnvironment().Bind("total", lang.Value(1))

	tests := []struct {
		name string
		line string
		want string // must be among the completions
		none bool
	}{
		{"variable", "1 + tot", "1 + total", false},
		{"native", "sq", "sqrt", false},
		{"keyword", "defi", "define", false},
		{"inside call", "sqrt(tot", "sqrt(total", false},
		{"no word", "1 + ", "", true},
		{"no match", "zzzz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := completeLine(env, tt.line)

			if tt.none {
				if len(got) != 0 {
					t.Errorf("completeLine(%q) = %q, want none", tt.line, got)
				}

				return
			}

			if !slices.Contains(got, tt.want) {
				t.Errorf("completeLine(%q) = %q, want it to contain %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestCompleteCommand(t *testing.T) {
	if got := completeCommand(":re"); !slices.Equal(got, []string{":reset"}) {
		t.Errorf("completeCommand(:re) = %q", got)
	}

	if got := completeCommand(":"); len(got) != len(lineCommands()) {
		t.Errorf("completeCommand(:) = %q, want all commands", got)
	}
}

func TestIsCallable(t *testing.T) {
	env := lang.NewEnvironment().
		Bind("f", lang.Function{}).
		Bind("x", lang.Value(0))

	for name, want := range map[string]bool{
		"f": true, "sqrt": true, "x": false, "missing": false,
	} {
		if got := isCallable(env, name); got != want {
			t.Errorf("isCallable(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("a", []string{"abs", "alpha", "tan", "cat"})
	callable := func(name string) bool { return name == "abs" }

	bar := stripANSI(renderCandidateBar(matches, -1, false, 80, callable))
	if !strings.Contains(bar, "abs()") || !strings.Contains(bar, "alpha") {
		t.Errorf("renderCandidateBar() = %q, want abs() and alpha", bar)
	}

	if strings.Contains(bar, "alpha()") {
		t.Errorf("renderCandidateBar() = %q, non-function rendered callable", bar)
	}

	narrow := stripANSI(renderCandidateBar(matches, -1, false, 8, callable))
	if !strings.HasSuffix(narrow, "...") {
		t.Errorf("renderCandidateBar(width 8) = %q, want ellipsis", narrow)
	}

	if got := renderCandidateBar(nil, -1, false, 80, callable); got != "" {
		t.Errorf("renderCandidateBar(nil) = %q, want empty", got)
	}
}

func TestListBindings(t *testing.T) {
	env := lang.NewEnvironment().
		Bind("x", lang.Value(2)).
		Bind("f", lang.Function{Params: []string{"a"}})

	got := stripANSI(listBindings(env))

	userAt := strings.Index(got, "x = 2")
	nativeAt := strings.Index(got, "sqrt(x)")

	if userAt < 0 || nativeAt < 0 || !strings.Contains(got, "define f(a)") {
		t.Fatalf("listBindings() = %q", got)
	}

	if userAt > nativeAt {
		t.Errorf("listBindings() lists natives before user bindings")
	}

	empty := stripANSI(listBindings(lang.NewEnvironment(lang.WithoutBuiltins())))
	if !strings.Contains(empty, "no bindings") {
		t.Errorf("listBindings(empty) = %q", empty)
	}
}
