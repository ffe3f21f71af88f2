package repl

import (
	"bytes"
	"io"
	"slices"
	"testing"

	"github.com/peterh/liner"

	"github.com/ardnew/bcalc/lang"
	"github.com/ardnew/bcalc/log"
)

// scriptedReader replays lines as if typed at a prompt, recording the prompts
// shown. An error in the script is returned instead of a line.
type scriptedReader struct {
	script  []any // string or error
	prompts []string
	history []string
}

func (r *scriptedReader) Prompt(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)

	if len(r.script) == 0 {
		return "", io.EOF
	}

	next := r.script[0]
	r.script = r.script[1:]

	if err, ok := next.(error); ok {
		return "", err
	}

	return next.(string), nil
}

func (r *scriptedReader) AppendHistory(item string) { r.history = append(r.history, item) }

func TestRunLines(t *testing.T) {
	tests := []struct {
		name        string
		script      []any
		want        string
		wantPrompts []string
	}{
		{
			name:        "values",
			script:      []any{"let x = 3", "x ^ 2"},
			want:        "3\n9\n\n",
			wantPrompts: []string{"> ", "> ", "> "},
		},
		{
			name:        "continuation",
			script:      []any{"define f(a) {", "return a + 1;", "}", "f(1)"},
			want:        "0\n2\n\n",
			wantPrompts: []string{"> ", ". ", ". ", "> ", "> "},
		},
		{
			name:        "error then recovery",
			script:      []any{"1 / (", ")", "2"},
			want:        "error: parse error at 2:1: expected operand, found \")\"\n  2 | )\n      ^\n2\n\n",
			wantPrompts: []string{"> ", ". ", "> ", "> "},
		},
		{
			name:        "ctrl-c discards pending",
			script:      []any{"1 +", liner.ErrPromptAborted, "5"},
			want:        "5\n\n",
			wantPrompts: []string{"> ", ". ", "> ", "> "},
		},
		{
			name:        "quit command",
			script:      []any{"1", ":quit", "2"},
			want:        "1\n",
			wantPrompts: []string{"> ", "> "},
		},
		{
			name:   "unknown command",
			script: []any{":bogus"},
			want:   "unknown command: bogus (try :help)\n\n",
		},
		{
			name:   "reset command",
			script: []any{"let z = 1", ":reset", "z"},
			want:   "1\nerror: undefined variable: z\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			r := &scriptedReader{script: tt.script}
			eng := newEngine(lang.NewSession(), log.Logger{})

			if err := runLines(t.Context(), eng, r, &out, NewHistory("")); err != nil {
				t.Fatalf("runLines() error = %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}

			if tt.wantPrompts != nil && !slices.Equal(r.prompts, tt.wantPrompts) {
				t.Errorf("prompts = %q, want %q", r.prompts, tt.wantPrompts)
			}
		})
	}
}

func TestRunLines_History(t *testing.T) {
	r := &scriptedReader{script: []any{"1 + 1", "   ", ":list"}}
	h := NewHistory("")

	if err := runLines(t.Context(), newEngine(lang.NewSession(), log.Logger{}), r, io.Discard, h); err != nil {
		t.Fatal(err)
	}

	if want := []string{"1 + 1", ":list"}; !slices.Equal(r.history, want) {
		t.Errorf("liner history = %q, want %q", r.history, want)
	}

	if got := slices.Collect(h.Lines(modeCtrl)); !slices.Equal(got, []string{"list"}) {
		t.Errorf("ctrl history = %q", got)
	}
}
