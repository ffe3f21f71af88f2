package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{Line: "let x = 1", Mode: modeEval},
		{Line: "list", Mode: modeCtrl},
		{Line: "define f(a) {\n  return a;\n}", Mode: modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	want := "E:let x = 1\nC:list\nE:define f(a) { return a; }\n"
	if string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if reloaded.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", reloaded.Len())
	}

	entry, err := reloaded.Entry(1)
	if err != nil || entry != (HistoryEntry{Line: "list", Mode: modeCtrl}) {
		t.Errorf("Entry(1) = %+v, %v", entry, err)
	}

	evals := slices.Collect(reloaded.Lines(modeEval))
	if !slices.Equal(evals, []string{"let x = 1", "define f(a) { return a; }"}) {
		t.Errorf("Lines(eval) = %q", evals)
	}
}

func TestHistory_Dedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"1", "2", "2", "1"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	// Same text in another mode is a distinct entry.
	if err := h.Add("1", modeCtrl); err != nil {
		t.Fatal(err)
	}

	got := slices.Collect(h.Lines(modeEval))
	if !slices.Equal(got, []string{"2", "1"}) {
		t.Errorf("Lines(eval) = %q, want [2 1]", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if want := "E:2\nE:1\nC:1\n"; string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}
}

func TestHistory_Bounds(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("   ", modeEval); err != nil || h.Len() != 0 {
		t.Fatalf("blank Add: len=%d err=%v", h.Len(), err)
	}

	if err := h.Add("x", modeEval); err != nil {
		t.Fatal(err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) err = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestDecodeHistory(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:1 + 2", HistoryEntry{Line: "1 + 2", Mode: modeEval}},
		{"C:quit", HistoryEntry{Line: "quit", Mode: modeCtrl}},
		{"legacy", HistoryEntry{Line: "legacy", Mode: modeEval}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := decodeHistory(tt.line); got != tt.want {
				t.Errorf("decodeHistory(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
