package profile

import (
	"slices"
	"testing"
)

func TestProfiler_Start_EmptyModeIsNoop(t *testing.T) {
	p := Profiler{Path: t.TempDir()}

	stop := p.Start()
	if _, ok := stop.(ignore); !ok {
		t.Fatalf("Start() = %T, want no-op", stop)
	}

	stop.Stop()
}

func TestProfiler_Start_UnknownModeIsNoop(t *testing.T) {
	if slices.Contains(Modes(), "bogus") {
		t.Fatal("bogus listed as a mode")
	}

	stop := Profiler{Mode: "bogus", Path: t.TempDir(), Quiet: true}.Start()
	if _, ok := stop.(ignore); !ok {
		t.Fatalf("Start() = %T, want no-op", stop)
	}

	stop.Stop()
}

func TestModes_Sorted(t *testing.T) {
	if m := Modes(); !slices.IsSorted(m) {
		t.Errorf("Modes() = %v, not sorted", m)
	}
}
