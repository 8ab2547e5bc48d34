package selection

import (
	"testing"

	"github.com/standardbeagle/uisel/internal/prompt"
	"github.com/standardbeagle/uisel/internal/resolve"
)

func resolution(name string) resolve.Resolution {
	return resolve.Resolution{
		Target:     resolve.Target{ComponentName: name, FilePath: resolve.DefaultPath(name), LineRange: resolve.LineRange{Start: 1, End: 50}},
		Confidence: resolve.ConfidenceHeuristic,
		Strategy:   "heuristic",
	}
}

func TestStateCommitReplacesTarget(t *testing.T) {
	s := NewState(0)
	s.SetGenerated("old prompt")
	s.Commit(resolution("Button"))
	s.Commit(resolution("Card"))

	if got := s.Target().ComponentName; got != "Card" {
		t.Errorf("Target = %q, want Card", got)
	}
	if s.Generated() != "" {
		t.Error("commit should drop the generated prompt")
	}

	// Returned target is a copy.
	s.Target().ComponentName = "Mutated"
	if got := s.Target().ComponentName; got != "Card" {
		t.Errorf("Target mutated through copy: %q", got)
	}
}

func TestStateHistory(t *testing.T) {
	s := NewState(3)
	for _, name := range []string{"A", "B", "C", "D"} {
		s.Commit(resolution(name))
	}

	h := s.History(0)
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3", len(h))
	}
	if h[0].Target.ComponentName != "D" || h[2].Target.ComponentName != "B" {
		t.Errorf("history order = %s, %s, %s", h[0].Target.ComponentName, h[1].Target.ComponentName, h[2].Target.ComponentName)
	}
	if h[0].Seq != 4 {
		t.Errorf("newest seq = %d, want 4", h[0].Seq)
	}
	if got := s.History(1); len(got) != 1 || got[0].Target.ComponentName != "D" {
		t.Errorf("History(1) = %+v", got)
	}

	s.ClearHistory()
	if len(s.History(0)) != 0 {
		t.Error("ClearHistory left entries")
	}
}

func TestStateSnapshotAndClear(t *testing.T) {
	s := NewState(DefaultHistorySize)
	s.Commit(resolution("Input"))
	s.SetInstruction(prompt.Instruction{FreeText: "only digits", Category: prompt.Fix})
	s.SetGenerated("Prompt:\n\n...")

	snap := s.Snapshot()
	if snap.Target == nil || snap.Target.ComponentName != "Input" || snap.Generated == "" {
		t.Errorf("Snapshot = %+v", snap)
	}

	s.Clear()
	if s.Target() != nil || s.Generated() != "" {
		t.Error("Clear left selection data")
	}
	if s.Instruction().FreeText != "only digits" {
		t.Error("Clear should keep the instruction text")
	}
}
