package selection

import (
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/standardbeagle/uisel/internal/prompt"
	"github.com/standardbeagle/uisel/internal/resolve"
)

// DefaultHistorySize is the number of past selections kept per page.
const DefaultHistorySize = 20

// HistoryEntry is one past selection.
type HistoryEntry struct {
	Seq        uint64             `json:"seq"`
	Target     resolve.Target     `json:"target"`
	Confidence resolve.Confidence `json:"confidence"`
	Strategy   string             `json:"strategy"`
	At         time.Time          `json:"at"`
}

// Snapshot is a copy of the state at one moment.
type Snapshot struct {
	Target      *resolve.Target    `json:"target,omitempty"`
	Instruction prompt.Instruction `json:"instruction"`
	Generated   string             `json:"generated,omitempty"`
}

// State holds the current selection, the pending instruction and the last
// generated prompt for one page. Nothing is persisted.
type State struct {
	mu          sync.RWMutex
	current     *resolve.Target
	instruction prompt.Instruction
	generated   string
	seq         uint64
	history     *lru.Cache[string, HistoryEntry]
}

// NewState creates a state that remembers up to historySize selections.
func NewState(historySize int) *State {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	// lru.New only fails for a non-positive size.
	h, _ := lru.New[string, HistoryEntry](historySize)
	return &State{history: h}
}

// Commit replaces the current target and records it in history. A previously
// generated prompt no longer matches the target and is dropped.
func (s *State) Commit(res resolve.Resolution) HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := res.Target
	s.current = &t
	s.generated = ""
	s.seq++
	entry := HistoryEntry{
		Seq:        s.seq,
		Target:     t,
		Confidence: res.Confidence,
		Strategy:   res.Strategy,
		At:         time.Now(),
	}
	s.history.Add(strconv.FormatUint(s.seq, 10), entry)
	return entry
}

// Target returns a copy of the current target, or nil when nothing is
// selected.
func (s *State) Target() *resolve.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}

// SetInstruction replaces the pending instruction.
func (s *State) SetInstruction(in prompt.Instruction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instruction = in
}

// Instruction returns the pending instruction.
func (s *State) Instruction() prompt.Instruction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.instruction
}

// SetGenerated records the last generated prompt.
func (s *State) SetGenerated(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated = text
}

// Generated returns the last generated prompt.
func (s *State) Generated() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generated
}

// Snapshot returns a copy of the whole state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Instruction: s.instruction, Generated: s.generated}
	if s.current != nil {
		t := *s.current
		snap.Target = &t
	}
	return snap
}

// Clear drops the current target and the generated prompt. The pending
// instruction text and history are kept.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.generated = ""
}

// History returns up to limit past selections, newest first. A limit of zero
// or less returns all of them.
func (s *State) History(limit int) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.history.Keys()
	out := make([]HistoryEntry, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if e, ok := s.history.Peek(keys[i]); ok {
			out = append(out, e)
		}
	}
	return out
}

// ClearHistory forgets all past selections.
func (s *State) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Purge()
}
