package clipboard

import (
	"testing"

	"github.com/standardbeagle/uisel/internal/prompt"
)

var (
	_ prompt.ClipboardWriter = System{}
	_ prompt.ClipboardWriter = (*Memory)(nil)
)

func TestMemory(t *testing.T) {
	var m Memory
	if err := m.WriteAll("File: src/components/Input.tsx"); err != nil {
		t.Fatal(err)
	}
	got, err := m.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if got != "File: src/components/Input.tsx" {
		t.Errorf("ReadAll = %q", got)
	}
}
