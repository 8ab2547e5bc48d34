// Package clipboard writes prompts to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("system clipboard unavailable")

// System is the operating system clipboard.
type System struct{}

// WriteAll replaces the clipboard contents with text.
func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// ReadAll returns the clipboard contents.
func (System) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return s, nil
}

// Memory is an in-process clipboard.
type Memory struct {
	text string
}

// WriteAll stores text.
func (m *Memory) WriteAll(text string) error {
	m.text = text
	return nil
}

// ReadAll returns the stored text.
func (m *Memory) ReadAll() (string, error) {
	return m.text, nil
}
