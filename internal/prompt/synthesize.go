package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/standardbeagle/uisel/internal/resolve"
)

// Header opens every generated instruction.
const Header = "Prompt:"

// ValidationMessage is shown to the user when a prompt cannot be generated.
const ValidationMessage = "Please select an element and enter a prompt"

var (
	// ErrNoTarget means no element has been selected.
	ErrNoTarget = errors.New("no element selected")
	// ErrEmptyIntent means the instruction text is blank.
	ErrEmptyIntent = errors.New("instruction text is empty")
	// ErrNothingGenerated means a copy was requested before generating.
	ErrNothingGenerated = errors.New("no prompt generated")
)

// ValidationError reports input that prevents prompt generation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid prompt input: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Synthesize renders the instruction for target. It never has side effects.
func Synthesize(target *resolve.Target, in Instruction) (string, error) {
	if target == nil {
		return "", &ValidationError{Err: ErrNoTarget}
	}
	if strings.TrimSpace(in.FreeText) == "" {
		return "", &ValidationError{Err: ErrEmptyIntent}
	}

	text := in.FreeText
	path := target.FilePath
	name := strings.ToLower(target.ComponentName)
	lines := fmt.Sprintf("lines %d–%d", target.LineRange.Start, target.LineRange.End)

	var body string
	switch cat := in.Effective(); cat {
	case Edit:
		body = fmt.Sprintf("In %s %s, update the %s component to %s.", path, lines, name, text)
	case Fix:
		body = fmt.Sprintf("In %s %s, fix the %s so %s.", path, lines, name, text)
	case Add:
		body = fmt.Sprintf("In %s, %s. Ensure it's properly connected and follows the existing code patterns.", path, text)
	case Refactor:
		body = fmt.Sprintf("In %s %s, refactor the %s to %s, preserving existing behavior.", path, lines, name, text)
	case Explain:
		body = fmt.Sprintf("Explain the logic of %s %s and %s", path, lines, text)
	default:
		return "", fmt.Errorf("unhandled prompt category %v", cat)
	}
	return Header + "\n\n" + body, nil
}

// ClipboardText is the payload copied for the assistant: the target's source
// location and snippet followed by the generated instruction.
func ClipboardText(target *resolve.Target, generated string) (string, error) {
	if strings.TrimSpace(generated) == "" {
		return "", ErrNothingGenerated
	}
	if target == nil {
		return "", ErrNoTarget
	}
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", target.FilePath)
	fmt.Fprintf(&b, "Lines: %d–%d\n\n", target.LineRange.Start, target.LineRange.End)
	fmt.Fprintf(&b, "Context:\n%s\n\n", target.CodeSnippet)
	b.WriteString(generated)
	return b.String(), nil
}
