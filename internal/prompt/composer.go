package prompt

import (
	"errors"

	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/resolve"
)

// ClipboardWriter is the clipboard collaborator.
type ClipboardWriter interface {
	WriteAll(text string) error
}

// Composer generates and copies prompts, reporting every outcome through a
// notifier.
type Composer struct {
	notifier  notify.Notifier
	clipboard ClipboardWriter
}

// NewComposer creates a composer. A nil clipboard makes Copy fail.
func NewComposer(n notify.Notifier, clip ClipboardWriter) *Composer {
	return &Composer{notifier: n, clipboard: clip}
}

// Generate synthesizes the prompt. It emits exactly one notification:
// success with the text, or an error and no output.
func (c *Composer) Generate(target *resolve.Target, in Instruction) (string, error) {
	out, err := Synthesize(target, in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.notify(ValidationMessage, notify.Error)
		} else {
			c.notify("Failed to generate prompt", notify.Error)
		}
		debug.Log("prompt", "generate rejected: %v", err)
		return "", err
	}
	c.notify("Prompt generated successfully!", notify.Success)
	debug.Log("prompt", "generated %s prompt for %s", in.Effective(), target.ComponentName)
	return out, nil
}

// Copy writes the clipboard payload for target and a generated prompt.
func (c *Composer) Copy(target *resolve.Target, generated string) (string, error) {
	text, err := ClipboardText(target, generated)
	if err != nil {
		c.notify("Please generate a prompt first", notify.Error)
		return "", err
	}
	if c.clipboard == nil {
		c.notify("Failed to copy to clipboard", notify.Error)
		return "", errors.New("no clipboard available")
	}
	if err := c.clipboard.WriteAll(text); err != nil {
		debug.Warn("prompt", "clipboard write failed: %v", err)
		c.notify("Failed to copy to clipboard", notify.Error)
		return "", err
	}
	c.notify("Copied to clipboard!", notify.Success)
	return text, nil
}

func (c *Composer) notify(msg string, kind notify.Kind) {
	if c.notifier != nil {
		c.notifier.Notify(msg, kind)
	}
}
