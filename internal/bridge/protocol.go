// Package bridge connects browser pages running the picker script to the
// selection engine over websockets.
package bridge

import (
	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/overlay"
	"github.com/standardbeagle/uisel/internal/prompt"
	"github.com/standardbeagle/uisel/internal/resolve"
	"github.com/standardbeagle/uisel/internal/selection"
)

// Inbound message types sent by the page script.
const (
	InHello        = "hello"
	InPointerMove  = "pointermove"
	InPointerLeave = "pointerleave"
	InClick        = "click"
	InToggle       = "toggle"
	InEnable       = "enable"
	InDisable      = "disable"
	InReset        = "reset"
	InInstruction  = "instruction"
	InGenerate     = "generate"
	InCopy         = "copy"
	InToasts       = "toasts"
	InDismiss      = "dismiss"
	InPing         = "ping"
)

// Outbound message types sent to the page script.
const (
	OutConfig   = "config"
	OutListen   = "listen"
	OutUnlisten = "unlisten"
	OutOverlay  = "overlay"
	OutMode     = "mode"
	OutSelected = "selected"
	OutPrompt   = "prompt"
	OutCopied   = "copied"
	OutToast    = "toast"
	OutState    = "state"
	OutError    = "error"
	OutPong     = "pong"
)

// Overlay operations carried in OutOverlay messages.
const (
	OverlayCreate = "create"
	OverlayShow   = "show"
	OverlayHide   = "hide"
	OverlayPulse  = "pulse"
	OverlayRemove = "remove"
)

// Inbound is a message from the page.
type Inbound struct {
	Type     string             `json:"type"`
	URL      string             `json:"url,omitempty"`
	Title    string             `json:"title,omitempty"`
	Event    *dom.EventSnapshot `json:"event,omitempty"`
	Text     string             `json:"text,omitempty"`
	Category string             `json:"category,omitempty"`
	Enabled  *bool              `json:"enabled,omitempty"`
	ID       string             `json:"id,omitempty"`
}

// PageConfig tells the script how to scope events.
type PageConfig struct {
	PageID        string `json:"pageId"`
	Container     string `json:"container"`
	Exclude       string `json:"exclude"`
	Annotation    string `json:"annotation"`
	ToastPosition string `json:"toastPosition"`
	ToastsEnabled bool   `json:"toastsEnabled"`
	PulseMillis   int64  `json:"pulseMs"`
}

// Outbound is a message to the page.
type Outbound struct {
	Type      string                  `json:"type"`
	ID        string                  `json:"id,omitempty"`
	Op        string                  `json:"op,omitempty"`
	Kind      string                  `json:"kind,omitempty"`
	Capture   bool                    `json:"capture,omitempty"`
	Active    *bool                   `json:"active,omitempty"`
	Pulse     *bool                   `json:"pulse,omitempty"`
	Geometry  *overlay.Geometry       `json:"geometry,omitempty"`
	Selection *selection.HistoryEntry `json:"selection,omitempty"`
	Target    *resolve.Target         `json:"target,omitempty"`
	Prompt    string                  `json:"prompt,omitempty"`
	Text      string                  `json:"text,omitempty"`
	Toast     *notify.Toast           `json:"toast,omitempty"`
	Config    *PageConfig             `json:"config,omitempty"`
	State     *StateView              `json:"state,omitempty"`
	Code      string                  `json:"code,omitempty"`
	Message   string                  `json:"message,omitempty"`
}

// StateView is the panel state of a page.
type StateView struct {
	Active        bool               `json:"active"`
	Target        *resolve.Target    `json:"target,omitempty"`
	Instruction   prompt.Instruction `json:"instruction"`
	Generated     string             `json:"generated,omitempty"`
	ToastsEnabled bool               `json:"toastsEnabled"`
}

func boolPtr(b bool) *bool { return &b }
