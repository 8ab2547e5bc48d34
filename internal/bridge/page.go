package bridge

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/overlay"
	"github.com/standardbeagle/uisel/internal/prompt"
	"github.com/standardbeagle/uisel/internal/selection"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
	pingEvery = (pongWait * 9) / 10
	sendQueue = 64
)

// Toggle notifications shown in the page.
const (
	MsgModeEnabled  = "Selection mode enabled - Click on any UI element"
	MsgModeDisabled = "Selection mode disabled"
)

// PageInfo describes a connected page.
type PageInfo struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
	Active      bool      `json:"active"`
	Selected    string    `json:"selected,omitempty"`
}

// Page is one connected browser page. It is the selection surface for its
// controller: listener registrations and overlay updates are forwarded to
// the page script, and events from the script are dispatched locally.
type Page struct {
	id          string
	connectedAt time.Time
	opts        *Options

	mu    sync.RWMutex
	url   string
	title string

	local    *selection.LocalSurface
	ctrl     *selection.Controller
	toasts   *notify.Center
	composer *prompt.Composer

	writeCh chan Outbound
	ctx     context.Context
	cancel  context.CancelFunc
}

func newPage(ctx context.Context, opts *Options) *Page {
	ctx, cancel := context.WithCancel(ctx)
	p := &Page{
		id:          uuid.NewString(),
		connectedAt: time.Now(),
		opts:        opts,
		local:       selection.NewLocalSurface(),
		toasts:      notify.NewCenter(opts.Notify),
		writeCh:     make(chan Outbound, sendQueue),
		ctx:         ctx,
		cancel:      cancel,
	}
	p.composer = prompt.NewComposer(p.toasts, opts.Clipboard)
	p.ctrl = selection.NewController(p, selection.Config{
		Resolver:      opts.Resolver,
		Notifier:      p.toasts,
		State:         selection.NewState(opts.History),
		Exclude:       opts.Exclude,
		PulseDuration: opts.PulseDuration,
		OnSelect: func(e selection.HistoryEntry) {
			p.push(Outbound{Type: OutSelected, Selection: &e, Target: &e.Target})
			if opts.OnSelect != nil {
				opts.OnSelect(p.id, e)
			}
		},
	})
	p.ctrl.OnChange(func(active bool) {
		p.push(Outbound{Type: OutMode, Active: boolPtr(active)})
	})
	p.toasts.Subscribe(func(ev notify.Event) {
		t := ev.Toast
		p.push(Outbound{Type: OutToast, Op: ev.Type, ID: t.ID, Toast: &t})
	})
	return p
}

// ID returns the page identifier.
func (p *Page) ID() string { return p.id }

// Controller returns the page's selection controller.
func (p *Page) Controller() *selection.Controller { return p.ctrl }

// State returns the page's selection state.
func (p *Page) State() *selection.State { return p.ctrl.State() }

// Toasts returns the page's notification center.
func (p *Page) Toasts() *notify.Center { return p.toasts }

// Info returns a description of the page.
func (p *Page) Info() PageInfo {
	p.mu.RLock()
	info := PageInfo{
		ID:          p.id,
		URL:         p.url,
		Title:       p.title,
		ConnectedAt: p.connectedAt,
	}
	p.mu.RUnlock()
	info.Active = p.ctrl.IsActive()
	if t := p.State().Target(); t != nil {
		info.Selected = t.ComponentName
	}
	return info
}

// Toggle flips selection mode and shows the matching info notification.
func (p *Page) Toggle() bool {
	active := p.ctrl.Toggle()
	if active {
		p.toasts.Notify(MsgModeEnabled, notify.Info)
	} else {
		p.toasts.Notify(MsgModeDisabled, notify.Info)
	}
	return active
}

// Generate synthesizes a prompt for the current selection. The request's
// text and category always replace the pending instruction, so an empty
// request fails validation instead of reusing an earlier one.
func (p *Page) Generate(text string, cat prompt.Category) (string, error) {
	st := p.State()
	st.SetInstruction(prompt.Instruction{FreeText: text, Category: cat})
	out, err := p.composer.Generate(st.Target(), st.Instruction())
	if err != nil {
		return "", err
	}
	st.SetGenerated(out)
	p.push(Outbound{Type: OutPrompt, Prompt: out})
	return out, nil
}

// Copy places the clipboard payload for the last generated prompt on the
// clipboard and sends it to the page.
func (p *Page) Copy() (string, error) {
	st := p.State()
	text, err := p.composer.Copy(st.Target(), st.Generated())
	if err != nil {
		return "", err
	}
	p.push(Outbound{Type: OutCopied, Text: text})
	return text, nil
}

// SetToasts turns page notifications on or off.
func (p *Page) SetToasts(enabled bool) {
	p.toasts.SetEnabled(enabled)
	p.pushState()
}

// CreateOverlay implements selection.Surface.
func (p *Page) CreateOverlay() overlay.Overlay {
	o := &remoteOverlay{page: p, id: uuid.NewString()}
	p.push(Outbound{Type: OutOverlay, Op: OverlayCreate, ID: o.id})
	return o
}

// AddListener implements selection.Surface.
func (p *Page) AddListener(kind dom.EventKind, capture bool, h dom.Handler) func() {
	id := uuid.NewString()
	remove := p.local.AddListener(kind, capture, h)
	p.push(Outbound{Type: OutListen, ID: id, Kind: string(kind), Capture: capture})
	return func() {
		remove()
		p.push(Outbound{Type: OutUnlisten, ID: id, Kind: string(kind)})
	}
}

func (p *Page) config() *PageConfig {
	return &PageConfig{
		PageID:        p.id,
		Container:     p.opts.ContainerSelector,
		Exclude:       p.opts.ExcludeSelector,
		Annotation:    p.opts.Annotation,
		ToastPosition: p.opts.ToastPosition,
		ToastsEnabled: p.toasts.Enabled(),
		PulseMillis:   p.opts.PulseDuration.Milliseconds(),
	}
}

func (p *Page) stateView() *StateView {
	snap := p.State().Snapshot()
	return &StateView{
		Active:        p.ctrl.IsActive(),
		Target:        snap.Target,
		Instruction:   snap.Instruction,
		Generated:     snap.Generated,
		ToastsEnabled: p.toasts.Enabled(),
	}
}

func (p *Page) pushState() {
	p.push(Outbound{Type: OutState, State: p.stateView()})
}

func (p *Page) pushError(code, msg string) {
	p.push(Outbound{Type: OutError, Code: code, Message: msg})
}

// push queues a message without blocking. When the queue is full the oldest
// message is dropped.
func (p *Page) push(out Outbound) {
	if p.ctx.Err() != nil {
		return
	}
	select {
	case p.writeCh <- out:
		return
	default:
	}
	select {
	case <-p.writeCh:
	default:
	}
	select {
	case p.writeCh <- out:
	default:
		debug.Warn("bridge", "page %s send queue full, dropping %s", p.id, out.Type)
	}
}

// handle processes one inbound message.
func (p *Page) handle(in Inbound) {
	msgType := strings.ToLower(strings.TrimSpace(in.Type))
	switch msgType {
	case InHello:
		p.mu.Lock()
		p.url = in.URL
		p.title = in.Title
		p.mu.Unlock()
		debug.Log("bridge", "page %s hello from %s", p.id, in.URL)
		p.push(Outbound{Type: OutConfig, Config: p.config()})
		p.pushState()
	case InPointerMove, InPointerLeave, InClick:
		p.dispatch(dom.EventKind(msgType), in.Event)
	case InToggle:
		p.Toggle()
	case InEnable:
		p.ctrl.Enable()
	case InDisable:
		p.ctrl.Disable()
	case InReset:
		p.ctrl.Reset()
		p.pushState()
	case InInstruction:
		cat, err := prompt.ParseCategory(in.Category)
		if err != nil {
			p.pushError("invalid_argument", err.Error())
			return
		}
		p.State().SetInstruction(prompt.Instruction{FreeText: in.Text, Category: cat})
	case InGenerate:
		cat, err := prompt.ParseCategory(in.Category)
		if err != nil {
			p.pushError("invalid_argument", err.Error())
			return
		}
		// Failures are reported as toasts by the composer.
		p.Generate(in.Text, cat)
	case InCopy:
		p.Copy()
	case InToasts:
		if in.Enabled == nil {
			p.pushError("invalid_argument", "enabled is required")
			return
		}
		p.SetToasts(*in.Enabled)
	case InDismiss:
		p.toasts.Remove(in.ID)
	case InPing:
		p.push(Outbound{Type: OutPong})
	case "":
		p.pushError("invalid_argument", "type is required")
	default:
		p.pushError("invalid_argument", "unsupported type: "+msgType)
	}
}

func (p *Page) dispatch(kind dom.EventKind, snap *dom.EventSnapshot) {
	if snap == nil {
		snap = &dom.EventSnapshot{}
	}
	ev, err := snap.Decode(kind)
	if err != nil {
		debug.Log("bridge", "page %s: bad %s event: %v", p.id, kind, err)
		p.pushError("invalid_argument", err.Error())
		return
	}
	p.local.Dispatch(ev)
}

// run pumps the connection until it closes.
func (p *Page) run(conn *websocket.Conn) {
	defer p.close()

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		debug.Warn("bridge", "set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	writerDone := make(chan struct{})
	go p.writeLoop(conn, writerDone)

	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				debug.Log("bridge", "page %s read error: %v", p.id, err)
			}
			break
		}
		p.handle(in)
	}

	p.cancel()
	<-writerDone
}

func (p *Page) writeLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			// Unblocks the reader when the hub shuts down.
			conn.Close()
			return
		case out := <-p.writeCh:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (p *Page) close() {
	p.ctrl.Disable()
	p.toasts.Close()
	p.cancel()
}

// remoteOverlay forwards overlay updates to the page script.
type remoteOverlay struct {
	page *Page
	id   string
}

func (o *remoteOverlay) Show(g overlay.Geometry) {
	o.page.push(Outbound{Type: OutOverlay, Op: OverlayShow, ID: o.id, Geometry: &g})
}

func (o *remoteOverlay) Hide() {
	o.page.push(Outbound{Type: OutOverlay, Op: OverlayHide, ID: o.id})
}

func (o *remoteOverlay) SetPulse(on bool) {
	o.page.push(Outbound{Type: OutOverlay, Op: OverlayPulse, ID: o.id, Pulse: boolPtr(on)})
}

func (o *remoteOverlay) Remove() {
	o.page.push(Outbound{Type: OutOverlay, Op: OverlayRemove, ID: o.id})
}
