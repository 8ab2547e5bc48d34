package bridge

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/overlay"
	"github.com/standardbeagle/uisel/internal/prompt"
	"github.com/standardbeagle/uisel/internal/resolve"
	"github.com/standardbeagle/uisel/internal/selection"
)

var (
	// ErrPageNotFound is returned when no connected page matches.
	ErrPageNotFound = errors.New("page not found")
	// ErrPageAmbiguous is returned when a lookup matches multiple pages.
	ErrPageAmbiguous = errors.New("page ID is ambiguous - multiple matches")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Options configures every page the hub accepts.
type Options struct {
	Resolver *resolve.Resolver

	// ContainerSelector and ExcludeSelector are sent to the page script.
	ContainerSelector string
	ExcludeSelector   string

	// Exclude is the compiled ExcludeSelector.
	Exclude dom.Predicate

	// Annotation is the component attribute the page script must capture.
	// It should match the resolver's annotation. Default: data-component
	Annotation string

	PulseDuration time.Duration
	History       int
	Notify        notify.Config
	ToastPosition string
	Clipboard     prompt.ClipboardWriter

	// OnSelect runs after a page commits a selection and leaves selection
	// mode. It may call back into the page.
	OnSelect func(pageID string, e selection.HistoryEntry)
}

// Hub tracks connected pages with lock-free lookups.
type Hub struct {
	opts           Options
	pages          sync.Map // map[string]*Page
	activeCount    atomic.Int64
	totalConnected atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub.
func NewHub(opts Options) *Hub {
	if opts.Annotation == "" {
		opts.Annotation = resolve.DefaultAnnotation
	}
	if opts.Resolver == nil {
		opts.Resolver = resolve.New(resolve.Config{
			Annotation:   opts.Annotation,
			Introspector: resolve.FrameIntrospector{},
		})
	}
	if opts.PulseDuration <= 0 {
		opts.PulseDuration = overlay.DefaultPulseDuration
	}
	if opts.History <= 0 {
		opts.History = selection.DefaultHistorySize
	}
	if opts.ContainerSelector == "" {
		opts.ContainerSelector = "body"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{opts: opts, ctx: ctx, cancel: cancel}
}

// ServeHTTP upgrades the request and serves the page until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		debug.Log("bridge", "upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	p := newPage(h.ctx, &h.opts)
	h.pages.Store(p.id, p)
	h.activeCount.Add(1)
	h.totalConnected.Add(1)
	debug.Log("bridge", "page %s connected from %s", p.id, r.RemoteAddr)

	defer func() {
		h.pages.Delete(p.id)
		h.activeCount.Add(-1)
		debug.Log("bridge", "page %s disconnected", p.id)
	}()

	p.run(conn)
}

// Get retrieves a page by ID. It tries an exact match, then a unique ID
// prefix. An empty ID selects the only connected page.
func (h *Hub) Get(id string) (*Page, error) {
	if id != "" {
		if val, ok := h.pages.Load(id); ok {
			return val.(*Page), nil
		}
	}

	var matches []*Page
	h.pages.Range(func(key, value any) bool {
		if strings.HasPrefix(key.(string), id) {
			matches = append(matches, value.(*Page))
		}
		return true
	})

	if len(matches) == 0 {
		return nil, ErrPageNotFound
	}
	if len(matches) > 1 {
		return nil, ErrPageAmbiguous
	}
	return matches[0], nil
}

// List returns the connected pages, oldest first.
func (h *Hub) List() []*Page {
	var result []*Page
	h.pages.Range(func(key, value any) bool {
		result = append(result, value.(*Page))
		return true
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].connectedAt.Before(result[j].connectedAt)
	})
	return result
}

// ActiveCount returns the number of connected pages.
func (h *Hub) ActiveCount() int64 {
	return h.activeCount.Load()
}

// TotalConnected returns the number of pages ever connected.
func (h *Hub) TotalConnected() int64 {
	return h.totalConnected.Load()
}

// Close disconnects every page.
func (h *Hub) Close() {
	h.cancel()
}
