package dom

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPath is returned when an event snapshot carries no target.
var ErrEmptyPath = errors.New("event snapshot has an empty path")

// NodeSnapshot is the wire form of one element, as serialized by the
// injected page script.
type NodeSnapshot struct {
	Tag   string            `json:"tag"`
	Class string            `json:"class,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Text  string            `json:"text,omitempty"`
	Rect  Rect              `json:"rect"`
}

// FrameSnapshot is the wire form of a framework component-tree entry.
type FrameSnapshot struct {
	Kind        FrameKind `json:"kind"`
	Name        string    `json:"name,omitempty"`
	DisplayName string    `json:"displayName,omitempty"`
}

// EventSnapshot is a pointer event captured in the browser.
//
// Path lists the target first followed by its ancestors up to the document
// element. Container indexes into Path; nil means the target is not inside
// the scoping container. Frames is the framework linkage of the target,
// innermost first, and is empty when the page exposes none.
type EventSnapshot struct {
	Path      []NodeSnapshot  `json:"path"`
	Container *int            `json:"container,omitempty"`
	Frames    []FrameSnapshot `json:"frames,omitempty"`
	ScrollX   float64         `json:"scrollX"`
	ScrollY   float64         `json:"scrollY"`
}

// Decode links the snapshot into a node chain and returns the event.
func (s *EventSnapshot) Decode(kind EventKind) (*Event, error) {
	ev := &Event{Kind: kind, ScrollX: s.ScrollX, ScrollY: s.ScrollY}
	if kind == PointerLeave && len(s.Path) == 0 {
		return ev, nil
	}
	if len(s.Path) == 0 {
		return nil, ErrEmptyPath
	}

	nodes := make([]*snapshotNode, len(s.Path))
	for i := range s.Path {
		nodes[i] = &snapshotNode{data: s.Path[i]}
	}
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].parent = nodes[i+1]
	}
	nodes[0].frame = linkFrames(s.Frames)

	ev.Target = nodes[0]
	if s.Container != nil {
		idx := *s.Container
		if idx < 0 || idx >= len(nodes) {
			return nil, fmt.Errorf("container index %d out of range (path length %d)", idx, len(nodes))
		}
		ev.Container = nodes[idx]
	}
	return ev, nil
}

func linkFrames(frames []FrameSnapshot) *Frame {
	var head, prev *Frame
	for _, fs := range frames {
		f := &Frame{Kind: fs.Kind, Name: fs.Name, DisplayName: fs.DisplayName}
		if prev == nil {
			head = f
		} else {
			prev.Return = f
		}
		prev = f
	}
	return head
}

type snapshotNode struct {
	data   NodeSnapshot
	parent *snapshotNode
	frame  *Frame
}

func (n *snapshotNode) TagName() string {
	return strings.ToUpper(n.data.Tag)
}

func (n *snapshotNode) ClassName() string {
	return n.data.Class
}

func (n *snapshotNode) Attr(name string) (string, bool) {
	if name == "class" {
		return n.data.Class, n.data.Class != ""
	}
	v, ok := n.data.Attrs[name]
	return v, ok
}

// Attributes implements AttrLister.
func (n *snapshotNode) Attributes() map[string]string {
	return n.data.Attrs
}

func (n *snapshotNode) Parent() Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *snapshotNode) TextContent() string {
	return n.data.Text
}

func (n *snapshotNode) BoundingRect() Rect {
	return n.data.Rect
}

// Frame implements FrameSource. It returns nil for nodes without linkage.
func (n *snapshotNode) Frame() *Frame {
	return n.frame
}
