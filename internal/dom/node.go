// Package dom models the page the selection engine works on as a tree of
// nodes. Nodes come from browser event snapshots or from parsed HTML
// documents; the engine only depends on the Node interface.
package dom

import (
	"strings"
)

// Rect is a bounding box relative to the viewport.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is a single element of the page.
type Node interface {
	// TagName returns the upper-case tag name, or "" when unknown.
	TagName() string
	// ClassName returns the raw class attribute string.
	ClassName() string
	// Attr returns an attribute value.
	Attr(name string) (string, bool)
	// Parent returns the parent element, or nil at the root.
	Parent() Node
	// TextContent returns the concatenated text of the node and its descendants.
	TextContent() string
	// BoundingRect returns the node's viewport-relative box.
	BoundingRect() Rect
}

// FrameKind classifies a framework component-tree entry.
type FrameKind string

const (
	// FrameHost is a plain markup tag such as "div".
	FrameHost FrameKind = "host"
	// FrameFunction is a function component.
	FrameFunction FrameKind = "function"
	// FrameClass is a class component.
	FrameClass FrameKind = "class"
)

// Frame is one entry of a UI framework's internal component tree, linked
// toward the root through Return.
type Frame struct {
	Kind        FrameKind
	Name        string
	DisplayName string
	Return      *Frame
}

// FrameSource is implemented by nodes that expose framework internals.
// It is an optional capability: most nodes do not implement it.
type FrameSource interface {
	Frame() *Frame
}

// Predicate reports whether a node matches some condition.
type Predicate func(Node) bool

// Contains reports whether n is container or one of its descendants.
func Contains(container, n Node) bool {
	if container == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur == container {
			return true
		}
	}
	return false
}

// Closest returns the first of n and its ancestors matching pred.
func Closest(n Node, pred Predicate) Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// HasClass reports whether the node's class list contains token exactly.
func HasClass(n Node, token string) bool {
	for _, c := range strings.Fields(n.ClassName()) {
		if c == token {
			return true
		}
	}
	return false
}

// IsTag reports whether n has the given tag name, compared case-insensitively.
func IsTag(n Node, tag string) bool {
	return strings.EqualFold(n.TagName(), tag)
}
