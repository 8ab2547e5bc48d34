package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Document is a Node tree backed by a parsed HTML document. It has no layout
// engine; bounding boxes default to zero and can be assigned with SetRect.
type Document struct {
	root *html.Node

	mu     sync.Mutex
	nodes  map[*html.Node]*htmlNode
	layout map[*html.Node]Rect
}

// ParseHTML parses an HTML document.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{
		root:   root,
		nodes:  make(map[*html.Node]*htmlNode),
		layout: make(map[*html.Node]Rect),
	}, nil
}

// ParseHTMLString parses an HTML document held in a string.
func ParseHTMLString(s string) (*Document, error) {
	return ParseHTML(strings.NewReader(s))
}

// wrap returns the unique Node for an element so identity comparisons hold.
func (d *Document) wrap(n *html.Node) Node {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if w, ok := d.nodes[n]; ok {
		return w
	}
	w := &htmlNode{doc: d, n: n}
	d.nodes[n] = w
	return w
}

// Root returns the document element (<html>).
func (d *Document) Root() Node {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return d.wrap(c)
		}
	}
	return nil
}

// Find returns the first element in document order matching selector.
func (d *Document) Find(selector string) (Node, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	var found Node
	d.walk(d.root, func(n *html.Node) bool {
		if sel.group.Match(n) {
			found = d.wrap(n)
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return found, nil
}

// FindAll returns every element matching selector in document order.
func (d *Document) FindAll(selector string) ([]Node, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	var out []Node
	d.walk(d.root, func(n *html.Node) bool {
		if sel.group.Match(n) {
			out = append(out, d.wrap(n))
		}
		return true
	})
	return out, nil
}

// SetRect assigns a bounding box to an element of this document.
func (d *Document) SetRect(n Node, r Rect) {
	hn, ok := n.(*htmlNode)
	if !ok || hn.doc != d {
		return
	}
	d.mu.Lock()
	d.layout[hn.n] = r
	d.mu.Unlock()
}

// walk visits element nodes depth-first until visit returns false.
func (d *Document) walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !d.walk(c, visit) {
			return false
		}
	}
	return true
}

type htmlNode struct {
	doc *Document
	n   *html.Node
}

func (h *htmlNode) TagName() string {
	return strings.ToUpper(h.n.Data)
}

func (h *htmlNode) ClassName() string {
	v, _ := h.Attr("class")
	return v
}

func (h *htmlNode) Attr(name string) (string, bool) {
	for _, a := range h.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (h *htmlNode) Parent() Node {
	if p := h.doc.wrap(h.n.Parent); p != nil {
		return p
	}
	return nil
}

func (h *htmlNode) TextContent() string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(h.n)
	return b.String()
}

func (h *htmlNode) BoundingRect() Rect {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	return h.doc.layout[h.n]
}
