package dom

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Selector is a compiled CSS selector group.
type Selector struct {
	source string
	group  cascadia.SelectorGroup
}

// AttrLister is implemented by nodes that can enumerate their attributes.
// Nodes without it are matched on id and class only.
type AttrLister interface {
	Attributes() map[string]string
}

// ParseSelector compiles a selector string.
func ParseSelector(s string) (*Selector, error) {
	group, err := cascadia.ParseGroup(s)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	return &Selector{source: s, group: group}, nil
}

// String returns the source text of the selector.
func (s *Selector) String() string {
	return s.source
}

// Match reports whether n matches any selector of the group.
func (s *Selector) Match(n Node) bool {
	if n == nil {
		return false
	}
	return s.group.Match(toHTML(n))
}

// Closest returns a predicate matching nodes that are, or sit inside, a
// node matching the selector.
func (s *Selector) Closest() Predicate {
	return func(n Node) bool {
		for cur := toHTML(n); cur != nil; cur = cur.Parent {
			if cur.Type == html.ElementNode && s.group.Match(cur) {
				return true
			}
		}
		return false
	}
}

// toHTML returns the parsed element behind n. Other nodes are mirrored into
// a detached element chain holding n and its ancestors.
func toHTML(n Node) *html.Node {
	if h, ok := n.(*htmlNode); ok {
		return h.n
	}

	var leaf, child *html.Node
	var top Node
	for cur := n; cur != nil; cur = cur.Parent() {
		e := mirrorElement(cur)
		if child == nil {
			leaf = e
		} else {
			child.Parent = e
			e.FirstChild = child
			e.LastChild = child
		}
		child = e
		top = cur
	}
	if child != nil && IsTag(top, "HTML") {
		doc := &html.Node{Type: html.DocumentNode, FirstChild: child, LastChild: child}
		child.Parent = doc
	}
	return leaf
}

func mirrorElement(n Node) *html.Node {
	tag := strings.ToLower(n.TagName())
	e := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}

	attrs := map[string]string{}
	if l, ok := n.(AttrLister); ok {
		for k, v := range l.Attributes() {
			attrs[k] = v
		}
	} else if id, ok := n.Attr("id"); ok {
		attrs["id"] = id
	}
	if cls := n.ClassName(); cls != "" {
		attrs["class"] = cls
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.Attr = append(e.Attr, html.Attribute{Key: k, Val: attrs[k]})
	}
	return e
}
