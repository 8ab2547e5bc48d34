package resolve

import (
	"strings"

	"github.com/standardbeagle/uisel/internal/dom"
)

// DefaultAnnotation is the attribute that names a component explicitly.
const DefaultAnnotation = "data-component"

// UnknownComponent is the name given to targets nothing could classify.
const UnknownComponent = "Unknown"

// Confidence orders how a component name was obtained, strongest first.
type Confidence int

const (
	ConfidenceAnnotation Confidence = iota
	ConfidenceFramework
	ConfidenceHeuristic
	ConfidenceUnknown
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceAnnotation:
		return "annotation"
	case ConfidenceFramework:
		return "framework"
	case ConfidenceHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// MarshalText renders the confidence by name in JSON output.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Strategy produces a component name for a target, or reports no match.
type Strategy interface {
	Name() string
	Resolve(target, container dom.Node) (string, Confidence, bool)
}

// AnnotationStrategy reads an explicit annotation attribute from the target
// or its ancestors, stopping at the container.
type AnnotationStrategy struct {
	Attribute string
}

func (s AnnotationStrategy) Name() string { return "annotation" }

func (s AnnotationStrategy) Resolve(target, container dom.Node) (string, Confidence, bool) {
	attr := s.Attribute
	if attr == "" {
		attr = DefaultAnnotation
	}
	for cur := target; cur != nil && cur != container; cur = cur.Parent() {
		if v, ok := cur.Attr(attr); ok && v != "" {
			return v, ConfidenceAnnotation, true
		}
	}
	return "", ConfidenceUnknown, false
}

// Introspector extracts a component name from framework internals attached
// to a node. Implementations must not fail when the node carries none.
type Introspector interface {
	ComponentName(n dom.Node) (string, bool)
}

// FrameIntrospector walks the dom.Frame linkage exposed by nodes that
// implement dom.FrameSource.
type FrameIntrospector struct{}

// ComponentName returns the first named component frame, skipping host tags
// and anonymous components. A display name wins over the intrinsic name.
func (FrameIntrospector) ComponentName(n dom.Node) (string, bool) {
	fs, ok := n.(dom.FrameSource)
	if !ok {
		return "", false
	}
	for f := fs.Frame(); f != nil; f = f.Return {
		if f.Kind == dom.FrameHost {
			continue
		}
		if f.DisplayName != "" {
			return f.DisplayName, true
		}
		if f.Name != "" {
			return f.Name, true
		}
	}
	return "", false
}

// FrameworkStrategy defers to an optional Introspector. A nil Introspector
// never matches.
type FrameworkStrategy struct {
	Introspector Introspector
}

func (s FrameworkStrategy) Name() string { return "framework" }

func (s FrameworkStrategy) Resolve(target, _ dom.Node) (string, Confidence, bool) {
	if s.Introspector == nil {
		return "", ConfidenceUnknown, false
	}
	name, ok := s.Introspector.ComponentName(target)
	if !ok || name == "" {
		return "", ConfidenceUnknown, false
	}
	return name, ConfidenceFramework, true
}

// HeuristicStrategy classifies by tag name and class string. It always
// produces a name.
type HeuristicStrategy struct{}

func (HeuristicStrategy) Name() string { return "heuristic" }

func (HeuristicStrategy) Resolve(target, _ dom.Node) (string, Confidence, bool) {
	className := target.ClassName()
	switch {
	case strings.Contains(className, "btn") || dom.IsTag(target, "BUTTON"):
		return "Button", ConfidenceHeuristic, true
	case strings.Contains(className, "card") || dom.Closest(target, isCard) != nil:
		return "Card", ConfidenceHeuristic, true
	case dom.IsTag(target, "FORM") || dom.Closest(target, isForm) != nil:
		return "Form", ConfidenceHeuristic, true
	case dom.IsTag(target, "INPUT"):
		return "Input", ConfidenceHeuristic, true
	}
	if tag := target.TagName(); tag != "" {
		return strings.ToUpper(tag), ConfidenceHeuristic, true
	}
	return UnknownComponent, ConfidenceUnknown, true
}

func isCard(n dom.Node) bool { return dom.HasClass(n, "card") }

func isForm(n dom.Node) bool { return dom.IsTag(n, "FORM") }
