package resolve

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/dom"
)

const (
	defaultStartLine = 1
	defaultEndLine   = 50
	snippetTextLimit = 50
)

// Resolution is the outcome of resolving a target.
type Resolution struct {
	Target     Target     `json:"target"`
	Confidence Confidence `json:"confidence"`
	Strategy   string     `json:"strategy"`
}

// Resolver runs the ordered strategy chain and enriches the winning name
// with catalog metadata.
type Resolver struct {
	strategies []Strategy
	catalog    *Catalog
}

// Config configures a Resolver.
type Config struct {
	// Annotation is the explicit component attribute. Default: data-component
	Annotation string

	// Introspector reads framework internals. Nil disables that strategy.
	Introspector Introspector

	// Catalog supplies known component metadata. Default: DefaultCatalog()
	Catalog *Catalog
}

// New creates a resolver with the fixed chain annotation, framework,
// heuristic.
func New(cfg Config) *Resolver {
	if cfg.Annotation == "" {
		cfg.Annotation = DefaultAnnotation
	}
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog()
	}
	return &Resolver{
		strategies: []Strategy{
			AnnotationStrategy{Attribute: cfg.Annotation},
			FrameworkStrategy{Introspector: cfg.Introspector},
			HeuristicStrategy{},
		},
		catalog: cfg.Catalog,
	}
}

// Resolve always returns a populated resolution. A nil target yields the
// Unknown component with default metadata.
func (r *Resolver) Resolve(target, container dom.Node) Resolution {
	if target == nil {
		return Resolution{
			Target:     r.enrich(UnknownComponent, nil),
			Confidence: ConfidenceUnknown,
			Strategy:   "none",
		}
	}

	for _, s := range r.strategies {
		name, conf, ok := s.Resolve(target, container)
		if !ok {
			continue
		}
		debug.Log("resolver", "%s strategy resolved <%s> to %s", s.Name(), strings.ToLower(target.TagName()), name)
		return Resolution{
			Target:     r.enrich(name, target),
			Confidence: conf,
			Strategy:   s.Name(),
		}
	}

	// The heuristic strategy always matches; this is unreachable with the
	// default chain.
	return Resolution{
		Target:     r.enrich(UnknownComponent, target),
		Confidence: ConfidenceUnknown,
		Strategy:   "none",
	}
}

// Catalog returns the catalog used for enrichment.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

func (r *Resolver) enrich(name string, target dom.Node) Target {
	if e, ok := r.catalog.Lookup(name); ok {
		return Target{
			ComponentName: name,
			FilePath:      e.Path,
			LineRange:     e.LineRange,
			CodeSnippet:   e.Snippet,
		}
	}
	return Target{
		ComponentName: name,
		FilePath:      DefaultPath(name),
		LineRange:     LineRange{Start: defaultStartLine, End: defaultEndLine},
		CodeSnippet:   defaultSnippet(target),
	}
}

// DefaultPath is the presumed source file of an uncatalogued component.
func DefaultPath(name string) string {
	return fmt.Sprintf("src/components/%s.tsx", name)
}

func defaultSnippet(target dom.Node) string {
	tag := "unknown"
	text := ""
	if target != nil {
		if t := target.TagName(); t != "" {
			tag = strings.ToLower(t)
		}
		text = strings.Join(strings.Fields(target.TextContent()), " ")
	}
	text = truncateRunes(text, snippetTextLimit)
	if text == "" {
		text = "..."
	}
	return fmt.Sprintf("<%s>\n  %s\n</%s>", tag, text, tag)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
