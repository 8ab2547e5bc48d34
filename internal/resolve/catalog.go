// Package resolve maps a clicked page node to a named UI component and its
// presumed source location.
package resolve

import (
	"fmt"
	"sort"
)

// LineRange is an inclusive 1-based line span.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Target is the resolved identity of a clicked element. It is a value and is
// replaced wholesale on the next resolution.
type Target struct {
	ComponentName string    `json:"componentName"`
	FilePath      string    `json:"filePath"`
	LineRange     LineRange `json:"lineRange"`
	CodeSnippet   string    `json:"codeSnippet"`
}

// Entry is the source metadata recorded for a known component.
type Entry struct {
	Path      string
	LineRange LineRange
	Snippet   string
}

// Catalog maps exact, case-sensitive component names to source metadata.
// It is read-only once built.
type Catalog struct {
	entries map[string]Entry
}

// defaultEntries are the components every catalog knows about.
var defaultEntries = map[string]Entry{
	"Button": {
		Path:      "src/components/Button.tsx",
		LineRange: LineRange{Start: 1, End: 50},
		Snippet:   "<button className=\"btn-primary\">\n  Submit\n</button>",
	},
	"Form": {
		Path:      "src/components/Form.tsx",
		LineRange: LineRange{Start: 1, End: 100},
		Snippet:   "<form onSubmit={handleSubmit}>\n  <input type=\"text\" />\n  <button>Submit</button>\n</form>",
	},
	"Card": {
		Path:      "src/components/Card.tsx",
		LineRange: LineRange{Start: 1, End: 80},
		Snippet:   "<div className=\"card\">\n  <h3>Card Title</h3>\n  <p>Card content</p>\n</div>",
	},
	"Input": {
		Path:      "src/components/Input.tsx",
		LineRange: LineRange{Start: 8, End: 20},
		Snippet:   "<input\n  type=\"text\"\n  placeholder=\"Enter text\"\n  value={value}\n/>",
	},
}

// NewCatalog builds a catalog from the built-in entries overlaid with extra.
// Entries in extra replace built-in entries of the same name.
func NewCatalog(extra map[string]Entry) (*Catalog, error) {
	entries := make(map[string]Entry, len(defaultEntries)+len(extra))
	for name, e := range defaultEntries {
		entries[name] = e
	}
	for name, e := range extra {
		if name == "" {
			return nil, fmt.Errorf("catalog entry with empty component name")
		}
		if e.Path == "" {
			return nil, fmt.Errorf("catalog entry %q: path is required", name)
		}
		if e.LineRange.Start > e.LineRange.End {
			return nil, fmt.Errorf("catalog entry %q: start line %d after end line %d",
				name, e.LineRange.Start, e.LineRange.End)
		}
		entries[name] = e
	}
	return &Catalog{entries: entries}, nil
}

// DefaultCatalog returns a catalog holding only the built-in entries.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog(nil)
	return c
}

// Lookup returns the entry for name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[name]
	return e, ok
}

// Names returns the catalogued component names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
