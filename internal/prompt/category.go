// Package prompt turns a resolved target and the user's intent into an
// instruction for a coding assistant.
package prompt

import (
	"fmt"
	"strings"
)

// Category selects the instruction template.
type Category int

const (
	// Inferred picks Add or Edit from the free text.
	Inferred Category = iota
	Edit
	Fix
	Add
	Refactor
	Explain
)

var categoryNames = [...]string{
	Inferred: "inferred",
	Edit:     "edit",
	Fix:      "fix",
	Add:      "add",
	Refactor: "refactor",
	Explain:  "explain",
}

// Categories lists the selectable categories in panel order.
func Categories() []Category {
	return []Category{Edit, Fix, Add, Refactor, Explain}
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// MarshalText renders the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a category name.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory converts a name into a Category. An empty string or "auto"
// yields Inferred.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "inferred":
		return Inferred, nil
	case "edit":
		return Edit, nil
	case "fix":
		return Fix, nil
	case "add":
		return Add, nil
	case "refactor":
		return Refactor, nil
	case "explain", "doc":
		return Explain, nil
	default:
		return Inferred, fmt.Errorf("unknown prompt type %q (use edit, fix, add, refactor, explain)", s)
	}
}

var addKeywords = []string{"add", "create", "new", "insert", "introduce"}

// InferCategory returns Add when text mentions adding something, else Edit.
// Matching is a case-insensitive substring test.
func InferCategory(text string) Category {
	lower := strings.ToLower(text)
	for _, k := range addKeywords {
		if strings.Contains(lower, k) {
			return Add
		}
	}
	return Edit
}

// Instruction is the user's pending intent for the selected target.
type Instruction struct {
	FreeText string   `json:"text"`
	Category Category `json:"type"`
}

// Effective returns the category the instruction will be rendered with.
func (in Instruction) Effective() Category {
	if in.Category == Inferred {
		return InferCategory(in.FreeText)
	}
	return in.Category
}
