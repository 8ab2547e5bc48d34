// Package tools exposes selection and prompt generation as MCP tools.
package tools

import (
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/uisel/internal/bridge"
	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/prompt"
	"github.com/standardbeagle/uisel/internal/resolve"
	"github.com/standardbeagle/uisel/internal/selection"
)

// Tools holds what the tool handlers operate on.
type Tools struct {
	hub       *bridge.Hub
	resolver  *resolve.Resolver
	exclude   dom.Predicate
	clipboard prompt.ClipboardWriter
}

// Options configures Tools.
type Options struct {
	// Resolver is used for resolve_html and explicit prompt targets.
	Resolver *resolve.Resolver

	// Exclude is the default excluded-panel predicate for resolve_html.
	Exclude dom.Predicate

	// Clipboard receives copied prompts for explicit targets.
	Clipboard prompt.ClipboardWriter
}

// New creates tools backed by hub. A nil hub disables the page actions.
func New(hub *bridge.Hub, opts Options) *Tools {
	if opts.Resolver == nil {
		opts.Resolver = resolve.New(resolve.Config{Introspector: resolve.FrameIntrospector{}})
	}
	return &Tools{
		hub:       hub,
		resolver:  opts.Resolver,
		exclude:   opts.Exclude,
		clipboard: opts.Clipboard,
	}
}

// Register adds every tool to server.
func Register(server *mcp.Server, t *Tools) {
	RegisterSelectionTool(server, t)
	RegisterPromptTool(server, t)
	RegisterResolveTool(server, t)
}

// TargetOutput describes a resolved component.
type TargetOutput struct {
	Component  string `json:"component"`
	File       string `json:"file"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Snippet    string `json:"snippet"`
	Confidence string `json:"confidence,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	At         string `json:"at,omitempty"`
}

// PageOutput describes a connected page.
type PageOutput struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	ConnectedAt string `json:"connected_at"`
	Active      bool   `json:"active"`
	Selected    string `json:"selected,omitempty"`
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

func targetOutput(t *resolve.Target) *TargetOutput {
	if t == nil {
		return nil
	}
	return &TargetOutput{
		Component: t.ComponentName,
		File:      t.FilePath,
		StartLine: t.LineRange.Start,
		EndLine:   t.LineRange.End,
		Snippet:   t.CodeSnippet,
	}
}

func entryOutput(e selection.HistoryEntry) TargetOutput {
	out := targetOutput(&e.Target)
	out.Confidence = e.Confidence.String()
	out.Strategy = e.Strategy
	out.At = e.At.Format(time.RFC3339)
	return *out
}

func pageOutput(info bridge.PageInfo) PageOutput {
	return PageOutput{
		ID:          info.ID,
		URL:         info.URL,
		Title:       info.Title,
		ConnectedAt: info.ConnectedAt.Format(time.RFC3339),
		Active:      info.Active,
		Selected:    info.Selected,
	}
}

// page finds a connected page, turning lookup failures into tool errors.
func (t *Tools) page(id string) (*bridge.Page, *mcp.CallToolResult) {
	if t.hub == nil {
		return nil, errorResult("no selection proxy is running")
	}
	p, err := t.hub.Get(id)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, bridge.ErrPageNotFound) && id == "":
		return nil, errorResult("no page connected (open the proxied dev server in a browser)")
	case errors.Is(err, bridge.ErrPageAmbiguous) && id == "":
		return nil, errorResult("multiple pages connected, page_id required (use action: list)")
	default:
		return nil, errorResult(fmt.Sprintf("page %q: %v", id, err))
	}
}
