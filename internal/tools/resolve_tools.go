package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/selection"
)

// ResolveInput represents input for the resolve_html tool.
type ResolveInput struct {
	File      string `json:"file,omitempty" jsonschema:"Path to an HTML file (or use html)"`
	HTML      string `json:"html,omitempty" jsonschema:"Inline HTML document"`
	Selector  string `json:"selector" jsonschema:"CSS selector of the element to click"`
	Container string `json:"container,omitempty" jsonschema:"CSS selector of the selection container (default: body)"`
	Exclude   string `json:"exclude,omitempty" jsonschema:"CSS selector of elements that never select (default: the floating panel)"`
}

// RegisterResolveTool registers the resolve_html MCP tool with the server.
func RegisterResolveTool(server *mcp.Server, t *Tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "resolve_html",
		Description: `Resolve an element of an HTML document to a UI component, as a selection click would.

The element is resolved in order by its data-component annotation, framework
metadata and finally tag/class heuristics (Button, Form, Card, Input,
Unknown). Catalogued components get their recorded file, lines and snippet.

Examples:
  resolve_html {file: "dist/index.html", selector: "#checkout button"}
  resolve_html {html: "<div id=\"root\"><input id=\"qty\"></div>", selector: "#qty", container: "#root"}`,
	}, t.makeResolveHandler())
}

func (t *Tools) makeResolveHandler() func(context.Context, *mcp.CallToolRequest, ResolveInput) (*mcp.CallToolResult, TargetOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ResolveInput) (*mcp.CallToolResult, TargetOutput, error) {
		emptyOutput := TargetOutput{}

		if input.Selector == "" {
			return errorResult("selector required"), emptyOutput, nil
		}
		doc, err := loadDocument(input.File, input.HTML)
		if err != nil {
			return errorResult(err.Error()), emptyOutput, nil
		}

		exclude := t.exclude
		if input.Exclude != "" {
			sel, err := dom.ParseSelector(input.Exclude)
			if err != nil {
				return errorResult(fmt.Sprintf("exclude: %v", err)), emptyOutput, nil
			}
			exclude = sel.Match
		}

		entry, err := selection.PickSelector(doc, input.Selector, input.Container, selection.Config{
			Resolver: t.resolver,
			Exclude:  exclude,
		})
		if err != nil {
			return errorResult(err.Error()), emptyOutput, nil
		}
		return nil, entryOutput(entry), nil
	}
}

func loadDocument(file, inline string) (*dom.Document, error) {
	switch {
	case file != "" && inline != "":
		return nil, fmt.Errorf("use either file or html, not both")
	case inline != "":
		return dom.ParseHTMLString(inline)
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file, err)
		}
		defer f.Close()
		return dom.ParseHTML(f)
	default:
		return nil, fmt.Errorf("file or html required")
	}
}
