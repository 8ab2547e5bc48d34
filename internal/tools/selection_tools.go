package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/uisel/internal/bridge"
)

// SelectionInput represents input for the selection tool.
type SelectionInput struct {
	Action string `json:"action" jsonschema:"Action: list, status, enable, disable, toggle, get, history, clear, clear_history"`
	PageID string `json:"page_id,omitempty" jsonschema:"Page ID or unique prefix (optional when one page is connected)"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum history entries (history action, default all)"`
}

// SelectionOutput represents output from the selection tool.
type SelectionOutput struct {
	Pages       []PageOutput   `json:"pages,omitempty"`
	Page        *PageOutput    `json:"page,omitempty"`
	Active      bool           `json:"active"`
	Target      *TargetOutput  `json:"target,omitempty"`
	Instruction string         `json:"instruction,omitempty"`
	Category    string         `json:"category,omitempty"`
	Generated   string         `json:"generated,omitempty"`
	History     []TargetOutput `json:"history,omitempty"`
	Count       int            `json:"count"`
	Message     string         `json:"message,omitempty"`
}

// RegisterSelectionTool registers the selection MCP tool with the server.
func RegisterSelectionTool(server *mcp.Server, t *Tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "selection",
		Description: `Control element selection mode in pages opened through the uisel proxy.

Actions:
  list: List connected pages
  status: Show whether selection mode is on and what is selected
  enable: Turn selection mode on (the next click in the page is captured)
  disable: Turn selection mode off
  toggle: Flip selection mode, as the panel's Edit button does
  get: Get the selected component, pending instruction and generated prompt
  history: List past selections, newest first
  clear: Clear the selection and turn selection mode off
  clear_history: Forget past selections

Examples:
  selection {action: "list"}
  selection {action: "enable", page_id: "3f2a"}
  selection {action: "get"}
  selection {action: "history", limit: 5}`,
	}, t.makeSelectionHandler())
}

func (t *Tools) makeSelectionHandler() func(context.Context, *mcp.CallToolRequest, SelectionInput) (*mcp.CallToolResult, SelectionOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SelectionInput) (*mcp.CallToolResult, SelectionOutput, error) {
		emptyOutput := SelectionOutput{}

		if input.Action == "list" {
			return t.handleSelectionList()
		}

		switch input.Action {
		case "status", "enable", "disable", "toggle", "get", "history", "clear", "clear_history":
		case "":
			return errorResult("action required (list, status, enable, disable, toggle, get, history, clear, clear_history)"), emptyOutput, nil
		default:
			return errorResult(fmt.Sprintf("unknown action: %s (use: list, status, enable, disable, toggle, get, history, clear, clear_history)", input.Action)), emptyOutput, nil
		}

		p, errRes := t.page(input.PageID)
		if errRes != nil {
			return errRes, emptyOutput, nil
		}

		switch input.Action {
		case "enable":
			p.Controller().Enable()
		case "disable":
			p.Controller().Disable()
		case "toggle":
			p.Toggle()
		case "clear":
			p.Controller().Reset()
		case "clear_history":
			p.State().ClearHistory()
		case "get":
			return nil, selectionGet(p), nil
		case "history":
			return nil, selectionHistory(p, input.Limit), nil
		}
		return nil, selectionStatus(p, input.Action), nil
	}
}

func (t *Tools) handleSelectionList() (*mcp.CallToolResult, SelectionOutput, error) {
	if t.hub == nil {
		return errorResult("no selection proxy is running"), SelectionOutput{}, nil
	}
	pages := t.hub.List()
	out := SelectionOutput{
		Pages: make([]PageOutput, 0, len(pages)),
		Count: len(pages),
	}
	for _, p := range pages {
		out.Pages = append(out.Pages, pageOutput(p.Info()))
	}
	if out.Count == 0 {
		out.Message = "no pages connected"
	}
	return nil, out, nil
}

func selectionStatus(p *bridge.Page, action string) SelectionOutput {
	info := pageOutput(p.Info())
	out := SelectionOutput{
		Page:   &info,
		Active: info.Active,
		Target: targetOutput(p.State().Target()),
	}
	switch action {
	case "enable", "disable", "toggle":
		if info.Active {
			out.Message = "selection mode enabled"
		} else {
			out.Message = "selection mode disabled"
		}
	case "clear":
		out.Message = "selection cleared"
	case "clear_history":
		out.Message = "history cleared"
	}
	return out
}

func selectionGet(p *bridge.Page) SelectionOutput {
	snap := p.State().Snapshot()
	info := pageOutput(p.Info())
	out := SelectionOutput{
		Page:        &info,
		Active:      info.Active,
		Target:      targetOutput(snap.Target),
		Instruction: snap.Instruction.FreeText,
		Category:    snap.Instruction.Effective().String(),
		Generated:   snap.Generated,
	}
	if snap.Target == nil {
		out.Message = "nothing selected"
	}
	return out
}

func selectionHistory(p *bridge.Page, limit int) SelectionOutput {
	entries := p.State().History(limit)
	out := SelectionOutput{
		Active:  p.Controller().IsActive(),
		History: make([]TargetOutput, 0, len(entries)),
		Count:   len(entries),
	}
	for _, e := range entries {
		out.History = append(out.History, entryOutput(e))
	}
	return out
}
