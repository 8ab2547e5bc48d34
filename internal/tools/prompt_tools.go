package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/uisel/internal/prompt"
	"github.com/standardbeagle/uisel/internal/resolve"
)

// PromptInput represents input for the prompt tool.
type PromptInput struct {
	PageID    string `json:"page_id,omitempty" jsonschema:"Page whose selection to use (optional when one page is connected)"`
	Text      string `json:"text" jsonschema:"What should change, e.g. 'it should accept only numbers'"`
	Type      string `json:"type,omitempty" jsonschema:"Category: edit, fix, add, refactor, explain (default: inferred from text)"`
	Component string `json:"component,omitempty" jsonschema:"Explicit component name instead of a page selection"`
	File      string `json:"file,omitempty" jsonschema:"Source file of the explicit component (default: catalog entry or src/components/<Name>.tsx)"`
	StartLine int    `json:"start_line,omitempty" jsonschema:"First line of the explicit component"`
	EndLine   int    `json:"end_line,omitempty" jsonschema:"Last line of the explicit component"`
	Snippet   string `json:"snippet,omitempty" jsonschema:"Code snippet of the explicit component"`
	Copy      bool   `json:"copy,omitempty" jsonschema:"Also copy the clipboard payload"`
}

// PromptOutput represents output from the prompt tool.
type PromptOutput struct {
	Prompt    string        `json:"prompt"`
	Category  string        `json:"category"`
	Target    *TargetOutput `json:"target,omitempty"`
	Clipboard string        `json:"clipboard,omitempty"`
	Copied    bool          `json:"copied"`
}

// RegisterPromptTool registers the prompt MCP tool with the server.
func RegisterPromptTool(server *mcp.Server, t *Tools) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "prompt",
		Description: `Generate a coding instruction for a selected UI component.

Uses the page's current selection unless component is given. The category
is inferred from the text when type is omitted: text mentioning add, create,
new, insert or introduce becomes an add request, anything else an edit.

Examples:
  prompt {text: "it should accept only numbers", type: "fix"}
  prompt {page_id: "3f2a", text: "add a loading spinner", copy: true}
  prompt {component: "Input", text: "explain the validation", type: "explain"}
  prompt {component: "PriceTag", file: "src/PriceTag.tsx", start_line: 3, end_line: 40, text: "round to cents"}`,
	}, t.makePromptHandler())
}

func (t *Tools) makePromptHandler() func(context.Context, *mcp.CallToolRequest, PromptInput) (*mcp.CallToolResult, PromptOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PromptInput) (*mcp.CallToolResult, PromptOutput, error) {
		emptyOutput := PromptOutput{}

		cat, err := prompt.ParseCategory(input.Type)
		if err != nil {
			return errorResult(err.Error()), emptyOutput, nil
		}
		in := prompt.Instruction{FreeText: input.Text, Category: cat}

		if input.Component != "" {
			return t.promptForTarget(t.explicitTarget(input), in, input.Copy)
		}

		p, errRes := t.page(input.PageID)
		if errRes != nil {
			return errRes, emptyOutput, nil
		}
		generated, err := p.Generate(input.Text, cat)
		if err != nil {
			return promptError(err), emptyOutput, nil
		}
		out := PromptOutput{
			Prompt:   generated,
			Category: p.State().Instruction().Effective().String(),
			Target:   targetOutput(p.State().Target()),
		}
		if input.Copy {
			text, err := p.Copy()
			if err != nil {
				return errorResult(fmt.Sprintf("copy failed: %v", err)), emptyOutput, nil
			}
			out.Clipboard = text
			out.Copied = true
		}
		return nil, out, nil
	}
}

// explicitTarget builds a target from tool input, filling gaps from the
// catalog and the default path and line range.
func (t *Tools) explicitTarget(input PromptInput) *resolve.Target {
	target := &resolve.Target{
		ComponentName: input.Component,
		FilePath:      resolve.DefaultPath(input.Component),
		LineRange:     resolve.LineRange{Start: 1, End: 50},
		CodeSnippet:   input.Snippet,
	}
	if e, ok := t.resolver.Catalog().Lookup(input.Component); ok {
		target.FilePath = e.Path
		target.LineRange = e.LineRange
		if target.CodeSnippet == "" {
			target.CodeSnippet = e.Snippet
		}
	}
	if input.File != "" {
		target.FilePath = input.File
	}
	if input.StartLine > 0 {
		target.LineRange.Start = input.StartLine
	}
	if input.EndLine > 0 {
		target.LineRange.End = input.EndLine
	}
	return target
}

func (t *Tools) promptForTarget(target *resolve.Target, in prompt.Instruction, copyOut bool) (*mcp.CallToolResult, PromptOutput, error) {
	emptyOutput := PromptOutput{}
	if target.LineRange.Start > target.LineRange.End {
		return errorResult(fmt.Sprintf("start_line %d is after end_line %d", target.LineRange.Start, target.LineRange.End)), emptyOutput, nil
	}

	composer := prompt.NewComposer(nil, t.clipboard)
	generated, err := composer.Generate(target, in)
	if err != nil {
		return promptError(err), emptyOutput, nil
	}
	out := PromptOutput{
		Prompt:   generated,
		Category: in.Effective().String(),
		Target:   targetOutput(target),
	}
	if copyOut {
		text, err := composer.Copy(target, generated)
		if err != nil {
			return errorResult(fmt.Sprintf("copy failed: %v", err)), emptyOutput, nil
		}
		out.Clipboard = text
		out.Copied = true
	}
	return nil, out, nil
}

func promptError(err error) *mcp.CallToolResult {
	var verr *prompt.ValidationError
	if errors.As(err, &verr) {
		return errorResult(fmt.Sprintf("%s (%v)", prompt.ValidationMessage, verr.Err))
	}
	return errorResult(err.Error())
}
