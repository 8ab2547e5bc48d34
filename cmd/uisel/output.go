package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/resolve"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	snippetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// printer writes styled output to a terminal and plain text elsewhere.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(f *os.File) *printer {
	return &printer{w: f, color: term.IsTerminal(int(f.Fd()))}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) title(text string) {
	p.line("%s", p.render(titleStyle, text))
}

func (p *printer) field(label, value string) {
	p.line("%s %s", p.render(labelStyle, fmt.Sprintf("%-11s", label+":")), value)
}

func (p *printer) target(t resolve.Target, conf resolve.Confidence, strategy string) {
	p.title(t.ComponentName)
	p.field("File", p.render(pathStyle, t.FilePath))
	p.field("Lines", fmt.Sprintf("%d–%d", t.LineRange.Start, t.LineRange.End))
	if strategy != "" {
		p.field("Resolved by", fmt.Sprintf("%s (%s)", strategy, conf))
	}
	p.snippet(t.CodeSnippet)
}

func (p *printer) snippet(code string) {
	if p.color {
		p.line("%s", snippetStyle.Render(code))
		return
	}
	for _, l := range strings.Split(code, "\n") {
		p.line("    %s", l)
	}
}

// toast prints a notification, coloured by kind.
func (p *printer) toast(message string, kind notify.Kind) {
	style := infoStyle
	mark := "•"
	switch kind {
	case notify.Success:
		style, mark = successStyle, "✓"
	case notify.Error:
		style, mark = errorStyle, "✗"
	}
	p.line("%s", p.render(style, mark+" "+message))
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	stdout = newPrinter(os.Stdout)
	stderr = newPrinter(os.Stderr)
)
