package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/uisel/internal/config"
	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/selection"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file.html> <selector>",
	Short: "Resolve an element of an HTML file to a component",
	Long: `Resolve an element of an HTML file to a component, as a click in selection mode would.

Examples:
  uisel resolve dist/index.html "#checkout button"
  uisel resolve page.html ".card p" --container "#root" --json`,
	Args: cobra.ExactArgs(2),
	Run:  runResolve,
}

func init() {
	resolveCmd.Flags().String("container", "", "CSS selector of the selection container (default from config: body)")
	resolveCmd.Flags().Bool("json", false, "Print the result as JSON")

	rootCmd.AddCommand(resolveCmd)
}

// pickFromFile runs one selection against an HTML file, printing the
// selection notification to stderr.
func pickFromFile(cmd *cobra.Command, cfg *config.Config, e *engine, file, selector string) (selection.HistoryEntry, error) {
	f, err := os.Open(file)
	if err != nil {
		return selection.HistoryEntry{}, err
	}
	defer f.Close()

	doc, err := dom.ParseHTML(f)
	if err != nil {
		return selection.HistoryEntry{}, fmt.Errorf("parse %s: %w", file, err)
	}

	container, _ := cmd.Flags().GetString("container")
	if container == "" {
		container = cfg.Selection.Container
	}

	scfg := e.selectionConfig(cfg)
	scfg.Notifier = notify.NotifierFunc(stderr.toast)
	return selection.PickSelector(doc, selector, container, scfg)
}

func runResolve(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)
	e, err := newEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	entry, err := pickFromFile(cmd, cfg, e, args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve %s: %v\n", args[1], err)
		os.Exit(1)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := stdout.json(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	stdout.target(entry.Target, entry.Confidence, entry.Strategy)
}
