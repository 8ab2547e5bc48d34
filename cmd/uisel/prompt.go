package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/uisel/internal/assistant"
	"github.com/standardbeagle/uisel/internal/clipboard"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt <file.html> <selector> <request...>",
	Short: "Generate a coding instruction for an element of an HTML file",
	Long: `Resolve an element of an HTML file and generate a coding instruction for it.

The category is inferred from the request unless --type is given: requests
mentioning add, create, new, insert or introduce become add requests, anything
else an edit.

Types:
  edit      Update the component
  fix       Fix a bug in the component
  add       Add a new feature next to the component
  refactor  Restructure the component, keeping behavior
  explain   Explain how the component works

Examples:
  uisel prompt dist/index.html "#qty" "it should accept only numbers" --type fix
  uisel prompt dist/index.html ".card" add a discount badge --copy
  uisel prompt dist/index.html "form" "explain the submit flow" --type explain --send`,
	Args: cobra.MinimumNArgs(3),
	Run:  runPrompt,
}

func init() {
	promptCmd.Flags().StringP("type", "t", "", "Prompt type: edit, fix, add, refactor, explain (default: inferred)")
	promptCmd.Flags().String("container", "", "CSS selector of the selection container (default from config: body)")
	promptCmd.Flags().Bool("copy", false, "Copy the prompt with its file and snippet context to the clipboard")
	promptCmd.Flags().Bool("send", false, "Send the prompt to the assistant model (needs ANTHROPIC_API_KEY)")

	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)
	e, err := newEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	typ, _ := cmd.Flags().GetString("type")
	cat, err := prompt.ParseCategory(typ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	entry, err := pickFromFile(cmd, cfg, e, args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve %s: %v\n", args[1], err)
		os.Exit(1)
	}
	target := &entry.Target
	in := prompt.Instruction{FreeText: strings.Join(args[2:], " "), Category: cat}

	composer := prompt.NewComposer(notify.NotifierFunc(stderr.toast), clipboard.System{})
	generated, err := composer.Generate(target, in)
	if err != nil {
		os.Exit(1)
	}
	stdout.line("%s", generated)

	if doCopy, _ := cmd.Flags().GetBool("copy"); doCopy {
		if _, err := composer.Copy(target, generated); err != nil {
			os.Exit(1)
		}
	}

	if send, _ := cmd.Flags().GetBool("send"); send {
		payload, err := prompt.ClipboardText(target, generated)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		client, err := assistant.New(assistant.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Assistant.Model,
			MaxTokens: cfg.Assistant.MaxTokens,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		reply, err := client.Send(ctx, payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send prompt: %v\n", err)
			os.Exit(1)
		}
		stdout.line("")
		stdout.title(cfg.Assistant.Model)
		stdout.line("%s", reply)
	}
}
