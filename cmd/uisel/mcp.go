package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/standardbeagle/uisel/internal/bridge"
	"github.com/standardbeagle/uisel/internal/clipboard"
	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/tools"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	Long: `Run as an MCP server over stdio, with the selection proxy in the background.

Add it to your assistant's MCP configuration, open the proxied dev server in
a browser and use the selection, prompt and resolve_html tools.

Example configuration:
  {"mcpServers": {"uisel": {"command": "uisel", "args": ["mcp"]}}}`,
	Run: runMCP,
}

func init() {
	mcpCmd.Flags().String("target", "", "Dev server URL (default from config: http://localhost:3000)")
	mcpCmd.Flags().String("listen", "", "Proxy listen address (default from config: 127.0.0.1:7420)")
	mcpCmd.Flags().Bool("no-proxy", false, "Only serve resolve_html and explicit prompts")

	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)
	e, err := newEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var hub *bridge.Hub
	if noProxy, _ := cmd.Flags().GetBool("no-proxy"); !noProxy {
		rt, err := startRuntime(ctx, cfg, e, clipboard.System{}, nil)
		if err != nil {
			// The HTML tools still work without a proxy.
			debug.Warn("mcp", "selection proxy not started: %v", err)
		} else {
			hub = rt.hub
			debug.Info("mcp", "selection proxy on http://%s for %s", rt.proxy.Stats().ListenAddr, cfg.Target)
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutdownCancel()
				rt.stop(shutdownCtx)
			}()
		}
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    appName,
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `Element selection for web UIs served through the uisel proxy.

The user opens the proxied dev server, turns on selection mode and clicks an
element. uisel resolves it to a component with its source file, line range and
snippet, and turns the user's request into a precise coding instruction.

Available tools:
- selection: List pages, toggle selection mode, read the current selection and history
- prompt: Generate an instruction for the selected (or a named) component
- resolve_html: Resolve an element of an HTML file to a component`,
		},
	)
	tools.Register(server, tools.New(hub, tools.Options{
		Resolver:  e.resolver,
		Exclude:   e.exclude,
		Clipboard: clipboard.System{},
	}))

	debug.Info("mcp", "starting %s v%s", appName, Version)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		debug.Error("mcp", "server error: %v", err)
		os.Exit(1)
	}
}
