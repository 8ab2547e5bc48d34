package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/uisel/internal/clipboard"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/selection"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Proxy a dev server and inject the element picker",
	Long: `Proxy a dev server and inject the element picker into every HTML page.

Open the printed address instead of the dev server. The floating panel turns
selection mode on, and the next click in the page is resolved to a component.
Selections are printed here as they happen.

Examples:
  uisel serve
  uisel serve --target http://localhost:5173 --listen 127.0.0.1:8080`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().String("target", "", "Dev server URL (default from config: http://localhost:3000)")
	serveCmd.Flags().String("listen", "", "Proxy listen address (default from config: 127.0.0.1:7420)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := mustLoadConfig(cmd)
	e, err := newEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := startRuntime(ctx, cfg, e, clipboard.System{}, func(pageID string, entry selection.HistoryEntry) {
		stdout.line("")
		stdout.toast(fmt.Sprintf("Selected %s component (page %s)", entry.Target.ComponentName, shortID(pageID)), notify.Success)
		stdout.target(entry.Target, entry.Confidence, entry.Strategy)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start proxy: %v\n", err)
		os.Exit(1)
	}

	stdout.title(appName + " v" + Version)
	stdout.field("Proxying", cfg.Target)
	stdout.field("Open", stdout.render(pathStyle, "http://"+rt.proxy.Stats().ListenAddr))
	stdout.line("Press Ctrl+C to stop.")

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	rt.stop(shutdownCtx)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
