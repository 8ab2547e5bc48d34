package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/uisel/internal/bridge"
	"github.com/standardbeagle/uisel/internal/config"
	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/prompt"
	"github.com/standardbeagle/uisel/internal/proxy"
	"github.com/standardbeagle/uisel/internal/resolve"
	"github.com/standardbeagle/uisel/internal/selection"
)

// loadConfig loads the file named by --config, or searches from the working
// directory, and applies --target and --listen when the command has them.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadConfigAt(path)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", werr)
		}
		cfg, err = config.LoadConfig(cwd)
	}
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("target"); f != nil && f.Changed {
		cfg.Target = f.Value.String()
	}
	if f := cmd.Flags().Lookup("listen"); f != nil && f.Changed {
		cfg.Listen = f.Value.String()
	}
	if cfg.Debug {
		debug.Enable()
	}
	return cfg, nil
}

func mustLoadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// engine is the resolver and panel predicate built from a config.
type engine struct {
	resolver *resolve.Resolver
	exclude  dom.Predicate
}

func newEngine(cfg *config.Config) (*engine, error) {
	catalog, err := cfg.BuildCatalog()
	if err != nil {
		return nil, err
	}
	exclude, err := cfg.ExcludePredicate()
	if err != nil {
		return nil, err
	}
	return &engine{
		resolver: resolve.New(resolve.Config{
			Annotation:   cfg.Selection.Annotation,
			Introspector: resolve.FrameIntrospector{},
			Catalog:      catalog,
		}),
		exclude: exclude,
	}, nil
}

// selectionConfig configures a one-off selection against an HTML document.
func (e *engine) selectionConfig(cfg *config.Config) selection.Config {
	return selection.Config{
		Resolver:      e.resolver,
		Exclude:       e.exclude,
		PulseDuration: cfg.PulseDuration(),
	}
}

// runtime is the websocket hub behind the injecting proxy.
type runtime struct {
	hub   *bridge.Hub
	proxy *proxy.Server
}

func startRuntime(ctx context.Context, cfg *config.Config, e *engine, clip prompt.ClipboardWriter, onSelect func(string, selection.HistoryEntry)) (*runtime, error) {
	hub := bridge.NewHub(bridge.Options{
		Resolver:          e.resolver,
		ContainerSelector: cfg.Selection.Container,
		ExcludeSelector:   cfg.Selection.Exclude,
		Exclude:           e.exclude,
		Annotation:        cfg.Selection.Annotation,
		PulseDuration:     cfg.PulseDuration(),
		History:           cfg.Selection.History,
		Notify:            cfg.NotifyConfig(),
		ToastPosition:     cfg.Toast.Position,
		Clipboard:         clip,
		OnSelect:          onSelect,
	})

	srv, err := proxy.NewServer(proxy.Config{
		TargetURL:   cfg.Target,
		ListenAddr:  cfg.Listen,
		Bridge:      hub,
		AutoRestart: true,
	})
	if err != nil {
		hub.Close()
		return nil, err
	}
	if err := srv.Start(ctx); err != nil {
		hub.Close()
		return nil, err
	}
	return &runtime{hub: hub, proxy: srv}, nil
}

func (r *runtime) stop(ctx context.Context) {
	r.hub.Close()
	if err := r.proxy.Stop(ctx); err != nil {
		debug.Warn("uisel", "proxy shutdown: %v", err)
	}
}
