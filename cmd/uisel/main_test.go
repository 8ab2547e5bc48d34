package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/standardbeagle/uisel/internal/config"
	"github.com/standardbeagle/uisel/internal/debug"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/resolve"
)

func TestPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{w: &buf}

	p.target(resolve.Target{
		ComponentName: "Input",
		FilePath:      "src/components/Input.tsx",
		LineRange:     resolve.LineRange{Start: 8, End: 20},
		CodeSnippet:   "<input\n  type=\"text\"\n/>",
	}, resolve.ConfidenceHeuristic, "heuristic")
	p.toast("Copied to clipboard!", notify.Success)

	out := buf.String()
	for _, want := range []string{
		"Input\n",
		"src/components/Input.tsx",
		"8–20",
		"heuristic (heuristic)",
		"    <input\n",
		"✓ Copied to clipboard!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain output contains escape sequences")
	}
}

func TestPickFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.html")
	page := `<body><div id="root"><input id="qty"></div><div class="prompt-panel-floating"><button id="gen">Go</button></div></body>`
	if err := os.WriteFile(file, []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	e, err := newEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}

	entry, err := pickFromFile(resolveCmd, cfg, e, file, "#qty")
	if err != nil {
		t.Fatalf("pickFromFile error: %v", err)
	}
	if entry.Target.ComponentName != "Input" || entry.Target.LineRange.Start != 8 {
		t.Errorf("target = %+v", entry.Target)
	}

	if _, err := pickFromFile(resolveCmd, cfg, e, file, "#gen"); err == nil {
		t.Error("panel element should not be selectable")
	}
	if _, err := pickFromFile(resolveCmd, cfg, e, filepath.Join(dir, "missing.html"), "#qty"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSetupLogging(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(func() {
		debug.SetLogFile("")
		debug.Disable()
	})

	cmd := &cobra.Command{}
	cmd.Flags().Bool("debug", false, "")
	cmd.Flags().String("log-file", "", "")
	if err := cmd.Flags().Set("log-file", "uisel-test.log"); err != nil {
		t.Fatal(err)
	}

	if err := setupLogging(cmd); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	if !debug.IsEnabled() {
		t.Error("a log file should enable debug logging")
	}
	path := debug.GetLogFilePath()
	if filepath.Base(path) != "uisel-test.log" {
		t.Fatalf("log path = %q", path)
	}

	debug.Log("test", "selection committed")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"writing logs to " + path, "[DEBUG] [test] selection committed"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q:\n%s", want, data)
		}
	}
}
