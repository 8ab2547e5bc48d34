package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/standardbeagle/uisel/internal/dom"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Selection.Exclude != ".prompt-panel-floating" {
		t.Errorf("Exclude = %q", cfg.Selection.Exclude)
	}
	if cfg.PulseDuration() != 300*time.Millisecond {
		t.Errorf("PulseDuration = %v, want 300ms", cfg.PulseDuration())
	}
	nc := cfg.NotifyConfig()
	if nc.Duration != 3*time.Second || nc.Disabled {
		t.Errorf("NotifyConfig = %+v", nc)
	}
}

func TestParseConfig(t *testing.T) {
	data := `
listen "127.0.0.1:9000"
target "http://localhost:5173"

selection {
    container "#app"
    pulse 150
}

toast {
    enabled false
    duration 1500
}

catalog {
    PricingCard {
        path "src/components/PricingCard.tsx"
        start 12
        end 48
        snippet "<PricingCard />"
    }
}
`
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig error: %v", err)
	}

	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.Target != "http://localhost:5173" {
		t.Errorf("Target = %q", cfg.Target)
	}
	if cfg.Selection.Container != "#app" || cfg.Selection.Pulse != 150 {
		t.Errorf("Selection = %+v", cfg.Selection)
	}
	if cfg.Selection.History != 20 {
		t.Errorf("History = %d, want default 20", cfg.Selection.History)
	}
	if cfg.Toast.Enabled || cfg.Toast.Duration != 1500 {
		t.Errorf("Toast = %+v", cfg.Toast)
	}

	cat, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatalf("BuildCatalog error: %v", err)
	}
	e, ok := cat.Lookup("PricingCard")
	if !ok {
		t.Fatal("PricingCard missing from catalog")
	}
	if e.Path != "src/components/PricingCard.tsx" || e.LineRange.Start != 12 || e.LineRange.End != 48 {
		t.Errorf("PricingCard = %+v", e)
	}
	if _, ok := cat.Lookup("Button"); !ok {
		t.Error("built-in entries should remain")
	}
}

func TestParseConfigInvalid(t *testing.T) {
	if _, err := ParseConfig(`selection {`); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"start after end", func(c *Config) {
			c.Catalog["Bad"] = &CatalogEntry{Path: "x.tsx", Start: 9, End: 1}
		}, "start 9 is after end 1"},
		{"missing path", func(c *Config) {
			c.Catalog["NoPath"] = &CatalogEntry{Start: 1, End: 2}
		}, "path is required"},
		{"bad exclude", func(c *Config) { c.Selection.Exclude = "div >" }, "selection exclude"},
		{"bad position", func(c *Config) { c.Toast.Position = "middle" }, "toast position"},
		{"empty listen", func(c *Config) { c.Listen = "" }, "listen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestBuildCatalogDefaultsLines(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Catalog["Hero"] = &CatalogEntry{Path: "src/Hero.tsx"}
	cat, err := cfg.BuildCatalog()
	if err != nil {
		t.Fatal(err)
	}
	e, _ := cat.Lookup("Hero")
	if e.LineRange.Start != 1 || e.LineRange.End != 50 {
		t.Errorf("LineRange = %+v, want 1-50", e.LineRange)
	}
}

func TestExcludePredicate(t *testing.T) {
	doc, err := dom.ParseHTMLString(`<div class="prompt-panel-floating"><p id="x">hi</p></div><p id="y">yo</p>`)
	if err != nil {
		t.Fatal(err)
	}
	panel, _ := doc.Find(".prompt-panel-floating")
	y, _ := doc.Find("#y")

	pred, err := DefaultConfig().ExcludePredicate()
	if err != nil {
		t.Fatal(err)
	}
	if !pred(panel) || pred(y) {
		t.Error("exclude predicate matched the wrong nodes")
	}

	cfg := DefaultConfig()
	cfg.Selection.Exclude = ""
	if pred, _ := cfg.ExcludePredicate(); pred != nil {
		t.Error("empty exclude should yield a nil predicate")
	}
}

func TestFindAndLoadConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ConfigFileName), []byte(`target "http://localhost:8080"`), 0644); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFile(nested); got != filepath.Join(root, ConfigFileName) {
		t.Errorf("FindConfigFile = %q", got)
	}

	t.Setenv(EnvListen, "0.0.0.0:7000")
	t.Setenv(EnvTarget, "")
	cfg, err := LoadConfig(nested)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Target != "http://localhost:8080" {
		t.Errorf("Target = %q, want value from file", cfg.Target)
	}
	if cfg.Listen != "0.0.0.0:7000" {
		t.Errorf("Listen = %q, want env override", cfg.Listen)
	}
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("UISEL_TARGET=http://localhost:4321\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides variables that are already set.
	t.Setenv(EnvTarget, "")
	os.Unsetenv(EnvTarget)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Target != "http://localhost:4321" {
		t.Errorf("Target = %q, want value from .env", cfg.Target)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := WriteDefaultConfig(path); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("default file does not parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default file invalid: %v", err)
	}
	if cfg.Listen != DefaultConfig().Listen {
		t.Errorf("Listen = %q", cfg.Listen)
	}
}

func TestLoadConfigAt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.kdl")
	if err := os.WriteFile(path, []byte(`target "http://localhost:5173"`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("UISEL_LISTEN=127.0.0.1:9999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvListen, "")
	os.Unsetenv(EnvListen)

	cfg, err := LoadConfigAt(path)
	if err != nil {
		t.Fatalf("LoadConfigAt error: %v", err)
	}
	if cfg.Target != "http://localhost:5173" {
		t.Errorf("Target = %q, want value from file", cfg.Target)
	}
	if cfg.Listen != "127.0.0.1:9999" {
		t.Errorf("Listen = %q, want value from .env", cfg.Listen)
	}

	if _, err := LoadConfigAt(filepath.Join(dir, "missing.kdl")); err == nil {
		t.Error("expected error for missing file")
	}
}
