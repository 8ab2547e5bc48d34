// Package config loads uisel configuration from .uisel.kdl, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	kdl "github.com/sblinch/kdl-go"

	"github.com/standardbeagle/uisel/internal/dom"
	"github.com/standardbeagle/uisel/internal/notify"
	"github.com/standardbeagle/uisel/internal/resolve"
)

// ConfigFileName is the name of the uisel configuration file.
const ConfigFileName = ".uisel.kdl"

// Environment overrides.
const (
	EnvListen = "UISEL_LISTEN"
	EnvTarget = "UISEL_TARGET"
	EnvDebug  = "UISEL_DEBUG"
	EnvAPIKey = "ANTHROPIC_API_KEY"
)

// Config represents the uisel configuration.
type Config struct {
	// Listen is the proxy listen address.
	Listen string `kdl:"listen"`

	// Target is the dev server the proxy forwards to.
	Target string `kdl:"target"`

	// Debug enables debug logging.
	Debug bool `kdl:"debug"`

	Selection *SelectionConfig `kdl:"selection"`

	// Toast notification settings
	Toast *ToastConfig `kdl:"toast"`

	// Catalog of known components, keyed by component name
	Catalog map[string]*CatalogEntry `kdl:"catalog"`

	Assistant *AssistantConfig `kdl:"assistant"`

	// APIKey is read from the environment only.
	APIKey string `kdl:"-"`
}

// SelectionConfig controls selection mode.
type SelectionConfig struct {
	// Container is the CSS selector of the element that scopes selection
	Container string `kdl:"container"`
	// Exclude is the CSS selector of the floating panel
	Exclude string `kdl:"exclude"`
	// Annotation is the attribute that names a component
	Annotation string `kdl:"annotation"`
	// Pulse is the click pulse duration in milliseconds (default 300)
	Pulse int `kdl:"pulse"`
	// History is how many selections each page remembers (default 20)
	History int `kdl:"history"`
}

// ToastConfig configures toast notifications.
type ToastConfig struct {
	Enabled bool `kdl:"enabled"`
	// Duration in milliseconds (default 3000)
	Duration int `kdl:"duration"`
	// MaxVisible is the max number of visible toasts (default 3)
	MaxVisible int `kdl:"max-visible"`
	// Position: "top-right", "top-left", "bottom-right", "bottom-left"
	Position string `kdl:"position"`
}

// CatalogEntry is the source location of one component.
type CatalogEntry struct {
	Path    string `kdl:"path"`
	Start   int    `kdl:"start"`
	End     int    `kdl:"end"`
	Snippet string `kdl:"snippet"`
}

// AssistantConfig configures prompt dispatch to an assistant model.
type AssistantConfig struct {
	Model     string `kdl:"model"`
	MaxTokens int    `kdl:"max-tokens"`
}

var validPositions = map[string]bool{
	"top-right":    true,
	"top-left":     true,
	"bottom-right": true,
	"bottom-left":  true,
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen: "127.0.0.1:7420",
		Target: "http://localhost:3000",
		Selection: &SelectionConfig{
			Container:  "body",
			Exclude:    ".prompt-panel-floating",
			Annotation: resolve.DefaultAnnotation,
			Pulse:      300,
			History:    20,
		},
		Toast: &ToastConfig{
			Enabled:    true,
			Duration:   3000,
			MaxVisible: 3,
			Position:   "bottom-right",
		},
		Catalog: make(map[string]*CatalogEntry),
		Assistant: &AssistantConfig{
			Model:     "claude-sonnet-4-5",
			MaxTokens: 1024,
		},
	}
}

// LoadConfig loads configuration for dir. It reads .env from dir when
// present, looks for .uisel.kdl in dir and its parents, and applies
// environment overrides.
func LoadConfig(dir string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg := DefaultConfig()
	if configPath := FindConfigFile(dir); configPath != "" {
		var err error
		cfg, err = LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigAt loads the config file at path, reading .env from the same
// directory, and applies environment overrides.
func LoadConfigAt(path string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for .uisel.kdl starting from dir and walking up.
func FindConfigFile(dir string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(absDir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			// Reached root
			break
		}
		absDir = parent
	}

	return ""
}

// LoadConfigFile loads configuration from a specific file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(string(data))
}

// ParseConfig parses KDL configuration data on top of the defaults.
func ParseConfig(data string) (*Config, error) {
	cfg := DefaultConfig()

	if err := kdl.Unmarshal([]byte(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.fillDefaults()

	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvListen)); v != "" {
		c.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTarget)); v != "" {
		c.Target = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" && v != "0" && v != "false" {
		c.Debug = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.APIKey = v
	}
}

// fillDefaults restores defaults for sections a config file cleared.
func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Selection == nil {
		c.Selection = def.Selection
	}
	if c.Toast == nil {
		c.Toast = def.Toast
	}
	if c.Catalog == nil {
		c.Catalog = def.Catalog
	}
	if c.Assistant == nil {
		c.Assistant = def.Assistant
	}
	if c.Selection.Pulse == 0 {
		c.Selection.Pulse = def.Selection.Pulse
	}
	if c.Selection.History == 0 {
		c.Selection.History = def.Selection.History
	}
	if c.Selection.Annotation == "" {
		c.Selection.Annotation = def.Selection.Annotation
	}
	if c.Toast.Duration == 0 {
		c.Toast.Duration = def.Toast.Duration
	}
	if c.Toast.MaxVisible == 0 {
		c.Toast.MaxVisible = def.Toast.MaxVisible
	}
	if c.Assistant.MaxTokens == 0 {
		c.Assistant.MaxTokens = def.Assistant.MaxTokens
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.Selection.Container != "" {
		if _, err := dom.ParseSelector(c.Selection.Container); err != nil {
			errs = append(errs, fmt.Errorf("selection container: %w", err))
		}
	}
	if c.Selection.Exclude != "" {
		if _, err := dom.ParseSelector(c.Selection.Exclude); err != nil {
			errs = append(errs, fmt.Errorf("selection exclude: %w", err))
		}
	}
	if c.Selection.Pulse < 0 {
		errs = append(errs, fmt.Errorf("selection pulse %d is negative", c.Selection.Pulse))
	}
	if c.Selection.History < 0 {
		errs = append(errs, fmt.Errorf("selection history %d is negative", c.Selection.History))
	}
	if c.Toast.Position != "" && !validPositions[c.Toast.Position] {
		errs = append(errs, fmt.Errorf("toast position %q (use top-right, top-left, bottom-right, bottom-left)", c.Toast.Position))
	}
	for _, name := range c.catalogNames() {
		e := c.Catalog[name]
		if e == nil || e.Path == "" {
			errs = append(errs, fmt.Errorf("catalog %s: path is required", name))
			continue
		}
		if e.Start > e.End {
			errs = append(errs, fmt.Errorf("catalog %s: start %d is after end %d", name, e.Start, e.End))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) catalogNames() []string {
	names := make([]string, 0, len(c.Catalog))
	for name := range c.Catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildCatalog returns the built-in catalog overlaid with configured entries.
// Entries without line numbers span lines 1 to 50.
func (c *Config) BuildCatalog() (*resolve.Catalog, error) {
	extra := make(map[string]resolve.Entry, len(c.Catalog))
	for name, e := range c.Catalog {
		if e == nil {
			continue
		}
		lines := resolve.LineRange{Start: e.Start, End: e.End}
		if lines.Start == 0 && lines.End == 0 {
			lines = resolve.LineRange{Start: 1, End: 50}
		}
		extra[name] = resolve.Entry{Path: e.Path, LineRange: lines, Snippet: e.Snippet}
	}
	return resolve.NewCatalog(extra)
}

// ExcludePredicate compiles the excluded-panel selector. An empty selector
// excludes nothing.
func (c *Config) ExcludePredicate() (dom.Predicate, error) {
	if c.Selection.Exclude == "" {
		return nil, nil
	}
	sel, err := dom.ParseSelector(c.Selection.Exclude)
	if err != nil {
		return nil, fmt.Errorf("selection exclude: %w", err)
	}
	return sel.Match, nil
}

// PulseDuration returns the click pulse length.
func (c *Config) PulseDuration() time.Duration {
	return time.Duration(c.Selection.Pulse) * time.Millisecond
}

// NotifyConfig converts the toast settings for a notification center.
func (c *Config) NotifyConfig() notify.Config {
	return notify.Config{
		Duration:   time.Duration(c.Toast.Duration) * time.Millisecond,
		MaxVisible: c.Toast.MaxVisible,
		Disabled:   !c.Toast.Enabled,
	}
}

// WriteDefaultConfig writes a default configuration file with documentation.
func WriteDefaultConfig(path string) error {
	defaultKDL := `// uisel configuration

// Address the selection proxy listens on
listen "127.0.0.1:7420"

// Dev server to proxy
target "http://localhost:3000"

selection {
    container "body"                  // CSS selector scoping selectable elements
    exclude ".prompt-panel-floating"  // Panel that is never selected
    annotation "data-component"       // Attribute naming a component explicitly
    pulse 300                         // Click pulse in ms
    history 20                        // Selections remembered per page
}

// Toast notification settings
toast {
    enabled true
    duration 3000           // Duration in ms
    max-visible 3           // Max simultaneous toasts
    position "bottom-right" // top-right, top-left, bottom-right, bottom-left
}

// Known components and where they live
catalog {
    // Example:
    // PricingCard {
    //     path "src/components/PricingCard.tsx"
    //     start 12
    //     end 48
    //     snippet "<PricingCard plan={plan} />"
    // }
}

// Model used by "uisel prompt --send" (needs ANTHROPIC_API_KEY)
assistant {
    model "claude-sonnet-4-5"
    max-tokens 1024
}
`
	return os.WriteFile(path, []byte(defaultKDL), 0644)
}
