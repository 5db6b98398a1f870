// Package config handles configuration loading and validation for hunk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/hunk/internal/core/annotation"
)

// Config holds the application configuration.
type Config struct {
	Theme       string              `yaml:"theme"`
	GitPath     string              `yaml:"git_path"`
	GhPath      string              `yaml:"gh_path"`
	Editor      string              `yaml:"editor"` // empty uses $VISUAL, then $EDITOR
	Sidebar     SidebarConfig       `yaml:"sidebar"`
	Watch       WatchConfig         `yaml:"watch"`
	Sync        SyncConfig          `yaml:"sync"`
	Anchor      AnchorConfig        `yaml:"anchor"`
	Export      ExportConfig        `yaml:"export"`
	Highlight   HighlightConfig     `yaml:"highlight"`
	Keybindings map[string][]string `yaml:"keybindings"`
	DataDir     string              `yaml:"-"` // set by caller, not from config file
}

// SidebarConfig controls the file tree.
type SidebarConfig struct {
	Visible bool `yaml:"visible"`
	Width   int  `yaml:"width"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Ignore   []string      `yaml:"ignore"` // doublestar patterns relative to the repository root
}

// SyncConfig controls pull request viewed-status updates.
type SyncConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Timeout     time.Duration `yaml:"timeout"` // per attempt
}

// AnchorConfig tunes how hunks are identified across rebuilds.
type AnchorConfig struct {
	Window     int `yaml:"window"`      // context lines hashed per hunk
	MinOverlap int `yaml:"min_overlap"` // shared context lines needed for a fuzzy match; 0 disables
}

// ExportConfig controls annotation export.
type ExportConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"` // empty means the working directory
}

// HighlightConfig controls syntax highlighting of diff lines.
type HighlightConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"` // chroma style; empty follows the theme
}

// EditorCommand returns the command line used to open files: the editor
// setting, then $VISUAL, then $EDITOR, then vi.
func (c *Config) EditorCommand(getenv func(string) string) []string {
	for _, v := range []string{c.Editor, getenv("VISUAL"), getenv("EDITOR")} {
		if fields := strings.Fields(v); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GitPath: "git",
		GhPath:  "gh",
		Sidebar: SidebarConfig{
			Visible: true,
			Width:   32,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Sync: SyncConfig{
			MaxAttempts: 3,
			BaseDelay:   500 * time.Millisecond,
			Timeout:     10 * time.Second,
		},
		Anchor: AnchorConfig{
			Window:     3,
			MinOverlap: 2,
		},
		Export: ExportConfig{
			Format: string(annotation.FormatMarkdown),
		},
		Highlight: HighlightConfig{
			Enabled: true,
		},
		Keybindings: map[string][]string{},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Merge user keybindings into defaults (user config overrides defaults)
	cfg.Keybindings = mergeKeybindings(defaultKeybindings, cfg.Keybindings)

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.GitPath == "" {
		c.GitPath = defaults.GitPath
	}
	if c.GhPath == "" {
		c.GhPath = defaults.GhPath
	}
	if c.Sidebar.Width == 0 {
		c.Sidebar.Width = defaults.Sidebar.Width
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = defaults.Watch.Debounce
	}
	if c.Sync.MaxAttempts == 0 {
		c.Sync.MaxAttempts = defaults.Sync.MaxAttempts
	}
	if c.Sync.Timeout == 0 {
		c.Sync.Timeout = defaults.Sync.Timeout
	}
	if c.Anchor.Window == 0 {
		c.Anchor.Window = defaults.Anchor.Window
	}
	if c.Export.Format == "" {
		c.Export.Format = defaults.Export.Format
	}
}

// mergeKeybindings merges user keybindings into defaults.
// User keybindings replace the default keys of the same action.
func mergeKeybindings(defaults, user map[string][]string) map[string][]string {
	result := make(map[string][]string, len(defaults)+len(user))

	// Copy defaults first
	for k, v := range defaults {
		result[k] = append([]string(nil), v...)
	}

	// Override with user config
	for k, v := range user {
		result[k] = append([]string(nil), v...)
	}

	return result
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.GitPath == "" {
		errs = errs.Append("git_path", fmt.Errorf("cannot be empty"))
	}
	if c.GhPath == "" {
		errs = errs.Append("gh_path", fmt.Errorf("cannot be empty"))
	}
	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}
	if c.Sidebar.Width < 10 || c.Sidebar.Width > 120 {
		errs = errs.Append("sidebar.width", fmt.Errorf("must be between 10 and 120, got %d", c.Sidebar.Width))
	}
	if c.Watch.Debounce < 0 {
		errs = errs.Append("watch.debounce", fmt.Errorf("cannot be negative"))
	}
	if c.Sync.MaxAttempts < 1 || c.Sync.MaxAttempts > 10 {
		errs = errs.Append("sync.max_attempts", fmt.Errorf("must be between 1 and 10, got %d", c.Sync.MaxAttempts))
	}
	if c.Sync.BaseDelay < 0 {
		errs = errs.Append("sync.base_delay", fmt.Errorf("cannot be negative"))
	}
	if c.Sync.Timeout <= 0 {
		errs = errs.Append("sync.timeout", fmt.Errorf("must be positive"))
	}
	if c.Anchor.Window < 1 || c.Anchor.Window > 20 {
		errs = errs.Append("anchor.window", fmt.Errorf("must be between 1 and 20, got %d", c.Anchor.Window))
	}
	if c.Anchor.MinOverlap < 0 || c.Anchor.MinOverlap > c.Anchor.Window {
		errs = errs.Append("anchor.min_overlap", fmt.Errorf("must be between 0 and anchor.window (%d), got %d", c.Anchor.Window, c.Anchor.MinOverlap))
	}
	if _, err := annotation.ParseFormat(c.Export.Format); err != nil {
		errs = errs.Append("export.format", err)
	}

	for action, keys := range c.Keybindings {
		field := fmt.Sprintf("keybindings[%q]", action)
		if !isValidAction(action) {
			errs = errs.Append(field, fmt.Errorf("unknown action"))
			continue
		}
		if len(keys) == 0 {
			errs = errs.Append(field, fmt.Errorf("needs at least one key"))
		}
		for _, k := range keys {
			if k == "" {
				errs = errs.Append(field, fmt.Errorf("keys cannot be empty"))
			}
		}
	}

	return errs.ToError()
}

// LogFile returns the default log file path.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "hunk.log")
}

// ExportPath returns where an export in format is written for base.
func (c *Config) ExportPath(base string, format annotation.Format) string {
	return filepath.Join(c.Export.Dir, base+format.Ext())
}

// ExportFormat returns the configured export format.
func (c *Config) ExportFormat() annotation.Format {
	f, err := annotation.ParseFormat(c.Export.Format)
	if err != nil {
		return annotation.FormatMarkdown
	}
	return f
}
