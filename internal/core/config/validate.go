package config

import (
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/hay-kot/hunk/internal/core/theme"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// executables, directories and patterns. The configPath argument specifies the
// config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateWatchIgnore(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Theme != "" {
		if _, ok := theme.Lookup(c.Theme); !ok {
			warnings = append(warnings, ValidationWarning{
				Category: "Theme",
				Item:     c.Theme,
				Message:  "unknown theme, falling back to the environment or terminal default",
			})
		}
	}

	if c.Highlight.Style != "" {
		if _, ok := styles.Registry[strings.ToLower(c.Highlight.Style)]; !ok {
			warnings = append(warnings, ValidationWarning{
				Category: "Highlight",
				Item:     c.Highlight.Style,
				Message:  "unknown chroma style, the theme's style is used",
			})
		}
	}

	owners := map[string][]string{}
	for action, keys := range c.Keybindings {
		for _, k := range keys {
			owners[k] = append(owners[k], action)
		}
	}
	for key, actions := range owners {
		if len(actions) > 1 {
			slices.Sort(actions)
			warnings = append(warnings, ValidationWarning{
				Category: "Keybindings",
				Item:     key,
				Message:  "bound to several actions: " + strings.Join(actions, ", "),
			})
		}
	}
	slices.SortFunc(warnings, func(a, b ValidationWarning) int {
		if a.Category != b.Category {
			return strings.Compare(a.Category, b.Category)
		}
		return strings.Compare(a.Item, b.Item)
	})

	return warnings
}

// validateFileAccess checks config file, data directory, export directory
// and the git and gh executables.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("git_path", c.GitPath, executableExists),
		criterio.Run("gh_path", c.GhPath, executableExists),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("export.dir", c.Export.Dir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// executableExists validates that path resolves to an executable.
func executableExists(path string) error {
	if path == "" {
		return nil
	}
	if _, err := exec.LookPath(path); err != nil {
		return fmt.Errorf("executable not found: %s", path)
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateWatchIgnore() error {
	var errs criterio.FieldErrorsBuilder
	for i, p := range c.Watch.Ignore {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("watch.ignore[%d]", i), fmt.Errorf("invalid pattern %q", p))
		}
	}
	return errs.ToError()
}
