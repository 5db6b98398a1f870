package theme

import (
	"slices"
	"strings"
)

const (
	DefaultDark  = "default-dark"
	DefaultLight = "default-light"
)

type preset struct {
	dark   bool
	chroma string
	colors [roleCount]string
}

var presets = map[string]preset{
	DefaultDark: {
		dark:   true,
		chroma: "github-dark",
		colors: [roleCount]string{
			RoleAdded:     "#3fb950",
			RoleRemoved:   "#f85149",
			RoleContextBg: "#0d1117",
			RoleCursor:    "#264f78",
			RoleBorder:    "#30363d",
			RoleHeader:    "#58a6ff",
		},
	},
	DefaultLight: {
		chroma: "github",
		colors: [roleCount]string{
			RoleAdded:     "#1a7f37",
			RoleRemoved:   "#cf222e",
			RoleContextBg: "#ffffff",
			RoleCursor:    "#c8e1ff",
			RoleBorder:    "#d0d7de",
			RoleHeader:    "#0969da",
		},
	},
	"catppuccin-mocha": {
		dark:   true,
		chroma: "catppuccin-mocha",
		colors: [roleCount]string{
			RoleAdded:     "#a6e3a1", // Green
			RoleRemoved:   "#f38ba8", // Red
			RoleContextBg: "#1e1e2e", // Base
			RoleCursor:    "#45475a", // Surface1
			RoleBorder:    "#313244", // Surface0
			RoleHeader:    "#89b4fa", // Blue
		},
	},
	"catppuccin-latte": {
		chroma: "catppuccin-latte",
		colors: [roleCount]string{
			RoleAdded:     "#40a02b",
			RoleRemoved:   "#d20f39",
			RoleContextBg: "#eff1f5",
			RoleCursor:    "#ccd0da",
			RoleBorder:    "#bcc0cc",
			RoleHeader:    "#1e66f5",
		},
	},
	"dracula": {
		dark:   true,
		chroma: "dracula",
		colors: [roleCount]string{
			RoleAdded:     "#50fa7b",
			RoleRemoved:   "#ff5555",
			RoleContextBg: "#282a36",
			RoleCursor:    "#44475a",
			RoleBorder:    "#6272a4",
			RoleHeader:    "#bd93f9",
		},
	},
	"nord": {
		dark:   true,
		chroma: "nord",
		colors: [roleCount]string{
			RoleAdded:     "#a3be8c",
			RoleRemoved:   "#bf616a",
			RoleContextBg: "#2e3440",
			RoleCursor:    "#434c5e",
			RoleBorder:    "#4c566a",
			RoleHeader:    "#88c0d0",
		},
	},
	"gruvbox-dark": {
		dark:   true,
		chroma: "gruvbox",
		colors: [roleCount]string{
			RoleAdded:     "#b8bb26",
			RoleRemoved:   "#fb4934",
			RoleContextBg: "#282828",
			RoleCursor:    "#504945",
			RoleBorder:    "#3c3836",
			RoleHeader:    "#83a598",
		},
	},
	"gruvbox-light": {
		chroma: "gruvbox-light",
		colors: [roleCount]string{
			RoleAdded:     "#79740e",
			RoleRemoved:   "#9d0006",
			RoleContextBg: "#fbf1c7",
			RoleCursor:    "#d5c4a1",
			RoleBorder:    "#bdae93",
			RoleHeader:    "#076678",
		},
	},
	"one-dark": {
		dark:   true,
		chroma: "onedark",
		colors: [roleCount]string{
			RoleAdded:     "#98c379", // green
			RoleRemoved:   "#e06c75", // red
			RoleContextBg: "#282c34", // background
			RoleCursor:    "#3e4452", // gutter grey
			RoleBorder:    "#5c6370", // comment grey
			RoleHeader:    "#61afef", // blue
		},
	},
	"solarized-dark": {
		dark:   true,
		chroma: "solarized-dark",
		colors: [roleCount]string{
			RoleAdded:     "#859900",
			RoleRemoved:   "#dc322f",
			RoleContextBg: "#002b36",
			RoleCursor:    "#073642",
			RoleBorder:    "#586e75",
			RoleHeader:    "#268bd2",
		},
	},
	"solarized-light": {
		chroma: "solarized-light",
		colors: [roleCount]string{
			RoleAdded:     "#859900",
			RoleRemoved:   "#dc322f",
			RoleContextBg: "#fdf6e3",
			RoleCursor:    "#eee8d5",
			RoleBorder:    "#93a1a1",
			RoleHeader:    "#268bd2",
		},
	},
}

var aliases = map[string]string{
	"dark":       DefaultDark,
	"light":      DefaultLight,
	"default":    DefaultDark,
	"catppuccin": "catppuccin-mocha",
	"mocha":      "catppuccin-mocha",
	"latte":      "catppuccin-latte",
	"gruvbox":    "gruvbox-dark",
	"onedark":    "one-dark",
	"solarized":  "solarized-dark",
}

// Normalize lowercases name, trims it and turns underscores and spaces into
// dashes.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("_", "-", " ", "-").Replace(name)
}

// Names returns the canonical preset names, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Aliases returns the alias table, alias to canonical name.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

// Lookup returns the theme for a preset name or alias.
func Lookup(name string) (Theme, bool) {
	name = Normalize(name)
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	p, ok := presets[name]
	if !ok {
		return Theme{}, false
	}
	return Theme{Name: name, Dark: p.dark, ChromaStyle: p.chroma, colors: p.colors}, true
}

// MustLookup is Lookup for names known to exist.
func MustLookup(name string) Theme {
	t, ok := Lookup(name)
	if !ok {
		panic("theme: unknown preset " + name)
	}
	return t
}
