// Package theme maps named color schemes onto the semantic roles used when
// rendering a diff, and picks the effective scheme from the places a user
// can name one.
package theme

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/lucasb-eyer/go-colorful"
)

// Role is a semantic color slot.
type Role int

const (
	RoleAdded Role = iota
	RoleRemoved
	RoleContextBg
	RoleCursor
	RoleBorder
	RoleHeader

	roleCount
)

var roleNames = [roleCount]string{
	RoleAdded:     "added",
	RoleRemoved:   "removed",
	RoleContextBg: "context-bg",
	RoleCursor:    "cursor",
	RoleBorder:    "border",
	RoleHeader:    "header",
}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "unknown"
	}
	return roleNames[r]
}

// Roles returns every role in declaration order.
func Roles() []Role {
	out := make([]Role, roleCount)
	for i := range out {
		out[i] = Role(i)
	}
	return out
}

// Theme is a resolved color scheme.
type Theme struct {
	Name string
	Dark bool
	// ChromaStyle names the syntax highlighting style that suits the scheme.
	ChromaStyle string

	colors [roleCount]string
}

// Hex returns the color of r as "#rrggbb".
func (t Theme) Hex(r Role) string {
	if r < 0 || r >= roleCount {
		return t.colors[RoleHeader]
	}
	return t.colors[r]
}

// Color returns the color of r.
func (t Theme) Color(r Role) color.Color {
	return lipgloss.Color(t.Hex(r))
}

func (t Theme) colorful(r Role) colorful.Color {
	c, err := colorful.Hex(t.Hex(r))
	if err != nil {
		return colorful.Color{}
	}
	return c
}

func (t Theme) blend(from, to colorful.Color, amount float64) color.Color {
	return lipgloss.Color(from.BlendLab(to, amount).Clamped().Hex())
}

// Foreground is the body text color, chosen to contrast with the background.
func (t Theme) Foreground() color.Color {
	bg := t.colorful(RoleContextBg)
	target := colorful.Color{R: 1, G: 1, B: 1}
	if !t.Dark {
		target = colorful.Color{}
	}
	return t.blend(bg, target, 0.85)
}

// Muted is a low-emphasis text color between the background and foreground.
func (t Theme) Muted() color.Color {
	fg, _ := colorful.MakeColor(t.Foreground())
	return t.blend(t.colorful(RoleContextBg), fg, 0.45)
}

// AddedBg is a background tint for added lines.
func (t Theme) AddedBg() color.Color {
	return t.blend(t.colorful(RoleContextBg), t.colorful(RoleAdded), 0.18)
}

// RemovedBg is a background tint for removed lines.
func (t Theme) RemovedBg() color.Color {
	return t.blend(t.colorful(RoleContextBg), t.colorful(RoleRemoved), 0.18)
}

func colorHexPtr(c color.Color) *string {
	if c == nil {
		return nil
	}
	cc, ok := colorful.MakeColor(c)
	if !ok {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a markdown style derived from the theme.
func (t Theme) GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	if !t.Dark {
		cfg = glamourstyles.LightStyleConfig
	}

	fg := colorHexPtr(t.Foreground())
	header := colorHexPtr(t.Color(RoleHeader))
	muted := colorHexPtr(t.Muted())
	border := colorHexPtr(t.Color(RoleBorder))
	added := colorHexPtr(t.Color(RoleAdded))

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = header
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = border
	cfg.H2.Color = header
	cfg.H3.Color = header

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = header
	cfg.LinkText.Color = header

	cfg.Code.Color = added
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
