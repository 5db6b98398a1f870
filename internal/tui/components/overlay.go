// Package components provides reusable TUI components.
package components

import lipgloss "charm.land/lipgloss/v2"

// Overlay composites fg centered over background.
func Overlay(background, fg string, width, height int) string {
	bgLayer := lipgloss.NewLayer(background)
	fgLayer := lipgloss.NewLayer(fg)

	fgW := lipgloss.Width(fg)
	fgH := lipgloss.Height(fg)
	fgLayer.X(max((width-fgW)/2, 0)).Y(max((height-fgH)/2, 0)).Z(1)

	return lipgloss.NewCompositor(bgLayer, fgLayer).Render()
}
