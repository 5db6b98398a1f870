package styles

// Plain unicode symbols; the review screen avoids nerd font glyphs so it
// renders in any terminal font.
var (
	IconViewed    = "✓"
	IconUnviewed  = " "
	IconNote      = "✎"
	IconOrphaned  = "⚠"
	IconCursor    = "▶"
	IconDirOpen   = "▾"
	IconSeparator = "•"
)

// Notification icons
var (
	IconNotifyInfo    = "ℹ"
	IconNotifyWarning = "⚠"
	IconNotifyError   = "✗"
)
