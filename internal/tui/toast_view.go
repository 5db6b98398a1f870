package tui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/hay-kot/hunk/internal/core/notify"
	"github.com/hay-kot/hunk/internal/core/styles"
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// ToastView renders toast notifications and composites them as an overlay.
type ToastView struct {
	controller *ToastController
}

func NewToastView(controller *ToastController) *ToastView {
	return &ToastView{controller: controller}
}

// View renders the toast stack with the oldest at the top.
func (v *ToastView) View(st styles.Styles) string {
	toasts := v.controller.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(st, t))
	}

	return strings.Join(rendered, "\n")
}

func renderToast(st styles.Styles, t toast) string {
	var icon string
	var style lipgloss.Style

	switch t.notification.Level {
	case notify.LevelError:
		icon = styles.IconNotifyError
		style = st.ToastErrorStyle
	case notify.LevelWarning:
		icon = styles.IconNotifyWarning
		style = st.ToastWarningStyle
	default:
		icon = styles.IconNotifyInfo
		style = st.ToastInfoStyle
	}

	return style.Width(toastWidth).Render(icon + " " + t.notification.Message)
}

// Overlay composites the toast stack over background in the lower-right
// corner, above the status bar.
func (v *ToastView) Overlay(st styles.Styles, background string, width, height int) string {
	toastContent := v.View(st)
	if toastContent == "" {
		return background
	}

	bgLayer := lipgloss.NewLayer(background)
	toastLayer := lipgloss.NewLayer(toastContent)

	toastW := lipgloss.Width(toastContent)
	toastH := lipgloss.Height(toastContent)

	toastLayer.X(max(width-toastW-1, 0)).Y(max(height-toastH-1, 0)).Z(2)

	return lipgloss.NewCompositor(bgLayer, toastLayer).Render()
}
