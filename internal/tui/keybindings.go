package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/hay-kot/hunk/internal/core/config"
	"github.com/hay-kot/hunk/internal/tui/components"
)

var actionHelp = map[string]string{
	config.ActionMoveDown:          "next line",
	config.ActionMoveUp:            "previous line",
	config.ActionNextHunk:          "next hunk",
	config.ActionPrevHunk:          "previous hunk",
	config.ActionNextFile:          "next file",
	config.ActionPrevFile:          "previous file",
	config.ActionToggleSidebar:     "toggle file tree",
	config.ActionMarkViewed:        "mark file viewed",
	config.ActionAddAnnotation:     "annotate hunk or line",
	config.ActionListAnnotations:   "list annotations",
	config.ActionNextCommit:        "next commit (stacked)",
	config.ActionPrevCommit:        "previous commit (stacked)",
	config.ActionExportAnnotations: "export annotations",
	config.ActionReload:            "reload the diff",
	config.ActionSearch:            "search lines",
	config.ActionSearchNext:        "next match",
	config.ActionSearchPrev:        "previous match",
	config.ActionOpenEditor:        "open file in $EDITOR",
	config.ActionOpenBrowser:       "open file in the pull request",
	config.ActionHelp:              "show help",
	config.ActionQuit:              "quit",
}

type binding struct {
	action string
	key    key.Binding
}

// KeyMap translates key presses into named actions.
type KeyMap struct {
	bindings []binding
}

// NewKeyMap builds a key map from action → keys. Actions are matched in
// help order, so a key bound to two actions triggers the first.
func NewKeyMap(keybindings map[string][]string) KeyMap {
	km := KeyMap{}
	for _, action := range config.Actions() {
		keys := keybindings[action]
		if len(keys) == 0 {
			continue
		}
		km.bindings = append(km.bindings, binding{
			action: action,
			key: key.NewBinding(
				key.WithKeys(keys...),
				key.WithHelp(strings.Join(keys, "/"), actionHelp[action]),
			),
		})
	}
	return km
}

// Action returns the action bound to msg.
func (k KeyMap) Action(msg tea.KeyPressMsg) (string, bool) {
	for _, b := range k.bindings {
		if key.Matches(msg, b.key) {
			return b.action, true
		}
	}
	return "", false
}

// Keys returns the keys bound to action.
func (k KeyMap) Keys(action string) []string {
	for _, b := range k.bindings {
		if b.action == action {
			return b.key.Keys()
		}
	}
	return nil
}

// HelpEntries lists every binding for the help screen.
func (k KeyMap) HelpEntries() []components.HelpEntry {
	entries := make([]components.HelpEntry, 0, len(k.bindings))
	for _, b := range k.bindings {
		h := b.key.Help()
		entries = append(entries, components.HelpEntry{Key: h.Key, Desc: h.Desc})
	}
	return entries
}
