package config

// Named session actions. Keybindings map physical keys onto these.
const (
	ActionMoveDown          = "move-down"
	ActionMoveUp            = "move-up"
	ActionNextHunk          = "next-hunk"
	ActionPrevHunk          = "prev-hunk"
	ActionNextFile          = "next-file"
	ActionPrevFile          = "prev-file"
	ActionToggleSidebar     = "toggle-sidebar"
	ActionMarkViewed        = "mark-viewed"
	ActionAddAnnotation     = "add-annotation"
	ActionListAnnotations   = "list-annotations"
	ActionNextCommit        = "next-commit"
	ActionPrevCommit        = "prev-commit"
	ActionExportAnnotations = "export-annotations"
	ActionReload            = "reload"
	ActionSearch            = "search"
	ActionSearchNext        = "search-next"
	ActionSearchPrev        = "search-prev"
	ActionOpenEditor        = "open-in-editor"
	ActionOpenBrowser       = "open-in-browser"
	ActionHelp              = "help"
	ActionQuit              = "quit"
)

// Actions lists every action in help order.
func Actions() []string {
	return []string{
		ActionMoveDown,
		ActionMoveUp,
		ActionNextHunk,
		ActionPrevHunk,
		ActionNextFile,
		ActionPrevFile,
		ActionToggleSidebar,
		ActionMarkViewed,
		ActionAddAnnotation,
		ActionListAnnotations,
		ActionNextCommit,
		ActionPrevCommit,
		ActionExportAnnotations,
		ActionReload,
		ActionSearch,
		ActionSearchNext,
		ActionSearchPrev,
		ActionOpenEditor,
		ActionOpenBrowser,
		ActionHelp,
		ActionQuit,
	}
}

// defaultKeybindings provides built-in keybindings that users can override
// per action.
var defaultKeybindings = map[string][]string{
	ActionMoveDown:          {"j", "down"},
	ActionMoveUp:            {"k", "up"},
	ActionNextHunk:          {"n", "]"},
	ActionPrevHunk:          {"N", "["},
	ActionNextFile:          {"l", "tab"},
	ActionPrevFile:          {"h", "shift+tab"},
	ActionToggleSidebar:     {"b"},
	ActionMarkViewed:        {"v", "space"},
	ActionAddAnnotation:     {"a"},
	ActionListAnnotations:   {"A"},
	ActionNextCommit:        {"ctrl+n", "}"},
	ActionPrevCommit:        {"ctrl+p", "{"},
	ActionExportAnnotations: {"e"},
	ActionReload:            {"r"},
	ActionSearch:            {"/"},
	ActionSearchNext:        {">"},
	ActionSearchPrev:        {"<"},
	ActionOpenEditor:        {"E"},
	ActionOpenBrowser:       {"o"},
	ActionHelp:              {"?"},
	ActionQuit:              {"q", "ctrl+c"},
}

// DefaultKeybindings returns a copy of the built-in keybindings.
func DefaultKeybindings() map[string][]string {
	return mergeKeybindings(defaultKeybindings, nil)
}

func isValidAction(action string) bool {
	_, ok := defaultKeybindings[action]
	return ok
}
