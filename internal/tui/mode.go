package tui

// Mode is the state of the UI state machine. Every mode has its own key
// handling and dispatch table.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAnnotationEdit
	ModeAnnotationList
	ModeHelp
	ModeConfirm
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeAnnotationEdit:
		return "annotation-edit"
	case ModeAnnotationList:
		return "annotation-list"
	case ModeHelp:
		return "help"
	case ModeConfirm:
		return "confirm"
	case ModeSearch:
		return "search"
	default:
		return "unknown"
	}
}
