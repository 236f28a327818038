package models

// WizardStage is the position of the session in the five-stage transfer wizard.
type WizardStage int

const (
	StageLogin WizardStage = iota + 1
	StageSelectPlaylists
	StageAuthDestination
	StageTransferring
	StageComplete
)

func (s WizardStage) String() string {
	switch s {
	case StageLogin:
		return "login"
	case StageSelectPlaylists:
		return "select_playlists"
	case StageAuthDestination:
		return "auth_destination"
	case StageTransferring:
		return "transferring"
	case StageComplete:
		return "complete"
	default:
		return ""
	}
}

// Title is the heading shown for the stage.
func (s WizardStage) Title() string {
	switch s {
	case StageLogin:
		return "Log in to the source service"
	case StageSelectPlaylists:
		return "Select playlists"
	case StageAuthDestination:
		return "Log in to the destination service"
	case StageTransferring:
		return "Transfer in progress"
	case StageComplete:
		return "Transfer complete"
	default:
		return ""
	}
}

// Valid reports whether s is one of the five stages.
func (s WizardStage) Valid() bool {
	return s >= StageLogin && s <= StageComplete
}
