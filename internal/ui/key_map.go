package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/plx/internal/models"
)

// keyMap defines the [key.Binding] mapping for the wizard.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	toggle  key.Binding
	all     key.Binding
	login   key.Binding
	confirm key.Binding
	start   key.Binding
	back    key.Binding
	logout  key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle:  key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		all:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all")),
		login:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "log in")),
		confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		start:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "transfer")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// forStage returns the bindings shown in the help line of a stage.
func (k keyMap) forStage(stage models.WizardStage, canConfirm bool) []key.Binding {
	switch stage {
	case models.StageLogin:
		return []key.Binding{k.login, k.quit}
	case models.StageSelectPlaylists:
		confirm := k.confirm
		confirm.SetEnabled(canConfirm)
		return []key.Binding{k.up, k.down, k.toggle, k.all, confirm, k.back, k.logout, k.quit}
	case models.StageAuthDestination:
		return []key.Binding{k.start, k.back, k.logout, k.quit}
	case models.StageComplete:
		return []key.Binding{k.logout, k.quit}
	default:
		return nil
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.toggle, k.all},
		{k.login, k.back, k.logout},
		{k.quit},
	}
}
