package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/tasks"
)

// loginDoneMsg reports the outcome of the source login and catalog fetch.
type loginDoneMsg struct {
	err error
}

// destinationAuthMsg reports the outcome of the destination login.
type destinationAuthMsg struct {
	err error
}

// progressMsg carries one update from the running transfer and the command waiting for the next.
type progressMsg struct {
	update tasks.ProgressUpdate
	next   tea.Cmd
}

// transferDoneMsg is sent once the transfer goroutine returns.
type transferDoneMsg struct {
	report *models.TransferReport
	err    error
}
