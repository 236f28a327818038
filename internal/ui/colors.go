package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#25D1DA", "#04B575", "#FF5F87", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	stage  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	marked lipgloss.Style
	frame  lipgloss.Style
}

// NewPalette builds a palette from title, success, error, warning and muted colors.
func NewPalette(t, s, e, w, muted string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		stage:  NewEm(muted),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(muted),
		marked: NewBold(s),
		frame:  lipgloss.NewStyle().Padding(1, 2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
