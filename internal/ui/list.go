package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plx/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item] with a selection mark.
type playlistItem struct {
	playlist models.Playlist
	selected bool
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }

func (i playlistItem) Title() string {
	if i.selected {
		return styles.marked.Render("[x] ") + i.playlist.Name
	}
	return "[ ] " + i.playlist.Name
}

func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.playlist.OwnerDisplayName != "" {
		desc = fmt.Sprintf("%s • by %s", desc, i.playlist.OwnerDisplayName)
	}
	return desc
}

// newPlaylistList builds the selection list with filtering and the built-in help disabled,
// since the wizard owns the key bindings.
func newPlaylistList(catalog *models.Catalog, isSelected func(string) bool, width, height int) list.Model {
	playlists := catalog.Playlists()
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p, selected: isSelected(p.ID)}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Source Playlists"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}
