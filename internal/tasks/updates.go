package tasks

import (
	"fmt"

	"github.com/desertthunder/plx/internal/models"
)

// ProgressUpdate represents a progress event during a transfer.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline stage
	Step    int    // 1-based position of the playlist in the request
	Total   int    // Number of requested playlists
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Phase is the pipeline stage a [ProgressUpdate] belongs to.
type Phase int

const (
	ResolvePlaylist Phase = iota
	FetchTracks
	CreatePlaylist
	AddTracks
	PlaylistDone
)

func (p Phase) String() string {
	switch p {
	case ResolvePlaylist:
		return "resolve_playlist"
	case FetchTracks:
		return "fetch_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case AddTracks:
		return "add_tracks"
	case PlaylistDone:
		return "playlist_done"
	default:
		return ""
	}
}

func resolveUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Looking up playlist %s...", step, total, id),
	}
}

func fetchTracksUpdate(step, total int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching tracks for %s...", step, total, pl.Name),
		Data:    pl,
	}
}

func createPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Creating %s...", step, total, name),
	}
}

func reusePlaylistUpdate(step, total int, name, destID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Reusing %s (ID: %s)...", step, total, name, destID),
	}
}

func addTracksUpdate(step, total, count int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Adding %d tracks to %s...", step, total, count, name),
	}
}

func playlistDoneUpdate(step, total int, outcome models.TransferOutcome) ProgressUpdate {
	mark := "✓"
	if outcome.Status != models.Succeeded {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   PlaylistDone,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, outcome.Line()),
		Data:    outcome,
	}
}
