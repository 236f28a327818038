package models

import "time"

// LedgerEntry is a destination playlist whose populate stage did not finish.
//
// AddedTracks counts the leading source tracks already written, so a retry sends only the rest.
type LedgerEntry struct {
	SourcePlaylistID      string
	DestinationPlaylistID string
	AddedTracks           int
	CreatedAt             time.Time
}

// Remaining returns the tracks a retry still has to write.
func (e LedgerEntry) Remaining(tracks []Track) []Track {
	if e.AddedTracks <= 0 {
		return tracks
	}
	if e.AddedTracks >= len(tracks) {
		return nil
	}
	return tracks[e.AddedTracks:]
}
