package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCatalog(t *testing.T) {
	playlists := []Playlist{
		{ID: "p1", Name: "Road Trip", TrackCount: 12},
		{ID: "p2", Name: "Focus", TrackCount: 30},
		{ID: "p1", Name: "Duplicate"},
	}

	t.Run("Resolve", func(t *testing.T) {
		catalog := NewCatalog(playlists)

		first, ok := catalog.Resolve("p1")
		if !ok {
			t.Fatal("expected p1 to resolve")
		}
		second, _ := catalog.Resolve("p1")
		if first != second {
			t.Errorf("resolving the same id should be stable, got %+v and %+v", first, second)
		}
		if first.Name != "Road Trip" {
			t.Errorf("expected first occurrence to win, got %s", first.Name)
		}

		if _, ok := catalog.Resolve("missing"); ok {
			t.Error("expected missing id not to resolve")
		}
	})

	t.Run("Playlists Keeps Fetch Order", func(t *testing.T) {
		catalog := NewCatalog(playlists)
		got := catalog.Playlists()
		if len(got) != 2 || catalog.Len() != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(got))
		}
		if got[0].ID != "p1" || got[1].ID != "p2" {
			t.Errorf("unexpected order %v", got)
		}
	})

	t.Run("Nil Catalog", func(t *testing.T) {
		var catalog *Catalog
		if _, ok := catalog.Resolve("p1"); ok {
			t.Error("nil catalog should not resolve anything")
		}
		if catalog.Len() != 0 || catalog.Playlists() != nil {
			t.Error("nil catalog should be empty")
		}
	})
}

func TestTrackKey(t *testing.T) {
	a := Track{Name: "Song", Artist: "Artist", ExternalURI: "spotify:track:1"}
	b := Track{Name: "Song", Artist: "Artist", ExternalURI: "spotify:track:2"}
	if a.Key() == b.Key() {
		t.Error("tracks with different URIs should have different keys")
	}
	if a.Key() != (Track{Name: "Song", Artist: "Artist", ExternalURI: "spotify:track:1"}).Key() {
		t.Error("equal tracks should have equal keys")
	}
}

func TestOutcomeStatus(t *testing.T) {
	tc := []struct {
		status    OutcomeStatus
		name      string
		retryable bool
	}{
		{PlaylistNotFound, "playlist_not_found", false},
		{FetchTracksFailed, "fetch_tracks_failed", true},
		{CreateDestinationFailed, "create_destination_failed", true},
		{AddTracksFailed, "add_tracks_failed", true},
		{Succeeded, "succeeded", false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if tt.status.String() != tt.name {
				t.Errorf("expected %s, got %s", tt.name, tt.status.String())
			}
			if tt.status.Retryable() != tt.retryable {
				t.Errorf("expected retryable=%v", tt.retryable)
			}

			parsed, err := ParseOutcomeStatus(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if parsed != tt.status {
				t.Errorf("expected %v, got %v", tt.status, parsed)
			}

			if tt.status.Message() == "Unknown" {
				t.Error("every status should have a message")
			}
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		if _, err := ParseOutcomeStatus("exploded"); err == nil {
			t.Error("expected error for unknown status")
		}
		if _, err := OutcomeStatus(0).MarshalText(); err == nil {
			t.Error("expected error marshalling the zero status")
		}
	})
}

func TestTransferReport(t *testing.T) {
	started := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(time.Minute)

	t.Run("AllSucceeded", func(t *testing.T) {
		report := NewTransferReport([]TransferOutcome{
			{SourcePlaylistID: "p1", Status: Succeeded},
			{SourcePlaylistID: "p2", Status: Succeeded},
		}, started, completed)
		if !report.AllSucceeded() {
			t.Error("expected all succeeded")
		}

		mixed := NewTransferReport([]TransferOutcome{
			{SourcePlaylistID: "p1", Status: Succeeded},
			{SourcePlaylistID: "p2", Status: AddTracksFailed},
		}, started, completed)
		if mixed.AllSucceeded() {
			t.Error("expected mixed report not to be all succeeded")
		}

		if NewTransferReport(nil, started, completed).AllSucceeded() {
			t.Error("an empty report should not count as all succeeded")
		}
	})

	t.Run("Immutable", func(t *testing.T) {
		outcomes := []TransferOutcome{{SourcePlaylistID: "p1", Status: Succeeded}}
		report := NewTransferReport(outcomes, started, completed)

		outcomes[0].Status = FetchTracksFailed
		if report.At(0).Status != Succeeded {
			t.Error("report should not alias the input slice")
		}

		copied := report.Outcomes()
		copied[0].Status = FetchTracksFailed
		if report.At(0).Status != Succeeded {
			t.Error("report should not alias the returned slice")
		}
	})

	t.Run("Nil Report", func(t *testing.T) {
		var report *TransferReport

		if report.Len() != 0 || report.Outcomes() != nil || report.AllSucceeded() {
			t.Error("nil report should be empty")
		}
		if got := report.At(0); got != (TransferOutcome{}) {
			t.Errorf("expected zero outcome, got %+v", got)
		}
		if !report.StartedAt().IsZero() || !report.CompletedAt().IsZero() {
			t.Error("nil report should have zero times")
		}
		if report.Count(Succeeded) != 0 || report.RetryIDs() != nil {
			t.Error("nil report should have nothing to count or retry")
		}
		if data, err := report.MarshalJSON(); err != nil || !strings.Contains(string(data), `"outcomes":[]`) {
			t.Errorf("unexpected JSON %s (%v)", data, err)
		}
	})

	t.Run("At Out Of Range", func(t *testing.T) {
		report := NewTransferReport([]TransferOutcome{{SourcePlaylistID: "p1", Status: Succeeded}}, started, completed)
		if report.At(1) != (TransferOutcome{}) || report.At(-1) != (TransferOutcome{}) {
			t.Error("expected zero outcome outside the report")
		}
	})

	t.Run("Counts And RetryIDs", func(t *testing.T) {
		report := NewTransferReport([]TransferOutcome{
			{SourcePlaylistID: "p1", Status: Succeeded},
			{SourcePlaylistID: "p2", Status: FetchTracksFailed},
			{SourcePlaylistID: "p3", Status: PlaylistNotFound},
			{SourcePlaylistID: "p4", Status: AddTracksFailed},
		}, started, completed)

		if report.Count(Succeeded) != 1 {
			t.Errorf("expected 1 success, got %d", report.Count(Succeeded))
		}

		retry := report.RetryIDs()
		if strings.Join(retry, ",") != "p2,p4" {
			t.Errorf("expected retry ids p2,p4, got %v", retry)
		}
	})

	t.Run("MarshalJSON", func(t *testing.T) {
		report := NewTransferReport([]TransferOutcome{
			{SourcePlaylistID: "p1", SourcePlaylistName: "Road Trip", Status: Succeeded, DestinationPlaylistID: "d1"},
			{SourcePlaylistID: "p2", Status: PlaylistNotFound},
		}, started, completed)

		data, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Succeeded int               `json:"succeeded"`
			Total     int               `json:"total"`
			Outcomes  []TransferOutcome `json:"outcomes"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decoded.Total != 2 || decoded.Succeeded != 1 {
			t.Errorf("unexpected summary %+v", decoded)
		}
		if decoded.Outcomes[1].Status != PlaylistNotFound {
			t.Errorf("expected status to decode, got %v", decoded.Outcomes[1].Status)
		}
		if !strings.Contains(string(data), `"status":"succeeded"`) {
			t.Errorf("expected textual status in %s", data)
		}
	})

	t.Run("Line", func(t *testing.T) {
		named := TransferOutcome{SourcePlaylistID: "p1", SourcePlaylistName: "Road Trip", Status: Succeeded}
		if named.Line() != "Road Trip: Transferred successfully" {
			t.Errorf("unexpected line %q", named.Line())
		}

		unnamed := TransferOutcome{SourcePlaylistID: "p9", Status: PlaylistNotFound}
		if unnamed.Line() != "p9: Failed: Playlist not found" {
			t.Errorf("unexpected line %q", unnamed.Line())
		}
	})
}

func TestWizardStage(t *testing.T) {
	if int(StageLogin) != 1 || int(StageComplete) != 5 {
		t.Fatal("stages must be numbered 1 through 5")
	}
	for s := StageLogin; s <= StageComplete; s++ {
		if !s.Valid() || s.String() == "" || s.Title() == "" {
			t.Errorf("stage %d should be fully described", int(s))
		}
	}
	if WizardStage(0).Valid() || WizardStage(6).Valid() {
		t.Error("out of range stages should be invalid")
	}
}

func TestTransferRunValidate(t *testing.T) {
	report := NewTransferReport([]TransferOutcome{{SourcePlaylistID: "p1", Status: Succeeded}}, time.Now(), time.Now())

	run := NewTransferRun(1, "Spotify", "Amazon Music", report)
	if err := run.Validate(); err == nil {
		t.Error("expected error without id")
	}

	run.SetID("run-1")
	if err := run.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := NewTransferRun(1, "Spotify", "Amazon Music", NewTransferReport([]TransferOutcome{{SourcePlaylistID: "p1"}}, time.Now(), time.Now()))
	bad.SetID("run-2")
	if err := bad.Validate(); err == nil {
		t.Error("expected error for zero status")
	}
}

func TestLedgerEntry_Remaining(t *testing.T) {
	tracks := []Track{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	tc := []struct {
		name  string
		added int
		want  int
	}{
		{"nothing written", 0, 3},
		{"partly written", 2, 1},
		{"fully written", 3, 0},
		{"more than the source now has", 5, 0},
		{"negative count", -1, 3},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := LedgerEntry{AddedTracks: tt.added}.Remaining(tracks)
			if len(got) != tt.want {
				t.Fatalf("expected %d remaining, got %d", tt.want, len(got))
			}
			if tt.want > 0 && got[len(got)-1].Name != "c" {
				t.Errorf("expected the tail of the playlist, got %+v", got)
			}
		})
	}
}
