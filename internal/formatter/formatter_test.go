package formatter

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	th "github.com/desertthunder/plx/internal/testing"
)

func sampleReport() *models.TransferReport {
	started := time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)
	return models.NewTransferReport([]models.TransferOutcome{
		{SourcePlaylistID: "p1", SourcePlaylistName: "Road Trip", Status: models.Succeeded, DestinationPlaylistID: "amzn-1"},
		{SourcePlaylistID: "p2", SourcePlaylistName: "Focus | Deep", Status: models.FetchTracksFailed, Error: "source service unavailable"},
		{SourcePlaylistID: "p3", Status: models.PlaylistNotFound},
	}, started, started.Add(1500*time.Millisecond))
}

func TestReportRenderers(t *testing.T) {
	t.Run("ReportToText", func(t *testing.T) {
		data, err := ReportToText(sampleReport())
		if err != nil {
			t.Fatalf("ReportToText failed: %v", err)
		}

		want := strings.Join([]string{
			"Road Trip: Transferred successfully",
			"Focus | Deep: Failed: Error fetching tracks",
			"p3: Failed: Playlist not found",
			"1 of 3 playlists transferred",
		}, "\n") + "\n"
		if string(data) != want {
			t.Errorf("unexpected text output:\n%s", data)
		}
	})

	t.Run("ReportToMarkdown", func(t *testing.T) {
		data, err := ReportToMarkdown(sampleReport())
		if err != nil {
			t.Fatalf("ReportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Transfer Report",
			"**Duration**: 1.5s",
			"| 1 | Road Trip | Transferred successfully | amzn-1 |",
			`| 2 | Focus \| Deep | Failed: Error fetching tracks |  |`,
			"**Result**: 1 of 3 playlists transferred",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ReportToCSV", func(t *testing.T) {
		data, err := ReportToCSV(sampleReport())
		if err != nil {
			t.Fatalf("ReportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 4 {
			t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
		}
		if lines[0] != "Position,Playlist ID,Playlist,Status,Destination ID,Error" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if lines[2] != "2,p2,Focus | Deep,fetch_tracks_failed,,source service unavailable" {
			t.Errorf("unexpected row: %s", lines[2])
		}
	})

	t.Run("ReportToJSON", func(t *testing.T) {
		data, err := ReportToJSON(sampleReport())
		if err != nil {
			t.Fatalf("ReportToJSON failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded["total"] != float64(3) || decoded["succeeded"] != float64(1) {
			t.Errorf("unexpected summary %v", decoded)
		}
	})

	t.Run("ReportTable", func(t *testing.T) {
		output := ReportTable(sampleReport())
		for _, want := range []string{"PLAYLIST", "Road Trip", "Failed: Playlist not found", "1 of 3 playlists transferred", "╭"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("Summary", func(t *testing.T) {
		one := models.NewTransferReport([]models.TransferOutcome{{SourcePlaylistID: "p1", Status: models.Succeeded}}, time.Now(), time.Now())
		if Summary(one) != "1 of 1 playlist transferred" {
			t.Errorf("unexpected summary %q", Summary(one))
		}
	})
}

func TestRender(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			data, err := Render(sampleReport(), f)
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			if len(data) == 0 {
				t.Error("expected output")
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := Render(sampleReport(), "yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("WriteReport", func(t *testing.T) {
		var sb strings.Builder
		if err := WriteReport(&sb, sampleReport(), FormatText); err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if !strings.HasPrefix(sb.String(), "Road Trip:") {
			t.Errorf("unexpected output %q", sb.String())
		}

		if err := WriteReport(&th.FWriter{}, sampleReport(), FormatText); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{" table ", FormatTable, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTables(t *testing.T) {
	t.Run("CatalogTable", func(t *testing.T) {
		catalog := models.NewCatalog([]models.Playlist{
			{ID: "p1", Name: "Road Trip", OwnerDisplayName: "dana", TrackCount: 12},
		})
		output := CatalogTable(catalog)
		for _, want := range []string{"Road Trip", "dana", "12", "Total: 1"} {
			if !strings.Contains(output, want) {
				t.Errorf("catalog table missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("HistoryTable", func(t *testing.T) {
		run := models.NewTransferRun(7, "Spotify", "Amazon Music", sampleReport())
		output := HistoryTable([]*models.TransferRun{run})
		for _, want := range []string{"Spotify → Amazon Music", "7"} {
			if !strings.Contains(output, want) {
				t.Errorf("history table missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("LedgerTable", func(t *testing.T) {
		output := LedgerTable([]models.LedgerEntry{
			{SourcePlaylistID: "p1", DestinationPlaylistID: "amzn-1", AddedTracks: 100, CreatedAt: time.Now()},
		})
		for _, want := range []string{"p1", "amzn-1", "100", "Total: 1"} {
			if !strings.Contains(output, want) {
				t.Errorf("ledger table missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("empty headers", func(t *testing.T) {
		if renderTable(nil, nil, nil, "") != "" {
			t.Error("expected no output without headers")
		}
	})
}
