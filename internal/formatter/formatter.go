// package formatter renders transfer reports, catalogs and run history (text, Markdown, CSV, JSON, tables)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

// Format selects a report rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatTable    Format = "table"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown, FormatCSV, FormatTable}

// ParseFormat is case-insensitive; "md" is accepted for Markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "md":
		return FormatMarkdown, nil
	case FormatText, FormatJSON, FormatMarkdown, FormatCSV, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Summary renders "<succeeded> of <total> playlists transferred".
func Summary(report *models.TransferReport) string {
	total := report.Len()
	noun := "playlists"
	if total == 1 {
		noun = "playlist"
	}
	return fmt.Sprintf("%d of %d %s transferred", report.Count(models.Succeeded), total, noun)
}

// ReportToText renders one "<name>: <status>" line per playlist followed by the summary.
func ReportToText(report *models.TransferReport) ([]byte, error) {
	var buf bytes.Buffer

	for _, o := range report.Outcomes() {
		buf.WriteString(o.Line())
		buf.WriteByte('\n')
	}
	buf.WriteString(Summary(report))
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// ReportToMarkdown renders the report as a heading, a summary and a status table.
func ReportToMarkdown(report *models.TransferReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Transfer Report\n\n")
	buf.WriteString(fmt.Sprintf("**Started**: %s\n", report.StartedAt().Format(time.RFC1123)))
	buf.WriteString(fmt.Sprintf("**Duration**: %s\n", report.CompletedAt().Sub(report.StartedAt()).Round(time.Millisecond)))
	buf.WriteString(fmt.Sprintf("**Result**: %s\n\n", Summary(report)))

	buf.WriteString("| # | Playlist | Status | Destination |\n")
	buf.WriteString("|---|----------|--------|-------------|\n")
	for i, o := range report.Outcomes() {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, escapeCell(playlistName(o)), o.Status.Message(), escapeCell(o.DestinationPlaylistID)))
	}

	return buf.Bytes(), nil
}

// ReportToCSV renders the report with columns: Position, Playlist ID, Playlist, Status, Destination ID, Error
func ReportToCSV(report *models.TransferReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Playlist ID", "Playlist", "Status", "Destination ID", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, o := range report.Outcomes() {
		record := []string{
			fmt.Sprint(i + 1),
			o.SourcePlaylistID,
			o.SourcePlaylistName,
			o.Status.String(),
			o.DestinationPlaylistID,
			o.Error,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToJSON renders the report as indented JSON.
func ReportToJSON(report *models.TransferReport) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// Render dispatches to the renderer for format.
func Render(report *models.TransferReport, format Format) ([]byte, error) {
	switch format {
	case FormatText, "":
		return ReportToText(report)
	case FormatJSON:
		return ReportToJSON(report)
	case FormatMarkdown:
		return ReportToMarkdown(report)
	case FormatCSV:
		return ReportToCSV(report)
	case FormatTable:
		return []byte(ReportTable(report) + "\n"), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport renders report to w.
func WriteReport(w io.Writer, report *models.TransferReport, format Format) error {
	data, err := Render(report, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func playlistName(o models.TransferOutcome) string {
	if o.SourcePlaylistName != "" {
		return o.SourcePlaylistName
	}
	return o.SourcePlaylistID
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
