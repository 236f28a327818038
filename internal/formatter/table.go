package formatter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, footer string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault

	tw := table.NewWriter()
	tw.SetStyle(style)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	if footer != "" {
		f := make(table.Row, columns)
		f[columns-1] = footer
		tw.AppendFooter(f)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// ReportTable renders one row per outcome with the summary as footer.
func ReportTable(report *models.TransferReport) string {
	rows := make([][]string, 0, report.Len())
	for i, o := range report.Outcomes() {
		rows = append(rows, []string{strconv.Itoa(i + 1), playlistName(o), o.Status.Message(), o.DestinationPlaylistID})
	}
	return renderTable(
		[]string{"#", "Playlist", "Status", "Destination"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
		Summary(report),
	)
}

// CatalogTable renders the source playlists the user can pick from.
func CatalogTable(catalog *models.Catalog) string {
	playlists := catalog.Playlists()
	rows := make([][]string, 0, len(playlists))
	for _, p := range playlists {
		rows = append(rows, []string{p.ID, p.Name, p.OwnerDisplayName, strconv.Itoa(p.TrackCount)})
	}
	return renderTable(
		[]string{"ID", "Name", "Owner", "Tracks"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		fmt.Sprintf("Total: %d", len(playlists)),
	)
}

// HistoryTable renders past runs, newest first.
func HistoryTable(runs []*models.TransferRun) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		report := run.Report()
		rows = append(rows, []string{
			strconv.Itoa(run.Sequence()),
			report.StartedAt().Local().Format(time.DateTime),
			fmt.Sprintf("%s → %s", run.SourceService(), run.DestinationService()),
			strconv.Itoa(report.Count(models.Succeeded)),
			strconv.Itoa(report.Len()),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Route", "Succeeded", "Requested"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight},
		"",
	)
}

// LedgerTable renders destination playlists a retry would write into.
func LedgerTable(entries []models.LedgerEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.SourcePlaylistID,
			e.DestinationPlaylistID,
			strconv.Itoa(e.AddedTracks),
			e.CreatedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable(
		[]string{"Source", "Destination", "Written", "Recorded"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		fmt.Sprintf("Total: %d", len(entries)),
	)
}
