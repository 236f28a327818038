package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/repositories"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/urfave/cli/v3"
)

type historyEntry struct {
	Run         int                    `json:"run"`
	ID          string                 `json:"id"`
	Source      string                 `json:"source"`
	Destination string                 `json:"destination"`
	CreatedAt   time.Time              `json:"created_at"`
	Report      *models.TransferReport `json:"report"`
}

func newHistoryEntry(run *models.TransferRun) historyEntry {
	return historyEntry{
		Run:         run.Sequence(),
		ID:          run.ID(),
		Source:      run.SourceService(),
		Destination: run.DestinationService(),
		CreatedAt:   run.CreatedAt(),
		Report:      run.Report(),
	}
}

// History lists past runs, or prints one run's report with --run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewTransferRunRepository(db)

	if seq := cmd.Int("run"); seq > 0 {
		run, err := repo.GetBySequence(seq)
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: run %d", shared.ErrInvalidArgument, seq)
		} else if err != nil {
			return err
		}

		if cmd.Bool("json") {
			return r.writeJSON(newHistoryEntry(run), true)
		}
		r.writePlain("Run %d · %s → %s · %s\n\n", run.Sequence(), run.SourceService(), run.DestinationService(),
			run.CreatedAt().Local().Format(time.DateTime))
		return formatter.WriteReport(r.output, run.Report(), formatter.FormatTable)
	}

	runs, err := repo.List(map[string]any{"limit": cmd.Int("limit")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		entries := make([]historyEntry, len(runs))
		for i, run := range runs {
			entries[i] = newHistoryEntry(run)
		}
		return r.writeJSON(entries, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No transfers yet.\n")
	}
	return r.writePlain("%s\n", formatter.HistoryTable(runs))
}
