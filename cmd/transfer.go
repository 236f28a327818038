package main

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TransferRun transfers the playlists named by --id (or --all) and prints the report.
//
// Partial failures are not an error: the report says which playlists to retry.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	ids := cmd.StringSlice("id")
	all := cmd.Bool("all")
	if len(ids) == 0 && !all {
		return fmt.Errorf("%w: --id or --all is required", shared.ErrMissingArgument)
	}

	// An unauthenticated source leaves the catalog nil; the engine then fails its precondition check.
	var catalog *models.Catalog
	if r.source != nil && r.source.Authenticated() {
		if catalog, err = services.LoadCatalog(ctx, r.source); err != nil {
			return err
		}
	}
	if all && catalog != nil {
		ids = nil
		for _, p := range catalog.Playlists() {
			ids = append(ids, p.ID)
		}
	}

	r.logger.Info("starting transfer", "playlists", len(ids))

	progress := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logProgress(update)
		}
	}()

	report, err := r.newEngine().Run(ctx, ids, catalog, progress)
	close(progress)
	wg.Wait()

	if err != nil {
		return err
	}

	if history := r.history(); history != nil {
		if err := history.Save(report); err != nil {
			r.logger.Warn("failed to save transfer history", "error", err)
		}
	}

	if err := formatter.WriteReport(r.output, report, format); err != nil {
		return err
	}

	if retry := report.RetryIDs(); len(retry) > 0 && format != formatter.FormatJSON {
		r.writePlainln("Retry the failed playlists with:\n  plx transfer run --id %s", strings.Join(retry, " --id "))
	}
	return nil
}

func (r *Runner) logProgress(update tasks.ProgressUpdate) {
	kv := []any{"step", fmt.Sprintf("%d/%d", update.Step, update.Total), "phase", update.Phase}
	if update.Phase == tasks.PlaylistDone {
		r.logger.Info(update.Message, kv...)
		return
	}
	r.logger.Debug(update.Message, kv...)
}
