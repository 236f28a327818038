package main

import (
	"context"

	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/repositories"
	"github.com/urfave/cli/v3"
)

// Ledger lists destination playlists that a retry would write into.
func (r *Runner) Ledger(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	entries, err := repositories.NewLedgerRepository(db).List(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return r.writePlain("Ledger is empty.\n")
	}
	return r.writePlain("%s\n", formatter.LedgerTable(entries))
}

// LedgerClear drops the entries named by --id, or every entry.
//
// The next transfer of a dropped playlist creates a new destination playlist.
func (r *Runner) LedgerClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewLedgerRepository(db)

	ids := cmd.StringSlice("id")
	if len(ids) == 0 {
		n, err := repo.Clear(ctx)
		if err != nil {
			return err
		}
		r.logger.Info("ledger cleared", "entries", n)
		return r.writePlain("✓ Cleared %d ledger entries\n", n)
	}

	for _, id := range ids {
		if err := repo.Forget(ctx, id); err != nil {
			return err
		}
		r.writePlain("✓ Forgot %s\n", id)
	}
	return nil
}
