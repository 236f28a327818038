package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/models"
)

const ledgerColumns = `source_playlist_id, destination_playlist_id, added_tracks, created_at`

// LedgerRepository stores the destination ledger in the destination_ledger table.
//
// It satisfies the ledger interface of the transfer engine.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Lookup returns the entry recorded for sourceID.
func (r *LedgerRepository) Lookup(ctx context.Context, sourceID string) (models.LedgerEntry, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ledgerColumns+` FROM destination_ledger WHERE source_playlist_id = ?`, sourceID)

	entry, err := scanLedgerEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.LedgerEntry{}, false, nil
	}
	if err != nil {
		return models.LedgerEntry{}, false, fmt.Errorf("failed to look up ledger entry: %w", err)
	}
	return entry, true, nil
}

// Record stores entry, replacing any earlier entry for the same source playlist.
//
// A zero CreatedAt is set to the current time.
func (r *LedgerRepository) Record(ctx context.Context, entry models.LedgerEntry) error {
	if entry.SourcePlaylistID == "" || entry.DestinationPlaylistID == "" {
		return fmt.Errorf("ledger entry requires source and destination ids")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO destination_ledger (`+ledgerColumns+`)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_playlist_id) DO UPDATE SET
			destination_playlist_id = excluded.destination_playlist_id,
			added_tracks = excluded.added_tracks,
			created_at = excluded.created_at
	`, entry.SourcePlaylistID, entry.DestinationPlaylistID, max(entry.AddedTracks, 0), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// Forget removes the entry for sourceID. Missing entries are not an error.
func (r *LedgerRepository) Forget(ctx context.Context, sourceID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM destination_ledger WHERE source_playlist_id = ?`, sourceID); err != nil {
		return fmt.Errorf("failed to forget ledger entry: %w", err)
	}
	return nil
}

// Clear removes every entry and returns how many were removed.
func (r *LedgerRepository) Clear(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM destination_ledger`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear ledger: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared entries: %w", err)
	}
	return int(n), nil
}

// List returns every entry, oldest first.
func (r *LedgerRepository) List(ctx context.Context) ([]models.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ledgerColumns+` FROM destination_ledger ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

func scanLedgerEntry(s scanner) (models.LedgerEntry, error) {
	var e models.LedgerEntry
	err := s.Scan(&e.SourcePlaylistID, &e.DestinationPlaylistID, &e.AddedTracks, &e.CreatedAt)
	return e, err
}
