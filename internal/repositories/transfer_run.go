package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
)

const runColumns = `id, sequence, source_service, destination_service, started_at, completed_at, created_at, updated_at, deleted_at`

// TransferRunRepository implements models.Repository[*models.TransferRun] for run history.
type TransferRunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.TransferRun] = (*TransferRunRepository)(nil)

// NewTransferRunRepository creates a new TransferRunRepository with the given database connection
func NewTransferRunRepository(db *sql.DB) *TransferRunRepository {
	return &TransferRunRepository{db: db}
}

// Create inserts the run and its outcomes in one transaction, assigning id and sequence.
func (r *TransferRunRepository) Create(run *models.TransferRun) error {
	sequence, err := NextSequence(r.db, "transfer_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	report := run.Report()
	_, err = tx.Exec(`
		INSERT INTO transfer_runs (id, sequence, source_service, destination_service, requested, succeeded, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID(),
		run.Sequence(),
		run.SourceService(),
		run.DestinationService(),
		report.Len(),
		report.Count(models.Succeeded),
		report.StartedAt(),
		report.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transfer run: %w", err)
	}

	for i, o := range report.Outcomes() {
		_, err := tx.Exec(`
			INSERT INTO transfer_outcomes (run_id, position, source_playlist_id, source_playlist_name, destination_playlist_id, status, error_message)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID(), i, o.SourcePlaylistID, o.SourcePlaylistName, nullString(o.DestinationPlaylistID), o.Status.String(), nullString(o.Error))
		if err != nil {
			return fmt.Errorf("failed to insert outcome %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer run: %w", err)
	}
	return nil
}

// Get retrieves a run and its outcomes by ID, excluding soft-deleted runs
func (r *TransferRunRepository) Get(id string) (*models.TransferRun, error) {
	query := `SELECT ` + runColumns + ` FROM transfer_runs WHERE id = ? AND deleted_at IS NULL`

	row, err := r.scan(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transfer run %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(row)
}

// GetBySequence retrieves a run by its human-readable number.
func (r *TransferRunRepository) GetBySequence(sequence int) (*models.TransferRun, error) {
	query := `SELECT ` + runColumns + ` FROM transfer_runs WHERE sequence = ? AND deleted_at IS NULL`

	row, err := r.scan(r.db.QueryRow(query, sequence))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transfer run #%d", ErrNotFound, sequence)
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(row)
}

// Delete soft-deletes a run by ID
func (r *TransferRunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE transfer_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete transfer run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: transfer run %s", ErrNotFound, id)
	}
	return nil
}

// List retrieves runs newest first, excluding soft-deleted runs.
//
// Supported criteria: "source_service" (string), "destination_service" (string), "limit" (int).
func (r *TransferRunRepository) List(criteria map[string]any) ([]*models.TransferRun, error) {
	query := `SELECT ` + runColumns + ` FROM transfer_runs WHERE deleted_at IS NULL`
	args := []any{}

	if service, ok := criteria["source_service"].(string); ok && service != "" {
		query += " AND source_service = ?"
		args = append(args, service)
	}
	if service, ok := criteria["destination_service"].(string); ok && service != "" {
		query += " AND destination_service = ?"
		args = append(args, service)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer runs: %w", err)
	}

	var scanned []runRow
	for rows.Next() {
		row, err := r.scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		scanned = append(scanned, row)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	runs := make([]*models.TransferRun, 0, len(scanned))
	for _, row := range scanned {
		run, err := r.hydrate(row)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

type runRow struct {
	id                 string
	sequence           int
	sourceService      string
	destinationService string
	startedAt          time.Time
	completedAt        time.Time
	createdAt          time.Time
	updatedAt          time.Time
	deletedAt          sql.NullTime
}

// scan reads one transfer_runs row from either [sql.Row] or [sql.Rows]
func (r *TransferRunRepository) scan(s scanner) (runRow, error) {
	var row runRow
	err := s.Scan(&row.id, &row.sequence, &row.sourceService, &row.destinationService,
		&row.startedAt, &row.completedAt, &row.createdAt, &row.updatedAt, &row.deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return row, err
	}
	if err != nil {
		return row, fmt.Errorf("failed to scan transfer run: %w", err)
	}
	return row, nil
}

// hydrate loads the outcomes of row and rebuilds the run.
//
// Runs on a fresh query once the parent rows are closed, so it works with a single connection.
func (r *TransferRunRepository) hydrate(row runRow) (*models.TransferRun, error) {
	outcomes, err := r.outcomes(row.id)
	if err != nil {
		return nil, err
	}

	report := models.NewTransferReport(outcomes, row.startedAt, row.completedAt)
	run := models.NewTransferRun(row.sequence, row.sourceService, row.destinationService, report)
	run.SetID(row.id)
	run.SetCreatedAt(row.createdAt)
	run.SetUpdatedAt(row.updatedAt)
	if row.deletedAt.Valid {
		run.SetDeletedAt(&row.deletedAt.Time)
	}
	return run, nil
}

func (r *TransferRunRepository) outcomes(runID string) ([]models.TransferOutcome, error) {
	rows, err := r.db.Query(`
		SELECT source_playlist_id, source_playlist_name, destination_playlist_id, status, error_message
		FROM transfer_outcomes
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.TransferOutcome
	for rows.Next() {
		var (
			o      models.TransferOutcome
			destID sql.NullString
			status string
			errMsg sql.NullString
		)
		if err := rows.Scan(&o.SourcePlaylistID, &o.SourcePlaylistName, &destID, &status, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}

		o.Status, err = models.ParseOutcomeStatus(status)
		if err != nil {
			return nil, fmt.Errorf("corrupt outcome in run %s: %w", runID, err)
		}
		o.DestinationPlaylistID = destID.String
		o.Error = errMsg.String
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return outcomes, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// RunRecorder saves reports as runs between a fixed pair of services.
type RunRecorder struct {
	repo               *TransferRunRepository
	sourceService      string
	destinationService string
}

// NewRunRecorder creates a RunRecorder for sourceService → destinationService.
func NewRunRecorder(repo *TransferRunRepository, sourceService, destinationService string) *RunRecorder {
	return &RunRecorder{repo: repo, sourceService: sourceService, destinationService: destinationService}
}

// Save persists report as a new run.
func (r *RunRecorder) Save(report *models.TransferReport) error {
	run := models.NewTransferRun(0, r.sourceService, r.destinationService, report)
	return r.repo.Create(run)
}
