package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
)

// DefaultNamePrefix is prepended to the source name of every created playlist.
const DefaultNamePrefix = "Created: "

// Engine transfers a selection of playlists and reports one outcome per requested id.
type Engine interface {
	Run(ctx context.Context, ids []string, catalog *models.Catalog, progress chan<- ProgressUpdate) (*models.TransferReport, error)
}

// Ledger remembers destination playlists whose populate stage did not finish.
//
// When set, a retry writes the missing tracks into the remembered playlist instead of creating another one.
type Ledger interface {
	Lookup(ctx context.Context, sourceID string) (models.LedgerEntry, bool, error)
	Record(ctx context.Context, entry models.LedgerEntry) error
	Forget(ctx context.Context, sourceID string) error
}

// TransferEngine implements [Engine] over a [services.SourceClient] and a [services.DestinationClient].
type TransferEngine struct {
	source services.SourceClient
	dest   services.DestinationClient
	ledger Ledger
	prefix string
	logger *log.Logger
	now    func() time.Time
}

// Option configures a [TransferEngine].
type Option func(*TransferEngine)

// WithNamePrefix overrides [DefaultNamePrefix].
func WithNamePrefix(prefix string) Option {
	return func(e *TransferEngine) { e.prefix = prefix }
}

// WithLedger enables reuse of destination playlists left partly populated by a failed populate stage.
func WithLedger(l Ledger) Option {
	return func(e *TransferEngine) { e.ledger = l }
}

func WithLogger(l *log.Logger) Option {
	return func(e *TransferEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *TransferEngine) { e.now = now }
}

// NewTransferEngine creates a TransferEngine with the provided clients.
func NewTransferEngine(source services.SourceClient, dest services.DestinationClient, opts ...Option) *TransferEngine {
	e := &TransferEngine{
		source: source,
		dest:   dest,
		prefix: DefaultNamePrefix,
		logger: shared.NewDiscardLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls the pipeline.
func (e *TransferEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// checkPreconditions fails when either client is missing or lacks a valid session.
func (e *TransferEngine) checkPreconditions() error {
	if e.source == nil {
		return fmt.Errorf("%w: source: %w: not initialized", shared.ErrPreconditionFailed, shared.ErrServiceUnavailable)
	}
	if e.dest == nil {
		return fmt.Errorf("%w: destination: %w: not initialized", shared.ErrPreconditionFailed, shared.ErrServiceUnavailable)
	}
	if !e.source.Authenticated() {
		return fmt.Errorf("%w: source: %w", shared.ErrPreconditionFailed, shared.ErrNotAuthenticated)
	}
	if !e.dest.Authenticated() {
		return fmt.Errorf("%w: destination: %w", shared.ErrPreconditionFailed, shared.ErrNotAuthenticated)
	}
	return nil
}

// Run transfers each id in order and returns a report with exactly one outcome per id.
//
// The only error is a failed precondition, in which case no stage has run and no report exists.
// Stage failures are recorded in the outcome of the affected playlist and never stop the run.
func (e *TransferEngine) Run(ctx context.Context, ids []string, catalog *models.Catalog, progress chan<- ProgressUpdate) (*models.TransferReport, error) {
	if err := e.checkPreconditions(); err != nil {
		return nil, err
	}

	startedAt := e.now()
	total := len(ids)
	outcomes := make([]models.TransferOutcome, 0, total)

	e.logger.Info("starting transfer", "playlists", total)

	for i, id := range ids {
		outcome := e.transferOne(ctx, i+1, total, id, catalog, progress)
		outcomes = append(outcomes, outcome)
		e.sendProgress(progress, playlistDoneUpdate(i+1, total, outcome))
	}

	report := models.NewTransferReport(outcomes, startedAt, e.now())
	e.logger.Info("transfer finished", "succeeded", report.Count(models.Succeeded), "requested", total)
	return report, nil
}

// transferOne runs resolve, fetch, create and populate for a single id.
//
// A stage only runs once the previous one succeeded. A usable ledger entry replaces the create stage.
func (e *TransferEngine) transferOne(ctx context.Context, step, total int, id string, catalog *models.Catalog, progress chan<- ProgressUpdate) models.TransferOutcome {
	logger := e.logger.With("playlist_id", id)
	outcome := models.TransferOutcome{SourcePlaylistID: id}

	e.sendProgress(progress, resolveUpdate(step, total, id))
	playlist, ok := catalog.Resolve(id)
	if !ok {
		logger.Warn("playlist not in catalog", "stage", ResolvePlaylist)
		outcome.Status = models.PlaylistNotFound
		outcome.Error = fmt.Sprintf("%s: %s", shared.ErrPlaylistNotFound, id)
		return outcome
	}
	outcome.SourcePlaylistName = playlist.Name

	e.sendProgress(progress, fetchTracksUpdate(step, total, playlist))
	tracks, err := e.source.FetchTracks(ctx, id)
	if err != nil {
		logger.Warn("stage failed", "stage", FetchTracks, "error", err)
		outcome.Status = models.FetchTracksFailed
		outcome.Error = err.Error()
		return outcome
	}
	logger.Debug("fetched tracks", "count", len(tracks))

	name := e.prefix + playlist.Name
	if entry, ok := e.reusable(ctx, logger, id); ok {
		destID := entry.DestinationPlaylistID
		remaining := entry.Remaining(tracks)
		e.sendProgress(progress, reusePlaylistUpdate(step, total, name, destID))
		e.sendProgress(progress, addTracksUpdate(step, total, len(remaining), name))

		err := e.dest.AddTracks(ctx, destID, remaining)
		if err == nil {
			e.forget(ctx, logger, id)
			return e.succeeded(logger, outcome, destID, len(remaining))
		}

		reason := services.ReasonOf(err)
		if !reason.Unusable() {
			e.remember(ctx, logger, id, destID, len(tracks)-len(remaining)+services.AddedBefore(err))
			return e.addFailed(logger, outcome, destID, err)
		}

		logger.Warn("remembered playlist is unusable, creating a new one", "destination_id", destID, "reason", reason, "error", err)
		e.forget(ctx, logger, id)
	}

	e.sendProgress(progress, createPlaylistUpdate(step, total, name))
	destID, err := e.dest.CreatePlaylist(ctx, name)
	if err != nil {
		logger.Warn("stage failed", "stage", CreatePlaylist, "reason", services.ReasonOf(err), "error", err)
		outcome.Status = models.CreateDestinationFailed
		outcome.Error = err.Error()
		return outcome
	}

	e.sendProgress(progress, addTracksUpdate(step, total, len(tracks), name))
	if err := e.dest.AddTracks(ctx, destID, tracks); err != nil {
		e.remember(ctx, logger, id, destID, services.AddedBefore(err))
		return e.addFailed(logger, outcome, destID, err)
	}
	return e.succeeded(logger, outcome, destID, len(tracks))
}

func (e *TransferEngine) succeeded(logger *log.Logger, outcome models.TransferOutcome, destID string, added int) models.TransferOutcome {
	logger.Info("playlist transferred", "destination_id", destID, "tracks", added)
	outcome.DestinationPlaylistID = destID
	outcome.Status = models.Succeeded
	return outcome
}

func (e *TransferEngine) addFailed(logger *log.Logger, outcome models.TransferOutcome, destID string, err error) models.TransferOutcome {
	logger.Warn("stage failed", "stage", AddTracks, "destination_id", destID, "reason", services.ReasonOf(err), "error", err)
	outcome.DestinationPlaylistID = destID
	outcome.Status = models.AddTracksFailed
	outcome.Error = err.Error()
	return outcome
}

// reusable returns the ledger entry for sourceID. Ledger errors fall back to creating a playlist.
func (e *TransferEngine) reusable(ctx context.Context, logger *log.Logger, sourceID string) (models.LedgerEntry, bool) {
	if e.ledger == nil {
		return models.LedgerEntry{}, false
	}
	entry, ok, err := e.ledger.Lookup(ctx, sourceID)
	if err != nil {
		logger.Warn("ledger lookup failed", "error", err)
		return models.LedgerEntry{}, false
	}
	return entry, ok && entry.DestinationPlaylistID != ""
}

// remember records destID with the number of leading tracks it already holds.
func (e *TransferEngine) remember(ctx context.Context, logger *log.Logger, sourceID, destID string, added int) {
	if e.ledger == nil {
		return
	}
	entry := models.LedgerEntry{SourcePlaylistID: sourceID, DestinationPlaylistID: destID, AddedTracks: added, CreatedAt: e.now()}
	if err := e.ledger.Record(ctx, entry); err != nil {
		logger.Warn("ledger record failed", "error", err)
	}
}

func (e *TransferEngine) forget(ctx context.Context, logger *log.Logger, sourceID string) {
	if err := e.ledger.Forget(ctx, sourceID); err != nil {
		logger.Warn("ledger forget failed", "error", err)
	}
}
