// package session holds the mutable state of one transfer wizard and enforces its stage transitions.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/services"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
)

// History persists completed reports.
type History interface {
	Save(report *models.TransferReport) error
}

type logouter interface {
	Logout()
}

// Session is the wizard context passed to every screen.
//
// It is safe for concurrent use; a running transfer does not hold the lock.
type Session struct {
	mu       sync.RWMutex
	stage    models.WizardStage
	source   services.CatalogClient
	dest     services.DestinationClient
	engine   tasks.Engine
	history  History
	logger   *log.Logger
	catalog  *models.Catalog
	selected map[string]bool
	report   *models.TransferReport
}

// Option configures a [Session].
type Option func(*Session)

func WithHistory(h History) Option {
	return func(s *Session) { s.history = h }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New starts a session at [models.StageLogin].
func New(source services.CatalogClient, dest services.DestinationClient, engine tasks.Engine, opts ...Option) *Session {
	s := &Session{
		stage:    models.StageLogin,
		source:   source,
		dest:     dest,
		engine:   engine,
		logger:   shared.NewDiscardLogger(),
		selected: map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Stage() models.WizardStage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// Catalog returns the playlists fetched at login, or nil before login.
func (s *Session) Catalog() *models.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Report returns the last transfer report, or nil when none ran since login.
func (s *Session) Report() *models.TransferReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Selection returns the selected ids in catalog order.
func (s *Session) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection()
}

func (s *Session) selection() []string {
	var ids []string
	for _, p := range s.catalog.Playlists() {
		if s.selected[p.ID] {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

func (s *Session) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// CanConfirm reports whether the proceed action is enabled.
func (s *Session) CanConfirm() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage == models.StageSelectPlaylists && len(s.selection()) > 0
}

func rejected(action string, stage models.WizardStage) error {
	return fmt.Errorf("%w: %s from %s", shared.ErrTransitionRejected, action, stage)
}

// Login fetches the catalog and moves to [models.StageSelectPlaylists].
//
// The source client must already hold a valid session. On failure the stage is unchanged.
func (s *Session) Login(ctx context.Context) error {
	if stage := s.Stage(); stage != models.StageLogin {
		return rejected("login", stage)
	}
	if s.source == nil || !s.source.Authenticated() {
		return fmt.Errorf("%w: source: %w", shared.ErrTransitionRejected, shared.ErrNotAuthenticated)
	}

	catalog, err := services.LoadCatalog(ctx, s.source)
	if err != nil {
		s.logger.Error("failed to load catalog", "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != models.StageLogin {
		return rejected("login", s.stage)
	}
	s.catalog = catalog
	for id := range s.selected {
		if _, ok := catalog.Resolve(id); !ok {
			delete(s.selected, id)
		}
	}
	s.stage = models.StageSelectPlaylists
	s.logger.Info("logged in", "playlists", catalog.Len())
	return nil
}

// Toggle flips the selection of one catalog playlist.
func (s *Session) Toggle(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != models.StageSelectPlaylists {
		return rejected("select", s.stage)
	}
	if _, ok := s.catalog.Resolve(id); !ok {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	s.selected[id] = !s.selected[id]
	if !s.selected[id] {
		delete(s.selected, id)
	}
	return nil
}

// Select replaces the selection with ids. Every id must be in the catalog.
func (s *Session) Select(ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != models.StageSelectPlaylists {
		return rejected("select", s.stage)
	}
	for _, id := range ids {
		if _, ok := s.catalog.Resolve(id); !ok {
			return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
		}
	}

	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[id] = true
	}
	return nil
}

// Confirm accepts a non-empty selection and moves to [models.StageAuthDestination].
func (s *Session) Confirm() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != models.StageSelectPlaylists {
		return rejected("confirm", s.stage)
	}
	if len(s.selection()) == 0 {
		return shared.ErrEmptySelection
	}
	s.stage = models.StageAuthDestination
	return nil
}

// Back follows one of the backward edges: select to login, destination auth to select.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.stage {
	case models.StageSelectPlaylists:
		s.stage = models.StageLogin
	case models.StageAuthDestination:
		s.stage = models.StageSelectPlaylists
	default:
		return rejected("back", s.stage)
	}
	return nil
}

// StartTransfer runs the engine over the selection.
//
// It is rejected unless the session is at [models.StageAuthDestination] with an authenticated destination.
// Afterwards the session is at [models.StageComplete] when every playlist succeeded, and back at
// [models.StageAuthDestination] otherwise, with the selection intact for a retry.
func (s *Session) StartTransfer(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*models.TransferReport, error) {
	s.mu.Lock()
	if s.stage != models.StageAuthDestination {
		stage := s.stage
		s.mu.Unlock()
		return nil, rejected("transfer", stage)
	}
	if s.dest == nil || !s.dest.Authenticated() {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: destination: %w", shared.ErrTransitionRejected, shared.ErrNotAuthenticated)
	}

	ids := s.selection()
	catalog := s.catalog
	s.stage = models.StageTransferring
	s.report = nil
	s.mu.Unlock()

	report, err := s.engine.Run(ctx, ids, catalog, progress)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != models.StageTransferring {
		// Logged out while the transfer ran.
		return report, err
	}

	if err != nil {
		s.stage = models.StageAuthDestination
		s.logger.Error("transfer aborted", "error", err)
		return nil, err
	}

	s.report = report
	if s.history != nil {
		if err := s.history.Save(report); err != nil {
			s.logger.Warn("failed to save transfer history", "error", err)
		}
	}

	if report.AllSucceeded() {
		s.stage = models.StageComplete
	} else {
		s.stage = models.StageAuthDestination
	}
	s.logger.Info("transfer finished", "stage", s.stage, "succeeded", report.Count(models.Succeeded), "requested", report.Len())
	return report, nil
}

// Logout returns to [models.StageLogin] from any stage and clears the catalog, selection and report.
//
// Clients that support it are logged out as well.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stage = models.StageLogin
	s.catalog = nil
	s.selected = map[string]bool{}
	s.report = nil

	for _, c := range []any{s.source, s.dest} {
		if l, ok := c.(logouter); ok {
			l.Logout()
		}
	}
	s.logger.Info("logged out")
}
