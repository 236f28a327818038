package session

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
	tu "github.com/desertthunder/plx/internal/testing"
)

type recordingHistory struct {
	saved []*models.TransferReport
	err   error
}

func (h *recordingHistory) Save(report *models.TransferReport) error {
	h.saved = append(h.saved, report)
	return h.err
}

func newSession(t *testing.T) (*Session, *tu.MockSource, *tu.MockDestination, *recordingHistory) {
	t.Helper()

	source := tu.NewMockSource(
		models.Playlist{ID: "p1", Name: "Road Trip"},
		models.Playlist{ID: "p2", Name: "Focus"},
		models.Playlist{ID: "p3", Name: "Gym"},
	)
	source.Tracks["p1"] = tu.Tracks("road", 2)
	source.Tracks["p2"] = tu.Tracks("focus", 1)

	dest := tu.NewMockDestination()
	dest.Authed = false

	history := &recordingHistory{}
	s := New(source, dest, tasks.NewTransferEngine(source, dest), WithHistory(history))
	return s, source, dest, history
}

// advance drives a fresh session to the destination auth stage with ids selected.
func advance(t *testing.T, s *Session, ids ...string) {
	t.Helper()
	if err := s.Login(context.Background()); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := s.Select(ids...); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if err := s.Confirm(); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
}

func TestSession_Login(t *testing.T) {
	t.Run("fetches catalog", func(t *testing.T) {
		s, _, _, _ := newSession(t)
		if s.Stage() != models.StageLogin {
			t.Fatalf("expected login stage, got %v", s.Stage())
		}

		if err := s.Login(context.Background()); err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if s.Stage() != models.StageSelectPlaylists {
			t.Errorf("expected select stage, got %v", s.Stage())
		}
		if s.Catalog().Len() != 3 {
			t.Errorf("expected 3 playlists, got %d", s.Catalog().Len())
		}
	})

	t.Run("rejected without source session", func(t *testing.T) {
		s, source, _, _ := newSession(t)
		source.Authed = false

		err := s.Login(context.Background())
		if !errors.Is(err, shared.ErrTransitionRejected) || !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected rejected transition, got %v", err)
		}
		if s.Stage() != models.StageLogin {
			t.Errorf("expected to stay at login, got %v", s.Stage())
		}
	})

	t.Run("catalog failure keeps login stage", func(t *testing.T) {
		s, source, _, _ := newSession(t)
		source.PlaylistErr = shared.ErrSourceUnavailable

		if err := s.Login(context.Background()); !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
		if s.Stage() != models.StageLogin || s.Catalog() != nil {
			t.Error("expected no catalog and login stage")
		}
	})

	t.Run("rejected outside login stage", func(t *testing.T) {
		s, _, _, _ := newSession(t)
		s.Login(context.Background())

		if err := s.Login(context.Background()); !errors.Is(err, shared.ErrTransitionRejected) {
			t.Errorf("expected rejected transition, got %v", err)
		}
	})
}

func TestSession_Selection(t *testing.T) {
	t.Run("toggle and confirm", func(t *testing.T) {
		s, _, _, _ := newSession(t)
		s.Login(context.Background())

		if s.CanConfirm() {
			t.Error("proceed should be disabled with an empty selection")
		}
		if err := s.Confirm(); !errors.Is(err, shared.ErrEmptySelection) {
			t.Errorf("expected ErrEmptySelection, got %v", err)
		}
		if s.Stage() != models.StageSelectPlaylists {
			t.Errorf("expected to stay at select, got %v", s.Stage())
		}

		s.Toggle("p3")
		s.Toggle("p1")
		s.Toggle("p3")
		if got := s.Selection(); len(got) != 1 || got[0] != "p1" {
			t.Errorf("expected selection [p1], got %v", got)
		}
		if !s.CanConfirm() {
			t.Error("proceed should be enabled")
		}

		if err := s.Confirm(); err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		if s.Stage() != models.StageAuthDestination {
			t.Errorf("expected destination auth stage, got %v", s.Stage())
		}
	})

	t.Run("selection is in catalog order", func(t *testing.T) {
		s, _, _, _ := newSession(t)
		s.Login(context.Background())
		s.Select("p3", "p1")

		if got := s.Selection(); len(got) != 2 || got[0] != "p1" || got[1] != "p3" {
			t.Errorf("expected [p1 p3], got %v", got)
		}
	})

	t.Run("unknown ids are rejected", func(t *testing.T) {
		s, _, _, _ := newSession(t)
		s.Login(context.Background())

		if err := s.Toggle("nope"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if err := s.Select("p1", "nope"); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if len(s.Selection()) != 0 {
			t.Error("a rejected Select should not change the selection")
		}
	})

	t.Run("selection outside select stage", func(t *testing.T) {
		s, _, _, _ := newSession(t)
		if err := s.Toggle("p1"); !errors.Is(err, shared.ErrTransitionRejected) {
			t.Errorf("expected rejected transition, got %v", err)
		}
	})
}

func TestSession_Back(t *testing.T) {
	s, _, _, _ := newSession(t)

	if err := s.Back(); !errors.Is(err, shared.ErrTransitionRejected) {
		t.Errorf("expected back from login to be rejected, got %v", err)
	}

	advance(t, s, "p1")
	if err := s.Back(); err != nil || s.Stage() != models.StageSelectPlaylists {
		t.Fatalf("expected 3 -> 2, got %v (%v)", s.Stage(), err)
	}
	if err := s.Back(); err != nil || s.Stage() != models.StageLogin {
		t.Fatalf("expected 2 -> 1, got %v (%v)", s.Stage(), err)
	}

	if err := s.Login(context.Background()); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got := s.Selection(); len(got) != 1 || got[0] != "p1" {
		t.Errorf("expected selection to survive going back, got %v", got)
	}
}

func TestSession_StartTransfer(t *testing.T) {
	t.Run("rejected without destination session", func(t *testing.T) {
		s, _, dest, history := newSession(t)
		advance(t, s, "p1")

		_, err := s.StartTransfer(context.Background(), nil)
		if !errors.Is(err, shared.ErrTransitionRejected) {
			t.Fatalf("expected rejected transition, got %v", err)
		}
		if s.Stage() != models.StageAuthDestination {
			t.Errorf("expected to stay at destination auth, got %v", s.Stage())
		}
		if dest.CreateCalls() != 0 || len(history.saved) != 0 {
			t.Error("expected no side effects")
		}
	})

	t.Run("rejected from other stages", func(t *testing.T) {
		s, _, _, _ := newSession(t)
		if _, err := s.StartTransfer(context.Background(), nil); !errors.Is(err, shared.ErrTransitionRejected) {
			t.Errorf("expected rejected transition, got %v", err)
		}
	})

	t.Run("all succeed completes", func(t *testing.T) {
		s, _, dest, history := newSession(t)
		advance(t, s, "p1", "p2")
		dest.SetAuthenticated(true)

		report, err := s.StartTransfer(context.Background(), nil)
		if err != nil {
			t.Fatalf("StartTransfer() error = %v", err)
		}
		if report.Len() != 2 || !report.AllSucceeded() {
			t.Errorf("expected 2 successes, got %+v", report.Outcomes())
		}
		if s.Stage() != models.StageComplete {
			t.Errorf("expected complete stage, got %v", s.Stage())
		}
		if s.Report() != report || len(history.saved) != 1 {
			t.Error("expected report to be kept and saved")
		}
	})

	t.Run("partial failure returns to destination auth", func(t *testing.T) {
		s, _, dest, _ := newSession(t)
		advance(t, s, "p1", "p2")
		dest.SetAuthenticated(true)
		dest.AddErrs["dest-2"] = errors.New("rate limited")

		report, err := s.StartTransfer(context.Background(), nil)
		if err != nil {
			t.Fatalf("StartTransfer() error = %v", err)
		}
		if report.At(0).Status != models.Succeeded || report.At(1).Status != models.AddTracksFailed {
			t.Errorf("unexpected outcomes %+v", report.Outcomes())
		}
		if s.Stage() != models.StageAuthDestination {
			t.Errorf("expected destination auth stage, got %v", s.Stage())
		}
		if got := s.Selection(); len(got) != 2 {
			t.Errorf("expected selection to be preserved, got %v", got)
		}

		delete(dest.AddErrs, "dest-2")
		if _, err := s.StartTransfer(context.Background(), nil); err != nil {
			t.Fatalf("retry error = %v", err)
		}
		if s.Stage() != models.StageComplete {
			t.Errorf("expected retry to complete, got %v", s.Stage())
		}
	})

	t.Run("precondition failure returns to destination auth", func(t *testing.T) {
		s, source, dest, history := newSession(t)
		advance(t, s, "p1")
		dest.SetAuthenticated(true)
		source.Authed = false

		_, err := s.StartTransfer(context.Background(), nil)
		if !errors.Is(err, shared.ErrPreconditionFailed) {
			t.Fatalf("expected ErrPreconditionFailed, got %v", err)
		}
		if s.Stage() != models.StageAuthDestination || s.Report() != nil {
			t.Error("expected destination auth stage and no report")
		}
		if dest.CreateCalls() != 0 || len(history.saved) != 0 {
			t.Error("expected no side effects")
		}
	})

	t.Run("history errors do not fail the transfer", func(t *testing.T) {
		s, _, dest, history := newSession(t)
		history.err = errors.New("disk full")
		advance(t, s, "p1")
		dest.SetAuthenticated(true)

		if _, err := s.StartTransfer(context.Background(), nil); err != nil {
			t.Fatalf("StartTransfer() error = %v", err)
		}
		if s.Stage() != models.StageComplete {
			t.Errorf("expected complete stage, got %v", s.Stage())
		}
	})
}

func TestSession_Logout(t *testing.T) {
	stages := []struct {
		name  string
		setup func(*Session, *tu.MockDestination)
	}{
		{"from login", func(*Session, *tu.MockDestination) {}},
		{"from select", func(s *Session, _ *tu.MockDestination) {
			s.Login(context.Background())
			s.Toggle("p1")
		}},
		{"from complete", func(s *Session, d *tu.MockDestination) {
			s.Login(context.Background())
			s.Select("p1")
			s.Confirm()
			d.SetAuthenticated(true)
			s.StartTransfer(context.Background(), nil)
		}},
	}

	for _, tt := range stages {
		t.Run(tt.name, func(t *testing.T) {
			s, _, dest, _ := newSession(t)
			tt.setup(s, dest)

			s.Logout()
			if s.Stage() != models.StageLogin {
				t.Errorf("expected login stage, got %v", s.Stage())
			}
			if s.Catalog() != nil || len(s.Selection()) != 0 || s.Report() != nil {
				t.Error("expected catalog, selection and report to be cleared")
			}
		})
	}
}
