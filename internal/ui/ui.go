package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/formatter"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/session"
	"github.com/desertthunder/plx/internal/shared"
	"github.com/desertthunder/plx/internal/tasks"
)

// Authenticator completes a login with one service, typically through the browser.
//
// It should return immediately when the service already holds a usable session.
type Authenticator func(ctx context.Context) error

// Model is the bubbletea model of the transfer wizard.
//
// Which screen is shown is decided by the session stage alone; the model only keeps
// transient display state such as the spinner and the last error.
type Model struct {
	ctx         context.Context
	sess        *session.Session
	loginSource Authenticator
	loginDest   Authenticator
	sourceName  string
	destName    string
	width       int
	height      int
	playlists   list.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
	busy        bool
	err         error
	current     tasks.ProgressUpdate
	lines       []string
}

// Option configures a [Model].
type Option func(*Model)

// WithSourceLogin runs fn before the catalog is fetched.
func WithSourceLogin(name string, fn Authenticator) Option {
	return func(m *Model) {
		m.sourceName = name
		m.loginSource = fn
	}
}

// WithDestinationLogin runs fn before each transfer starts.
func WithDestinationLogin(name string, fn Authenticator) Option {
	return func(m *Model) {
		m.destName = name
		m.loginDest = fn
	}
}

// NewModel creates a wizard over sess.
func NewModel(ctx context.Context, sess *session.Session, opts ...Option) *Model {
	m := &Model{
		ctx:        ctx,
		sess:       sess,
		sourceName: "Spotify",
		destName:   "Amazon Music",
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.ok)),
		help:       help.New(),
		keys:       newKeyMap(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.sess.Catalog() != nil {
			m.playlists.SetSize(m.listSize())
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)

	case loginDoneMsg:
		m.busy = false
		m.err = msg.err
		if msg.err == nil {
			m.refreshList()
		}
		return m, nil

	case destinationAuthMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		return m, m.startTransfer()

	case progressMsg:
		m.current = msg.update
		if msg.update.Phase == tasks.PlaylistDone {
			m.lines = append(m.lines, msg.update.Message)
		}
		return m, msg.next

	case transferDoneMsg:
		m.busy = false
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	stage := m.sess.Stage()
	if key.Matches(msg, m.keys.logout) && stage != models.StageLogin {
		m.sess.Logout()
		m.err = nil
		m.lines = nil
		return m, nil
	}

	switch stage {
	case models.StageLogin:
		if key.Matches(msg, m.keys.login) {
			m.err = nil
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.login())
		}

	case models.StageSelectPlaylists:
		return m.handleSelectKey(msg)

	case models.StageAuthDestination:
		switch {
		case key.Matches(msg, m.keys.back):
			m.err = m.sess.Back()
			m.refreshList()
		case key.Matches(msg, m.keys.start):
			m.err = nil
			m.busy = true
			return m, tea.Batch(m.spinner.Tick, m.authenticateDestination())
		}
	}

	return m, nil
}

func (m *Model) handleSelectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.err = m.sess.Back()
		return m, nil

	case key.Matches(msg, m.keys.confirm):
		m.err = m.sess.Confirm()
		return m, nil

	case key.Matches(msg, m.keys.toggle):
		if item, ok := m.playlists.SelectedItem().(playlistItem); ok {
			m.err = m.sess.Toggle(item.playlist.ID)
			item.selected = m.sess.IsSelected(item.playlist.ID)
			return m, m.playlists.SetItem(m.playlists.Index(), item)
		}
		return m, nil

	case key.Matches(msg, m.keys.all):
		m.err = m.toggleAll()
		m.refreshList()
		return m, nil
	}

	var cmd tea.Cmd
	m.playlists, cmd = m.playlists.Update(msg)
	return m, cmd
}

// toggleAll selects every playlist, or clears the selection when all are already selected.
func (m *Model) toggleAll() error {
	catalog := m.sess.Catalog()
	ids := make([]string, 0, catalog.Len())
	for _, p := range catalog.Playlists() {
		ids = append(ids, p.ID)
	}

	if len(m.sess.Selection()) < len(ids) {
		return m.sess.Select(ids...)
	}
	for _, id := range ids {
		if err := m.sess.Toggle(id); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) refreshList() {
	catalog := m.sess.Catalog()
	if catalog == nil {
		return
	}
	index := m.playlists.Index()
	w, h := m.listSize()
	m.playlists = newPlaylistList(catalog, m.sess.IsSelected, w, h)
	if index < catalog.Len() {
		m.playlists.Select(index)
	}
}

func (m *Model) listSize() (int, int) {
	return max(m.width-4, 20), max(m.height-8, 10)
}

func (m *Model) login() tea.Cmd {
	return func() tea.Msg {
		if m.loginSource != nil {
			if err := m.loginSource(m.ctx); err != nil {
				return loginDoneMsg{err: err}
			}
		}
		return loginDoneMsg{err: m.sess.Login(m.ctx)}
	}
}

func (m *Model) authenticateDestination() tea.Cmd {
	return func() tea.Msg {
		if m.loginDest == nil {
			return destinationAuthMsg{}
		}
		return destinationAuthMsg{err: m.loginDest(m.ctx)}
	}
}

// startTransfer runs the session transfer in a goroutine and streams its progress.
func (m *Model) startTransfer() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan transferDoneMsg, 1)
	m.current = tasks.ProgressUpdate{}
	m.lines = nil

	go func() {
		report, err := m.sess.StartTransfer(m.ctx, progress)
		close(progress)
		done <- transferDoneMsg{report: report, err: err}
	}()

	return waitForProgress(progress, done)
}

// waitForProgress yields the next update, or the final result once progress is closed.
func waitForProgress(progress <-chan tasks.ProgressUpdate, done <-chan transferDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressMsg{update: update, next: waitForProgress(progress, done)}
		}
		return <-done
	}
}

// View renders the screen for the current session stage.
func (m *Model) View() string {
	stage := m.sess.Stage()

	var body string
	switch stage {
	case models.StageLogin:
		body = m.renderLogin()
	case models.StageSelectPlaylists:
		body = m.renderSelect()
	case models.StageAuthDestination:
		body = m.renderAuthDestination()
	case models.StageTransferring:
		body = m.renderTransferring()
	case models.StageComplete:
		body = m.renderComplete()
	}

	var b strings.Builder
	b.WriteString(styles.stage.Render(fmt.Sprintf("Step %d of 5 · %s", int(stage), stage.Title())))
	b.WriteString("\n\n")
	b.WriteString(body)
	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.err.Render(errorText(m.err)))
	}
	if bindings := m.keys.forStage(stage, m.sess.CanConfirm()); len(bindings) > 0 && !m.busy {
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView(bindings))
	}
	return styles.frame.Render(b.String())
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("plx")
	if m.busy {
		return fmt.Sprintf("%s\n%s Logging in to %s...", title, m.spinner.View(), m.sourceName)
	}
	return fmt.Sprintf("%s\nLog in to %s to load your playlists.", title, m.sourceName)
}

func (m *Model) renderSelect() string {
	count := len(m.sess.Selection())
	status := styles.help.Render("Select at least one playlist to continue")
	if count > 0 {
		status = styles.ok.Render(fmt.Sprintf("%d selected", count))
	}
	return fmt.Sprintf("%s\n%s", m.playlists.View(), status)
}

func (m *Model) renderAuthDestination() string {
	var b strings.Builder
	ids := m.sess.Selection()
	catalog := m.sess.Catalog()

	b.WriteString(styles.title.Render(fmt.Sprintf("Transfer %d playlist(s) to %s", len(ids), m.destName)))
	b.WriteString("\n")
	for _, id := range ids {
		if p, ok := catalog.Resolve(id); ok {
			fmt.Fprintf(&b, "  • %s (%d tracks)\n", p.Name, p.TrackCount)
		}
	}

	if report := m.sess.Report(); report != nil {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render("Last transfer did not complete: " + formatter.Summary(report)))
		b.WriteString("\n")
		b.WriteString(renderOutcomes(report))
	}

	if m.busy {
		fmt.Fprintf(&b, "\n%s Waiting for %s login...", m.spinner.View(), m.destName)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderTransferring() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Transferring Playlists"))
	b.WriteString("\n")
	if m.current.Total > 0 {
		fmt.Fprintf(&b, "%s [%d/%d] %s\n", m.spinner.View(), m.current.Step, m.current.Total, m.current.Message)
	} else {
		fmt.Fprintf(&b, "%s Starting...\n", m.spinner.View())
	}
	for _, line := range m.lines {
		fmt.Fprintf(&b, "  %s\n", line)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderComplete() string {
	report := m.sess.Report()
	title := styles.ok.Render("✓ Transfer Complete!")
	if report == nil {
		return title
	}
	return fmt.Sprintf("%s\n%s\n\n%s", title, formatter.Summary(report), renderOutcomes(report))
}

func renderOutcomes(report *models.TransferReport) string {
	lines := make([]string, 0, report.Len())
	for _, o := range report.Outcomes() {
		line := o.Line()
		if o.Status == models.Succeeded {
			line = styles.ok.Render("✓ ") + line
		} else {
			line = styles.err.Render("✗ ") + line
		}
		lines = append(lines, "  "+line)
	}
	return strings.Join(lines, "\n")
}

func errorText(err error) string {
	switch {
	case errors.Is(err, shared.ErrEmptySelection):
		return "Select at least one playlist first."
	case errors.Is(err, shared.ErrNotAuthenticated):
		return fmt.Sprintf("Not logged in: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
