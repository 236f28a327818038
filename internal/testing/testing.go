// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/plx/internal/models"
)

// MockSource is a test double for [services.CatalogClient]
type MockSource struct {
	mu          sync.Mutex
	Authed      bool
	Playlists   []models.Playlist
	PlaylistErr error
	Tracks      map[string][]models.Track // Tracks by playlist id
	FetchErrs   map[string]error          // Errors by playlist id
	FetchCalls  []string                  // Playlist ids in call order
}

// NewMockSource returns an authenticated source serving playlists.
func NewMockSource(playlists ...models.Playlist) *MockSource {
	return &MockSource{
		Authed:    true,
		Playlists: playlists,
		Tracks:    map[string][]models.Track{},
		FetchErrs: map[string]error{},
	}
}

func (m *MockSource) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Authed
}

func (m *MockSource) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	return m.Playlists, nil
}

func (m *MockSource) FetchTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCalls = append(m.FetchCalls, playlistID)
	if err := m.FetchErrs[playlistID]; err != nil {
		return nil, err
	}
	return m.Tracks[playlistID], nil
}

// Calls returns the number of FetchTracks calls.
func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.FetchCalls)
}

// MockDestination is a test double for [services.DestinationClient]
//
// Created playlists get ids dest-1, dest-2, ... in creation order.
type MockDestination struct {
	mu         sync.Mutex
	Authed     bool
	CreateErrs map[string]error          // Errors by playlist name
	AddErrs    map[string]error          // Errors by destination id
	Created    []string                  // Names in creation order
	Added      map[string][]models.Track // Tracks by destination id
	AddCalls   int
}

// NewMockDestination returns an authenticated destination that accepts every write.
func NewMockDestination() *MockDestination {
	return &MockDestination{
		Authed:     true,
		CreateErrs: map[string]error{},
		AddErrs:    map[string]error{},
		Added:      map[string][]models.Track{},
	}
}

func (m *MockDestination) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Authed
}

// SetAuthenticated flips the session state, as a completed or expired login would.
func (m *MockDestination) SetAuthenticated(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Authed = ok
}

func (m *MockDestination) CreatePlaylist(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.CreateErrs[name]; err != nil {
		return "", err
	}
	m.Created = append(m.Created, name)
	return fmt.Sprintf("dest-%d", len(m.Created)), nil
}

func (m *MockDestination) AddTracks(ctx context.Context, playlistID string, tracks []models.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AddCalls++
	if err := m.AddErrs[playlistID]; err != nil {
		return err
	}
	m.Added[playlistID] = append(m.Added[playlistID], tracks...)
	return nil
}

// CreateCalls returns the number of successful CreatePlaylist calls.
func (m *MockDestination) CreateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Created)
}

// MemoryLedger is an in-memory destination ledger.
type MemoryLedger struct {
	mu      sync.Mutex
	Entries map[string]models.LedgerEntry // Entries by source playlist id
	Err     error
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{Entries: map[string]models.LedgerEntry{}}
}

func (l *MemoryLedger) Lookup(ctx context.Context, sourceID string) (models.LedgerEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return models.LedgerEntry{}, false, l.Err
	}
	entry, ok := l.Entries[sourceID]
	return entry, ok, nil
}

func (l *MemoryLedger) Record(ctx context.Context, entry models.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.Entries[entry.SourcePlaylistID] = entry
	return nil
}

func (l *MemoryLedger) Forget(ctx context.Context, sourceID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	delete(l.Entries, sourceID)
	return nil
}

// Tracks builds n tracks named "<prefix> n".
func Tracks(prefix string, n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			Name:        fmt.Sprintf("%s %d", prefix, i+1),
			Artist:      "Artist",
			ExternalURI: fmt.Sprintf("spotify:track:%s%d", prefix, i+1),
		}
	}
	return tracks
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
