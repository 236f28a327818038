package services

import (
	"context"

	"github.com/desertthunder/plx/internal/models"
	"golang.org/x/oauth2"
)

// SourceClient reads tracks from the service playlists are copied from.
type SourceClient interface {
	// Authenticated reports whether the client holds a usable session.
	Authenticated() bool

	// FetchTracks returns every track of the playlist in playlist order.
	// Failures wrap [shared.ErrSourceUnavailable].
	FetchTracks(ctx context.Context, playlistID string) ([]models.Track, error)
}

// CatalogClient is a [SourceClient] that can also list the user's playlists.
type CatalogClient interface {
	SourceClient

	// GetPlaylists fetches every playlist owned or followed by the user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)
}

// DestinationClient writes playlists to the service playlists are copied to.
//
// Both write operations fail with a [*DestinationError].
type DestinationClient interface {
	Authenticated() bool

	// CreatePlaylist creates an empty playlist and returns its id.
	CreatePlaylist(ctx context.Context, name string) (string, error)

	// AddTracks appends tracks to an existing playlist.
	AddTracks(ctx context.Context, playlistID string, tracks []models.Track) error
}

// OAuthService is implemented by clients that log in through the authorization code flow.
type OAuthService interface {
	Name() string
	Authenticated() bool
	Authenticate(ctx context.Context, credentials map[string]string) error
	GetAuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	CurrentToken() *oauth2.Token
	Logout()
	SetTokenRefreshCallback(callback func(*oauth2.Token))
}

// Profile is the minimal account information shown after login.
type Profile struct {
	ID          string
	DisplayName string
	Email       string
}
