// Spotify Web API implementation of [CatalogClient] and [OAuthService]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/plx/internal/models"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyPlaylistPageSize = 50
	spotifyTrackPageSize    = 100
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       Owner                `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	Images      []SpotifyImage       `json:"images"`
	URI         string               `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is nil for items that were removed from the catalog.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents a paginated response of playlist items.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyService reads the user's playlists from the Spotify Web API.
// Uses [oauth2] for authentication; expired tokens are refreshed transparently.
type SpotifyService struct {
	*oauthClient
	baseURL string
}

var (
	_ CatalogClient = (*SpotifyService)(nil)
	_ OAuthService  = (*SpotifyService)(nil)
)

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	client, err := newOAuthClient(credentials, oauth2.Endpoint{
		AuthURL:  spotifyAuthURL,
		TokenURL: spotifyTokenURL,
	}, []string{
		"playlist-read-private",
		"playlist-read-collaborative",
		"user-read-private",
		"user-read-email",
	})
	if err != nil {
		return nil, err
	}

	return &SpotifyService{oauthClient: client, baseURL: spotifyBaseURL}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

func (s *SpotifyService) get(ctx context.Context, op, endpoint string, result any) error {
	status, err := s.doJSON(ctx, http.MethodGet, s.baseURL+endpoint, nil, nil, result)
	if err != nil {
		return &SourceError{Op: op, StatusCode: status, Err: err}
	}
	return nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.get(ctx, "profile", "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile returns the account summary shown after login.
func (s *SpotifyService) Profile(ctx context.Context) (Profile, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return Profile{}, err
	}
	return Profile{ID: user.ID, DisplayName: user.DisplayName, Email: user.Email}, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 || limit > spotifyPlaylistPageSize {
		limit = spotifyPlaylistPageSize
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response SpotifyPaginatedPlaylists
	if err := s.get(ctx, "list_playlists", endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// PlaylistTracks retrieves one page of a playlist's items.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*SpotifyPaginatedPlaylistTracks, error) {
	if limit <= 0 || limit > spotifyTrackPageSize {
		limit = spotifyTrackPageSize
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)

	var response SpotifyPaginatedPlaylistTracks
	if err := s.get(ctx, "fetch_tracks", endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetPlaylists retrieves all playlists for the authenticated user, following pagination.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	offset := 0

	for {
		response, err := s.UserPlaylists(ctx, spotifyPlaylistPageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, sp := range response.Items {
			playlists = append(playlists, sp.toModel())
		}

		if response.Next == nil || len(response.Items) == 0 {
			break
		}
		offset += len(response.Items)
	}

	return playlists, nil
}

// FetchTracks retrieves every track of a playlist, following pagination.
//
// Items without a track object are skipped. The artist is the first listed artist.
func (s *SpotifyService) FetchTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	var tracks []models.Track
	offset := 0

	for {
		response, err := s.PlaylistTracks(ctx, playlistID, spotifyTrackPageSize, offset)
		if err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			if item.Track == nil {
				continue
			}
			tracks = append(tracks, item.Track.toModel())
		}

		if response.Next == nil || len(response.Items) == 0 {
			break
		}
		offset += len(response.Items)
	}

	return tracks, nil
}

func (p SpotifySimplePlaylist) toModel() models.Playlist {
	playlist := models.Playlist{
		ID:               p.ID,
		Name:             p.Name,
		OwnerDisplayName: p.Owner.DisplayName,
		TrackCount:       p.Tracks.Total,
	}
	if len(p.Images) > 0 {
		playlist.ImageURL = p.Images[0].URL
	}
	return playlist
}

func (t SpotifyTrack) toModel() models.Track {
	track := models.Track{Name: t.Name, ExternalURI: t.URI}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}

// LoadCatalog fetches the user's playlists and indexes them.
func LoadCatalog(ctx context.Context, client CatalogClient) (*models.Catalog, error) {
	playlists, err := client.GetPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	return models.NewCatalog(playlists), nil
}
