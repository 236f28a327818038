// Amazon Music Web API implementation of [DestinationClient] and [OAuthService]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/plx/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	amazonAuthURL  = "https://www.amazon.com/ap/oa"
	amazonTokenURL = "https://api.amazon.com/auth/o2/token"
	amazonBaseURL  = "https://api.music.amazon.dev"

	amazonTrackBatchSize = 100
	playlistDescription  = "Transferred from Spotify"
)

// AmazonUser is the subset of GET /v1/me used for display.
type AmazonUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type createPlaylistRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Visibility  string `json:"visibility"`
}

type createPlaylistResponse struct {
	ID string `json:"id"`
}

type amazonTrack struct {
	URI    string `json:"uri"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type addTracksRequest struct {
	Tracks []amazonTrack `json:"tracks"`
}

// AmazonService writes playlists through the Amazon Music Web API.
//
// Authentication uses Login with Amazon. Every write waits on a shared [rate.Limiter].
type AmazonService struct {
	*oauthClient
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

var (
	_ DestinationClient = (*AmazonService)(nil)
	_ OAuthService      = (*AmazonService)(nil)
)

// NewAmazonService creates an Amazon Music client.
//
// Credentials may carry "api_key" (sent as x-api-key) and "base_url". A non-positive perSecond disables pacing.
func NewAmazonService(credentials map[string]string, perSecond float64) (*AmazonService, error) {
	client, err := newOAuthClient(credentials, oauth2.Endpoint{
		AuthURL:  amazonAuthURL,
		TokenURL: amazonTokenURL,
	}, []string{"profile", "amazon_music:access"})
	if err != nil {
		return nil, err
	}

	baseURL := credentials["base_url"]
	if baseURL == "" {
		baseURL = amazonBaseURL
	}

	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}

	return &AmazonService{
		oauthClient: client,
		baseURL:     baseURL,
		apiKey:      credentials["api_key"],
		limiter:     rate.NewLimiter(limit, 1),
	}, nil
}

func (s *AmazonService) Name() string {
	return "Amazon Music"
}

func (s *AmazonService) headers() map[string]string {
	if s.apiKey == "" {
		return nil
	}
	return map[string]string{"x-api-key": s.apiKey}
}

func (s *AmazonService) do(ctx context.Context, op, method, endpoint string, body, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &DestinationError{Op: op, Reason: ReasonRateLimited, Err: err}
	}

	status, err := s.doJSON(ctx, method, s.baseURL+endpoint, s.headers(), body, result)
	if err == nil {
		return nil
	}

	reason := ReasonForStatus(status)
	if status == 0 {
		var retrieveErr *oauth2.RetrieveError
		switch {
		case errors.As(err, &retrieveErr):
			reason = ReasonAuthExpired
		case !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded):
			reason = ReasonNoResponse
		}
	}
	return &DestinationError{Op: op, StatusCode: status, Reason: reason, Err: err}
}

// UserProfile retrieves the current authenticated user's profile.
func (s *AmazonService) UserProfile(ctx context.Context) (*AmazonUser, error) {
	var user AmazonUser
	if err := s.do(ctx, "profile", http.MethodGet, "/v1/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Profile returns the account summary shown after login.
func (s *AmazonService) Profile(ctx context.Context) (Profile, error) {
	user, err := s.UserProfile(ctx)
	if err != nil {
		return Profile{}, err
	}
	return Profile{ID: user.ID, DisplayName: user.DisplayName, Email: user.Email}, nil
}

// CreatePlaylist creates an empty private playlist named name.
func (s *AmazonService) CreatePlaylist(ctx context.Context, name string) (string, error) {
	var response createPlaylistResponse
	body := createPlaylistRequest{Title: name, Description: playlistDescription, Visibility: "PRIVATE"}
	if err := s.do(ctx, "create_playlist", http.MethodPost, "/v1/playlists", body, &response); err != nil {
		return "", err
	}

	if response.ID == "" {
		return "", &DestinationError{Op: "create_playlist", StatusCode: http.StatusOK, Err: fmt.Errorf("response carried no playlist id")}
	}
	return response.ID, nil
}

// AddTracks appends tracks to playlistID in batches, preserving order.
//
// A failed batch stops the operation; earlier batches stay in the playlist and the returned
// [*DestinationError] carries their length in Added.
func (s *AmazonService) AddTracks(ctx context.Context, playlistID string, tracks []models.Track) error {
	endpoint := fmt.Sprintf("/v1/playlists/%s/tracks", url.PathEscape(playlistID))

	for start := 0; start < len(tracks); start += amazonTrackBatchSize {
		end := min(start+amazonTrackBatchSize, len(tracks))

		batch := make([]amazonTrack, 0, end-start)
		for _, t := range tracks[start:end] {
			batch = append(batch, amazonTrack{URI: t.ExternalURI, Title: t.Name, Artist: t.Artist})
		}

		if err := s.do(ctx, "add_tracks", http.MethodPost, endpoint, addTracksRequest{Tracks: batch}, nil); err != nil {
			var de *DestinationError
			if errors.As(err, &de) {
				de.Added = start
			}
			return err
		}
	}
	return nil
}
