package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/plx/internal/shared"
	"golang.org/x/oauth2"
)

func newTestSpotify(t *testing.T, baseURL string) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "test_token"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	srv.baseURL = baseURL
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://127.0.0.1:4000/callback",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.RedirectURL != "http://127.0.0.1:4000/callback" {
				t.Errorf("unexpected redirect URI %s", srv.config.RedirectURL)
			}
			if srv.Authenticated() {
				t.Error("a new service should not be authenticated")
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_secret": "test_client_secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(map[string]string{"client_id": "test_client_id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.config.RedirectURL != defaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv := newTestSpotify(t, "")

		authURL := srv.GetAuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-read-private"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q, got %s", want, authURL)
			}
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		t.Run("Missing Credentials", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
			if srv.Authenticated() {
				t.Error("expected service to stay unauthenticated")
			}
		})

		t.Run("Bad Expiry", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{"access_token": "a", "expiry": "tomorrow"})
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})

		t.Run("Expired Without Refresh Token", func(t *testing.T) {
			expiry := time.Now().Add(-time.Hour).Format(time.RFC3339)
			if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "a", "expiry": expiry}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if srv.Authenticated() {
				t.Error("an expired token without refresh token is not a valid session")
			}
		})

		t.Run("Expired With Refresh Token", func(t *testing.T) {
			expiry := time.Now().Add(-time.Hour).Format(time.RFC3339)
			creds := map[string]string{"access_token": "a", "refresh_token": "r", "expiry": expiry}
			if err := srv.Authenticate(context.Background(), creds); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !srv.Authenticated() {
				t.Error("a refreshable token is a valid session")
			}
		})

		t.Run("With Access Token", func(t *testing.T) {
			if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "test_access_token"}); err != nil {
				t.Fatalf("expected no error with access token, got %v", err)
			}
			if !srv.Authenticated() {
				t.Error("expected service to be authenticated")
			}
			if srv.CurrentToken().AccessToken != "test_access_token" {
				t.Errorf("expected access token to be 'test_access_token', got %s", srv.CurrentToken().AccessToken)
			}
		})

		t.Run("Logout", func(t *testing.T) {
			srv.Logout()
			if srv.Authenticated() || srv.CurrentToken() != nil {
				t.Error("expected logout to drop the token")
			}
		})
	})

	t.Run("GetPlaylists", func(t *testing.T) {
		var offsets []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/playlists" {
				t.Errorf("expected path /me/playlists, got %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer test_token" {
				t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
			}

			offset := r.URL.Query().Get("offset")
			offsets = append(offsets, offset)

			w.Header().Set("Content-Type", "application/json")
			if offset == "0" {
				next := "next-page"
				json.NewEncoder(w).Encode(SpotifyPaginatedPlaylists{
					Items: []SpotifySimplePlaylist{
						{ID: "p1", Name: "Road Trip", Owner: Owner{DisplayName: "dana"}, Tracks: simplePlaylistTracks{Total: 12}, Images: []SpotifyImage{{URL: "http://img/1"}}},
					},
					Next: &next,
				})
				return
			}
			json.NewEncoder(w).Encode(SpotifyPaginatedPlaylists{
				Items: []SpotifySimplePlaylist{{ID: "p2", Name: "Focus", Tracks: simplePlaylistTracks{Total: 3}}},
			})
		}))
		defer server.Close()

		srv := newTestSpotify(t, server.URL)
		playlists, err := srv.GetPlaylists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		if strings.Join(offsets, ",") != "0,1" {
			t.Errorf("expected offsets 0,1, got %v", offsets)
		}

		first := playlists[0]
		if first.ID != "p1" || first.OwnerDisplayName != "dana" || first.TrackCount != 12 || first.ImageURL != "http://img/1" {
			t.Errorf("unexpected first playlist %+v", first)
		}

		catalog, err := LoadCatalog(context.Background(), srv)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := catalog.Resolve("p2"); !ok {
			t.Error("expected catalog to contain p2")
		}
	})

	t.Run("FetchTracks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/playlists/p1/tracks" {
				t.Errorf("expected path /playlists/p1/tracks, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("limit") != "100" {
				t.Errorf("expected limit 100, got %s", r.URL.Query().Get("limit"))
			}

			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"items": [
					{"track": {"name": "One", "uri": "spotify:track:1", "artists": [{"name": "A"}, {"name": "B"}]}},
					{"track": null},
					{"track": {"name": "Two", "uri": "spotify:track:2", "artists": []}}
				],
				"total": 3,
				"next": null
			}`)
		}))
		defer server.Close()

		srv := newTestSpotify(t, server.URL)
		tracks, err := srv.FetchTracks(context.Background(), "p1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(tracks) != 2 {
			t.Fatalf("expected null items to be skipped, got %d tracks", len(tracks))
		}
		if tracks[0].Artist != "A" || tracks[0].ExternalURI != "spotify:track:1" {
			t.Errorf("expected first artist and uri, got %+v", tracks[0])
		}
		if tracks[1].Artist != "" {
			t.Errorf("expected empty artist, got %q", tracks[1].Artist)
		}
	})

	t.Run("FetchTracks Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"status":404,"message":"Not found."}}`, http.StatusNotFound)
		}))
		defer server.Close()

		srv := newTestSpotify(t, server.URL)
		_, err := srv.FetchTracks(context.Background(), "gone")
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Fatalf("expected ErrSourceUnavailable, got %v", err)
		}

		var se *SourceError
		if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound || se.Op != "fetch_tracks" {
			t.Errorf("expected SourceError with status 404, got %#v", err)
		}
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		srv, err := NewSpotifyService(map[string]string{"client_id": "id", "client_secret": "secret"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.FetchTracks(context.Background(), "p1")
		if !errors.Is(err, shared.ErrNotAuthenticated) || !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrNotAuthenticated wrapped as source error, got %v", err)
		}
	})
}

func TestRefreshableTokenSource(t *testing.T) {
	t.Run("calls callback on first token fetch", func(t *testing.T) {
		var captured *oauth2.Token
		source := &refreshableTokenSource{
			source:   &mockTokenSource{token: &oauth2.Token{AccessToken: "test_token"}},
			callback: func(token *oauth2.Token) { captured = token },
		}

		token, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if captured == nil || captured.AccessToken != "test_token" {
			t.Errorf("expected callback with test_token, got %v", captured)
		}
		if token.AccessToken != "test_token" {
			t.Errorf("expected returned token to be 'test_token', got %s", token.AccessToken)
		}
	})

	t.Run("calls callback only when token changes", func(t *testing.T) {
		callCount := 0
		mock := &mockTokenSource{token: &oauth2.Token{AccessToken: "token1"}}
		source := &refreshableTokenSource{
			source:   mock,
			last:     "token1",
			callback: func(*oauth2.Token) { callCount++ },
		}

		source.Token()
		source.Token()
		if callCount != 0 {
			t.Errorf("expected no callback for the known token, got %d", callCount)
		}

		mock.token = &oauth2.Token{AccessToken: "token2"}
		source.Token()
		source.Token()
		if callCount != 1 {
			t.Errorf("expected callback called once, got %d", callCount)
		}
	})

	t.Run("handles nil callback", func(t *testing.T) {
		source := &refreshableTokenSource{source: &mockTokenSource{token: &oauth2.Token{AccessToken: "t"}}}
		if _, err := source.Token(); err != nil {
			t.Fatalf("expected no error with nil callback, got %v", err)
		}
	})

	t.Run("propagates source errors", func(t *testing.T) {
		source := &refreshableTokenSource{
			source:   &mockTokenSource{err: errors.New("token source error")},
			callback: func(*oauth2.Token) { t.Error("callback should not be called on error") },
		}

		token, err := source.Token()
		if err == nil || !strings.Contains(err.Error(), "token source error") {
			t.Errorf("expected source error, got %v", err)
		}
		if token != nil {
			t.Error("expected nil token on error")
		}
	})

	t.Run("service callback receives refreshed token", func(t *testing.T) {
		srv := newTestSpotify(t, "")

		var got *oauth2.Token
		srv.SetTokenRefreshCallback(func(token *oauth2.Token) { got = token })
		srv.tokenRefreshed(&oauth2.Token{AccessToken: "fresh"})

		if got == nil || got.AccessToken != "fresh" {
			t.Errorf("expected callback with fresh token, got %v", got)
		}
		if srv.CurrentToken().AccessToken != "fresh" {
			t.Error("expected service to keep the refreshed token")
		}
	})
}

// mockTokenSource implements [oauth2.TokenSource] for testing
type mockTokenSource struct {
	token *oauth2.Token
	err   error
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	return m.token, m.err
}
