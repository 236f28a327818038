package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/plx/internal/shared"
	"golang.org/x/oauth2"
)

const defaultRedirectURI = "http://127.0.0.1:3000/callback"

var errUnexpectedStatus = errors.New("unexpected status")

// oauthClient holds the authorization code flow state shared by every service.
type oauthClient struct {
	mu             sync.RWMutex
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	onTokenRefresh func(*oauth2.Token)
}

func newOAuthClient(credentials map[string]string, endpoint oauth2.Endpoint, scopes []string) (*oauthClient, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	return &oauthClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		httpClient: http.DefaultClient,
	}, nil
}

// Authenticate restores a session from credentials.
//
// Accepts either an "access_token" (with optional "refresh_token" and RFC 3339 "expiry") or an "auth_code" to exchange.
func (c *oauthClient) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		token := &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		}
		if expiry := credentials["expiry"]; expiry != "" {
			t, err := time.Parse(time.RFC3339, expiry)
			if err != nil {
				return fmt.Errorf("%w: bad expiry %q", shared.ErrInvalidCredentials, expiry)
			}
			token.Expiry = t
		}
		c.AuthenticateWithToken(ctx, token)
		return nil
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		if _, err := c.Exchange(ctx, authCode); err != nil {
			return err
		}
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// AuthenticateWithToken installs token and routes requests through a refreshing client.
func (c *oauthClient) AuthenticateWithToken(ctx context.Context, token *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Refreshes outlive the request that delivered the token.
	ctx = context.WithoutCancel(ctx)

	c.token = token
	source := &refreshableTokenSource{
		source:   c.config.TokenSource(ctx, token),
		last:     token.AccessToken,
		callback: c.tokenRefreshed,
	}
	c.httpClient = oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source))
}

// Exchange trades an authorization code for a token and authenticates with it.
func (c *oauthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	c.AuthenticateWithToken(ctx, token)
	return token, nil
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (c *oauthClient) GetAuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authenticated reports whether a token is held that is unexpired or can be refreshed.
func (c *oauthClient) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil && (c.token.Valid() || c.token.RefreshToken != "")
}

// CurrentToken returns the most recent token, or nil before login.
func (c *oauthClient) CurrentToken() *oauth2.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Logout forgets the token.
func (c *oauthClient) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	c.httpClient = http.DefaultClient
}

// SetTokenRefreshCallback registers a function called with every newly refreshed token.
func (c *oauthClient) SetTokenRefreshCallback(callback func(*oauth2.Token)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTokenRefresh = callback
}

func (c *oauthClient) tokenRefreshed(token *oauth2.Token) {
	c.mu.Lock()
	c.token = token
	callback := c.onTokenRefresh
	c.mu.Unlock()

	if callback != nil {
		callback(token)
	}
}

func (c *oauthClient) client() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpClient
}

// doJSON sends body as JSON and decodes a 2xx response into result.
//
// The returned status is zero when no response was received.
func (c *oauthClient) doJSON(ctx context.Context, method, endpoint string, headers map[string]string, body, result any) (int, error) {
	if !c.Authenticated() {
		return 0, shared.ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("%w %d: %s", errUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports every token it has not seen before.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	last     string
	callback func(*oauth2.Token)
	mu       sync.Mutex
}

func (s *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := token.AccessToken != s.last
	s.last = token.AccessToken
	s.mu.Unlock()

	if changed && s.callback != nil {
		s.callback(token)
	}
	return token, nil
}
