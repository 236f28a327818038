package server

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sync"

	"github.com/desertthunder/plx/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultCallbackPath is served when no redirect URI is configured.
const DefaultCallbackPath = "/callback"

// Exchanger trades an authorization code for a token.
//
// [services.OAuthService] implementations authenticate themselves as part of the exchange.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the authorization code callback for one login attempt.
type OAuthHandler struct {
	exchanger   Exchanger
	state       string
	path        string
	service     string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// OAuthOption configures an [OAuthHandler].
type OAuthOption func(*OAuthHandler)

// WithCallbackPath serves the callback on path instead of [DefaultCallbackPath].
func WithCallbackPath(path string) OAuthOption {
	return func(h *OAuthHandler) {
		if path != "" {
			h.path = path
		}
	}
}

// WithServiceName sets the service name shown on the success page.
func WithServiceName(name string) OAuthOption {
	return func(h *OAuthHandler) { h.service = name }
}

// NewOAuthHandler creates a handler that exchanges the callback's code through exchanger.
// The state token should be cryptographically random; see [shared.GenerateState].
func NewOAuthHandler(exchanger Exchanger, state string, opts ...OAuthOption) *OAuthHandler {
	h := &OAuthHandler{
		exchanger:  exchanger,
		state:      state,
		path:       DefaultCallbackPath,
		resultChan: make(chan OAuthResult, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CallbackPath extracts the path component of a redirect URI.
func CallbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" {
		return DefaultCallbackPath
	}
	return u.Path
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP validates the state parameter, exchanges the code, and publishes the outcome on [OAuthHandler.Result].
//
// Only the first callback is processed.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		err := fmt.Errorf("%w: %s - %s", shared.ErrAuthFailed, query.Get("error"), query.Get("error_description"))
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.Exchange(r.Context(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	title := "Authorization Successful"
	if h.service != "" {
		title = html.EscapeString(h.service) + " " + title
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, successPage, title, title)
}

// Send publishes the result. Calls after the first are dropped.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns a channel that receives exactly one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

const successPage = `<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .box { text-align: center; background: white; padding: 2rem;
               border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #25d1da; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="box">
        <h1>✓ %s</h1>
        <p>You can close this window and return to plx.</p>
    </div>
</body>
</html>
`
