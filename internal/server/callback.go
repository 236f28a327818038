package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plx/internal/shared"
	"golang.org/x/oauth2"
)

// DefaultCallbackTimeout bounds how long a login waits for the browser.
const DefaultCallbackTimeout = 2 * time.Minute

// CallbackServer serves a single [OAuthHandler] until it produces a result.
type CallbackServer struct {
	handler *OAuthHandler
	router  *BasicRouter
	logger  *log.Logger
	timeout time.Duration
}

// NewCallbackServer wires handler into a [BasicRouter] with logging and recovery middleware.
func NewCallbackServer(handler *OAuthHandler, logger *log.Logger, timeout time.Duration) *CallbackServer {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	if timeout <= 0 {
		timeout = DefaultCallbackTimeout
	}

	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Handler(handler)

	return &CallbackServer{handler: handler, router: router, logger: logger, timeout: timeout}
}

// Listen binds addr so the browser can be opened only once the port is accepting connections.
func Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to listen on %s: %v", shared.ErrServiceUnavailable, addr, err)
	}
	return ln, nil
}

// Await serves on ln until the callback arrives, ctx is done, or the timeout elapses.
// The listener is closed before Await returns.
func (s *CallbackServer) Await(ctx context.Context, ln net.Listener) (*oauth2.Token, error) {
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Debug("callback server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	var result OAuthResult
	select {
	case result = <-s.handler.Result():
	case err := <-serveErr:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, s.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := result.Error(); err != nil {
		return nil, fmt.Errorf("authorization failed: %w", err)
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
