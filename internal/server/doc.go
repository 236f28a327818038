// Package server runs the short-lived HTTP server that receives OAuth callbacks.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
// [Middleware] wraps handlers in reverse order (last added executes first).
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code through an [Exchanger],
// and sends the result through a channel. It only processes one callback.
//
// # Login Flow
//
// The auth commands and the interactive wizard bind a listener with [Listen], open the browser at the service's
// authorization URL, then block in [CallbackServer.Await] until the callback arrives or the timeout elapses.
// The server shuts down as soon as a result is available.
package server
