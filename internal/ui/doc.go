// Package ui implements the interactive transfer wizard using bubbletea's Elm architecture.
//
// The screen shown is a function of the [session.Session] stage:
//  1. Login: log in to the source service and fetch the catalog
//  2. Select playlists: multi-select list (space toggles, enter continues when at least one is selected)
//  3. Destination login: log in to the destination and start the transfer
//  4. Transferring: progress streamed from the transfer engine
//  5. Complete: per-playlist report
//
// A run with any failed playlist returns to the destination screen with the report shown and
// the selection kept, so retrying is a single key press.
//
// Logins are injected as [Authenticator] funcs so the model never talks to a browser or callback server directly.
package ui
