// Package tasks copies playlists from a source to a destination service with real-time progress reporting.
//
// # Pipeline
//
// [TransferEngine.Run] processes the requested ids strictly in order. For each id it:
//
//  1. Resolves the id against the [models.Catalog]. Absent ids become [models.PlaylistNotFound].
//  2. Fetches the tracks from the source. Failure becomes [models.FetchTracksFailed].
//  3. Creates "Created: <name>" on the destination. Failure becomes [models.CreateDestinationFailed].
//  4. Adds the tracks. Failure becomes [models.AddTracksFailed], leaving a destination playlist that is
//     empty or holds the batches written before the failure.
//
// Outcome i always describes id i. A failure only affects its own playlist.
//
// Before any stage runs both clients must report a valid session; otherwise Run returns
// [shared.ErrPreconditionFailed] and makes no calls at all.
//
// # Destination Ledger
//
// With [WithLedger], a playlist whose step 4 failed is remembered together with the number of tracks
// that reached it. A later run skips step 3 and sends only the remaining tracks, so a retry neither
// duplicates the playlist nor its leading tracks. If the remembered playlist answers not found or
// forbidden, the entry is dropped and the run falls back to steps 3 and 4.
// Without a ledger every retry creates a new playlist.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
