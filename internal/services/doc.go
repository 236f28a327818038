// Package services implements the clients used by the transfer pipeline.
//
// # Client Interfaces
//
// The pipeline depends only on [SourceClient] and [DestinationClient]. [CatalogClient] adds playlist listing
// for the selection stage. Tests substitute hand-written fakes for both.
//
// # Spotify
//
// [SpotifyService] is the source. It lists playlists from /me/playlists and reads tracks from
// /playlists/{id}/tracks, following offset pagination. Items whose track was removed are skipped.
//
// # Amazon Music
//
// [AmazonService] is the destination. Playlists are created private and tracks are posted in batches
// carrying uri, title and artist. Writes are paced by a [rate.Limiter] configured from transfer.rate_limit.
//
// # OAuth
//
// Both services embed the same authorization code client. The [oauth2.Client] refreshes expired tokens
// using the refresh token and reports each new token through the callback set with SetTokenRefreshCallback,
// so the CLI can persist it.
//
// # Error Handling
//
// Source failures are [*SourceError] values matching [shared.ErrSourceUnavailable].
// Destination failures are [*DestinationError] values matching [shared.ErrDestinationUnavailable] and
// carrying a [Reason]:
//   - 401 : [ReasonAuthExpired]
//   - 403 : [ReasonForbidden]
//   - 429 : [ReasonRateLimited]
//   - no response : [ReasonNoResponse]
package services
