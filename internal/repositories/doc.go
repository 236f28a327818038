// Package repositories implements SQLite persistence for transfer runs.
//
// Playlists and tracks are never stored: they are fetched fresh from the source on every login.
// Only what outlives a session is kept:
//   - [TransferRunRepository] : completed reports with their outcomes in request order
//   - [LedgerRepository] : destination playlists left partly populated by a failed populate stage, with the
//     number of tracks already written
//
// Runs support soft deletes via deleted_at timestamps and are excluded from queries once deleted.
// The [NextSequence] function atomically increments the transfer_runs_sequence counter to number runs.
package repositories
