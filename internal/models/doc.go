// Package models defines the domain shapes shared by the plx transfer pipeline.
//
// The package contains three groups of types:
//
// 1. Snapshots fetched from the source service, never mutated by the transfer engine
//   - [Track] : name, artist and source URI of one song
//   - [Playlist] : catalog entry for one source playlist
//   - [Catalog] : the user's playlists indexed by id, fetched once per login
//
// 2. Transfer results
//   - [OutcomeStatus] : closed set of terminal statuses for one playlist
//   - [TransferOutcome] : the status recorded for one requested playlist
//   - [TransferReport] : every outcome of one run, in request order
//
// 3. Session and persistence
//   - [WizardStage] : the five-stage wizard position
//   - [TransferRun] : a persisted report implementing [Model]
//   - [LedgerEntry] : a destination playlist left partly populated by a failed run
package models
