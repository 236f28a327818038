package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutcomeStatus is the terminal status of one playlist's transfer.
//
// The set is closed: every switch over it should handle all five values.
type OutcomeStatus int

const (
	PlaylistNotFound OutcomeStatus = iota + 1
	FetchTracksFailed
	CreateDestinationFailed
	AddTracksFailed
	Succeeded
)

var outcomeStatuses = []OutcomeStatus{
	PlaylistNotFound, FetchTracksFailed, CreateDestinationFailed, AddTracksFailed, Succeeded,
}

func (s OutcomeStatus) String() string {
	switch s {
	case PlaylistNotFound:
		return "playlist_not_found"
	case FetchTracksFailed:
		return "fetch_tracks_failed"
	case CreateDestinationFailed:
		return "create_destination_failed"
	case AddTracksFailed:
		return "add_tracks_failed"
	case Succeeded:
		return "succeeded"
	default:
		return ""
	}
}

// Message is the one-line, user-facing rendering of the status.
func (s OutcomeStatus) Message() string {
	switch s {
	case PlaylistNotFound:
		return "Failed: Playlist not found"
	case FetchTracksFailed:
		return "Failed: Error fetching tracks"
	case CreateDestinationFailed:
		return "Failed: Error creating destination playlist"
	case AddTracksFailed:
		return "Failed: Error adding tracks"
	case Succeeded:
		return "Transferred successfully"
	default:
		return "Unknown"
	}
}

// Retryable reports whether re-running the transfer for this playlist can change the result.
func (s OutcomeStatus) Retryable() bool {
	switch s {
	case FetchTracksFailed, CreateDestinationFailed, AddTracksFailed:
		return true
	default:
		return false
	}
}

// ParseOutcomeStatus is the inverse of [OutcomeStatus.String].
func ParseOutcomeStatus(s string) (OutcomeStatus, error) {
	for _, status := range outcomeStatuses {
		if status.String() == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown outcome status %q", s)
}

func (s OutcomeStatus) MarshalText() ([]byte, error) {
	if s.String() == "" {
		return nil, fmt.Errorf("invalid outcome status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *OutcomeStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcomeStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// TransferOutcome records what happened to one requested playlist.
type TransferOutcome struct {
	SourcePlaylistID      string        `json:"source_playlist_id"`
	SourcePlaylistName    string        `json:"source_playlist_name"`
	Status                OutcomeStatus `json:"status"`
	DestinationPlaylistID string        `json:"destination_playlist_id,omitempty"` // Set once the create stage succeeded
	Error                 string        `json:"error,omitempty"`                   // Stage error text for non-success outcomes
}

// Line renders the outcome as "<name>: <status message>".
func (o TransferOutcome) Line() string {
	name := o.SourcePlaylistName
	if name == "" {
		name = o.SourcePlaylistID
	}
	return fmt.Sprintf("%s: %s", name, o.Status.Message())
}

// TransferReport is the ordered, immutable result of one transfer run.
//
// Outcome i always belongs to requested id i.
type TransferReport struct {
	outcomes    []TransferOutcome
	startedAt   time.Time
	completedAt time.Time
}

// NewTransferReport freezes outcomes into a report. The slice is copied.
func NewTransferReport(outcomes []TransferOutcome, startedAt, completedAt time.Time) *TransferReport {
	return &TransferReport{
		outcomes:    append([]TransferOutcome(nil), outcomes...),
		startedAt:   startedAt,
		completedAt: completedAt,
	}
}

func (r *TransferReport) Len() int {
	if r == nil {
		return 0
	}
	return len(r.outcomes)
}

// At returns the outcome at position i, or the zero outcome when i is out of range.
func (r *TransferReport) At(i int) TransferOutcome {
	if i < 0 || i >= r.Len() {
		return TransferOutcome{}
	}
	return r.outcomes[i]
}

// Outcomes returns a copy of every outcome in request order.
func (r *TransferReport) Outcomes() []TransferOutcome {
	if r == nil {
		return nil
	}
	return append([]TransferOutcome(nil), r.outcomes...)
}

// StartedAt is the zero time for a nil report.
func (r *TransferReport) StartedAt() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.startedAt
}

func (r *TransferReport) CompletedAt() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.completedAt
}

// AllSucceeded reports whether every outcome is [Succeeded].
//
// An empty report has nothing succeeded and returns false.
func (r *TransferReport) AllSucceeded() bool {
	if r.Len() == 0 {
		return false
	}
	for _, o := range r.outcomes {
		if o.Status != Succeeded {
			return false
		}
	}
	return true
}

// Count returns how many outcomes have the given status.
func (r *TransferReport) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes() {
		if o.Status == status {
			n++
		}
	}
	return n
}

// RetryIDs returns the source ids whose outcome is retryable, in request order.
func (r *TransferReport) RetryIDs() []string {
	var ids []string
	for _, o := range r.Outcomes() {
		if o.Status.Retryable() {
			ids = append(ids, o.SourcePlaylistID)
		}
	}
	return ids
}

type reportJSON struct {
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
	Succeeded   int               `json:"succeeded"`
	Total       int               `json:"total"`
	Outcomes    []TransferOutcome `json:"outcomes"`
}

func (r *TransferReport) MarshalJSON() ([]byte, error) {
	outcomes := r.Outcomes()
	if outcomes == nil {
		outcomes = []TransferOutcome{}
	}
	return json.Marshal(reportJSON{
		StartedAt:   r.StartedAt(),
		CompletedAt: r.CompletedAt(),
		Succeeded:   r.Count(Succeeded),
		Total:       r.Len(),
		Outcomes:    outcomes,
	})
}
