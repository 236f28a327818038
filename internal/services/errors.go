package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/plx/internal/shared"
)

// Reason is the sub-reason attached to a destination failure.
type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonAuthExpired
	ReasonForbidden
	ReasonRateLimited
	ReasonNoResponse
	ReasonNotFound
)

func (r Reason) String() string {
	switch r {
	case ReasonAuthExpired:
		return "auth_expired"
	case ReasonForbidden:
		return "forbidden"
	case ReasonRateLimited:
		return "rate_limited"
	case ReasonNoResponse:
		return "no_response"
	case ReasonNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Message is the user-facing explanation of the reason.
func (r Reason) Message() string {
	switch r {
	case ReasonAuthExpired:
		return "Authorization failed. Please re-authenticate."
	case ReasonForbidden:
		return "Access forbidden. Check your permissions."
	case ReasonRateLimited:
		return "Too many requests. Please wait and try again."
	case ReasonNoResponse:
		return "No response from the destination service. Check your internet connection."
	case ReasonNotFound:
		return "The destination playlist no longer exists."
	default:
		return "An unexpected error occurred."
	}
}

// ReasonForStatus maps an HTTP status code to a [Reason].
func ReasonForStatus(code int) Reason {
	switch code {
	case http.StatusUnauthorized:
		return ReasonAuthExpired
	case http.StatusForbidden:
		return ReasonForbidden
	case http.StatusTooManyRequests:
		return ReasonRateLimited
	case http.StatusNotFound:
		return ReasonNotFound
	default:
		return ReasonUnknown
	}
}

// Unusable reports whether the target playlist can no longer be written, so retrying into it is pointless.
func (r Reason) Unusable() bool {
	return r == ReasonNotFound || r == ReasonForbidden
}

// DestinationError describes a failed write against the destination service.
type DestinationError struct {
	Op         string // create_playlist, add_tracks, profile
	StatusCode int    // Zero when no response was received
	Reason     Reason
	Added      int // Tracks written before an add_tracks failure
	Err        error
}

func (e *DestinationError) Error() string {
	msg := fmt.Sprintf("%s: %s (%s)", shared.ErrDestinationUnavailable, e.Op, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets callers match [shared.ErrDestinationUnavailable] and the underlying cause.
func (e *DestinationError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrDestinationUnavailable}
	}
	return []error{shared.ErrDestinationUnavailable, e.Err}
}

// SourceError describes a failed read against the source service.
type SourceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("%s: %s", shared.ErrSourceUnavailable, e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrSourceUnavailable}
	}
	return []error{shared.ErrSourceUnavailable, e.Err}
}

// ReasonOf extracts the [Reason] from err, or [ReasonUnknown] when err is not a [*DestinationError].
func ReasonOf(err error) Reason {
	var de *DestinationError
	if errors.As(err, &de) {
		return de.Reason
	}
	return ReasonUnknown
}

// AddedBefore returns how many tracks reached the playlist before err stopped an add.
//
// Errors that are not a [*DestinationError] report zero.
func AddedBefore(err error) int {
	var de *DestinationError
	if errors.As(err, &de) {
		return de.Added
	}
	return 0
}
