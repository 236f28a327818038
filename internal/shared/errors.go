package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrTokenExpired       = fmt.Errorf("access token expired")
	ErrTimeout            = fmt.Errorf("operation timed out")
	ErrPreconditionFailed = fmt.Errorf("precondition failed")

	// Service errors
	ErrSourceUnavailable      = fmt.Errorf("source service unavailable")
	ErrDestinationUnavailable = fmt.Errorf("destination service unavailable")
	ErrServiceUnavailable     = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound       = fmt.Errorf("playlist not found")

	// Session errors
	ErrTransitionRejected = fmt.Errorf("transition rejected")
	ErrEmptySelection     = fmt.Errorf("no playlists selected")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
