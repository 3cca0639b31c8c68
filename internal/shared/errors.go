package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// OAuth flow errors
	ErrStateMismatch = fmt.Errorf("oauth state mismatch")
	ErrTokenExchange = fmt.Errorf("token exchange failed")
	ErrProfileFetch  = fmt.Errorf("profile fetch failed")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")

	// Suggestion errors
	ErrEmptyPrompt          = fmt.Errorf("missing prompt")
	ErrProviderUnreachable  = fmt.Errorf("model provider unreachable")
	ErrInvalidModelResponse = fmt.Errorf("invalid model response")

	// Playlist errors
	ErrInvalidRequest = fmt.Errorf("missing name or tracks")
	ErrPlaylistCreate = fmt.Errorf("create playlist failed")
	ErrAddTracks      = fmt.Errorf("add tracks failed")
	ErrTrackNotFound  = fmt.Errorf("track not found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
)
