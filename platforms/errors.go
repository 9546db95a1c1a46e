package platforms

import "fmt"

// UnsupportedPlatformError indicates a platform ID with no registry entry.
// This is a programmer or configuration error, not a user-recoverable state.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %s", e.Platform)
}

// InvalidStateError indicates the OAuth state parameter did not verify
// against the requesting (user, platform) pair. The flow must be restarted;
// no external call is made when this is returned.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid oauth state: %s", e.Reason)
}

// TokenExchangeError indicates the platform token endpoint rejected a
// request. Authorization codes are single-use, so callers must not retry the
// same exchange.
type TokenExchangeError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *TokenExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed for %s: status %d: %s", e.Platform, e.StatusCode, e.Body)
}

// ProfileFetchError indicates a platform profile endpoint returned a
// non-success response for an otherwise valid access token.
type ProfileFetchError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *ProfileFetchError) Error() string {
	return fmt.Sprintf("profile fetch failed for %s: status %d: %s", e.Platform, e.StatusCode, e.Body)
}
