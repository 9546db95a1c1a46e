package platforms

import (
	"net/url"
	"strings"
)

// AuthorizeURLBuilder constructs provider consent URLs. Pure: no network
// calls, no side effects beyond the state value it mints.
type AuthorizeURLBuilder struct {
	Registry *Registry
	States   *StateCodec
}

// BuildAuthorizeURL returns the fully-qualified consent URL for a platform
// on behalf of userID. The embedded state binds the eventual callback to the
// same (user, platform) pair.
func (b *AuthorizeURLBuilder) BuildAuthorizeURL(platformID, userID string) (string, error) {
	pc, err := b.Registry.Get(platformID)
	if err != nil {
		return "", err
	}
	state, err := b.States.Encode(userID, platformID)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client_id", pc.ClientID)
	params.Set("redirect_uri", pc.RedirectURI)
	params.Set("scope", strings.Join(pc.Scopes, " "))
	params.Set("response_type", "code")
	params.Set("state", state)

	sep := "?"
	if strings.Contains(pc.AuthorizeURL, "?") {
		sep = "&"
	}
	return pc.AuthorizeURL + sep + params.Encode(), nil
}
