package platforms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reputrace/social-link/models"
)

// PlatformConfig holds the static OAuth configuration for one platform.
// Endpoints are provider-owned and baked into defaults; only the credentials
// come from the environment. Immutable for the process lifetime.
type PlatformConfig struct {
	ID              string
	DisplayName     string
	ClientID        string
	ClientSecret    string
	RedirectURI     string
	Scopes          []string
	AuthorizeURL    string
	TokenURL        string
	ProfileURL      string
	SupportsCounts  bool // whether the minimal-scope profile API exposes follower/following counts
	IssuesRefresh   bool // whether the platform issues refresh tokens at all
}

// Credentials carries the environment-supplied client credentials for one
// platform. Empty entries leave the platform registered but unusable until
// configured.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Registry maps platform IDs to their OAuth configuration. Built once at
// startup and passed by reference; never mutated afterwards.
type Registry struct {
	configs map[string]*PlatformConfig
}

// NewRegistry builds a registry for all supported platforms. baseURL is the
// public origin of this service; each platform's redirect URI becomes
// {baseURL}/api/auth/callback/{platform}. creds is keyed by platform ID.
func NewRegistry(baseURL string, creds map[string]Credentials) *Registry {
	baseURL = strings.TrimRight(baseURL, "/")
	r := &Registry{configs: make(map[string]*PlatformConfig)}
	for _, pc := range defaultConfigs() {
		pc.RedirectURI = fmt.Sprintf("%s/api/auth/callback/%s", baseURL, pc.ID)
		if c, ok := creds[pc.ID]; ok {
			pc.ClientID = c.ClientID
			pc.ClientSecret = c.ClientSecret
		}
		r.configs[pc.ID] = pc
	}
	return r
}

// Get returns the configuration for a platform ID, or an
// UnsupportedPlatformError when no entry exists.
func (r *Registry) Get(platformID string) (*PlatformConfig, error) {
	pc, ok := r.configs[platformID]
	if !ok {
		return nil, &UnsupportedPlatformError{Platform: platformID}
	}
	return pc, nil
}

// IDs returns the supported platform IDs in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.configs))
	for id := range r.configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Override replaces the endpoint URLs for a platform. Intended for dev and
// test configurations pointing at fake providers.
func (r *Registry) Override(platformID, authorizeURL, tokenURL, profileURL string) error {
	pc, ok := r.configs[platformID]
	if !ok {
		return &UnsupportedPlatformError{Platform: platformID}
	}
	if authorizeURL != "" {
		pc.AuthorizeURL = authorizeURL
	}
	if tokenURL != "" {
		pc.TokenURL = tokenURL
	}
	if profileURL != "" {
		pc.ProfileURL = profileURL
	}
	return nil
}

func defaultConfigs() []*PlatformConfig {
	return []*PlatformConfig{
		{
			ID:             models.PlatformX,
			DisplayName:    "X",
			Scopes:         []string{"tweet.read", "users.read", "offline.access"},
			AuthorizeURL:   "https://x.com/i/oauth2/authorize",
			TokenURL:       "https://api.x.com/2/oauth2/token",
			ProfileURL:     "https://api.x.com/2/users/me",
			SupportsCounts: true,
			IssuesRefresh:  true,
		},
		{
			ID:             models.PlatformFacebook,
			DisplayName:    "Facebook",
			Scopes:         []string{"public_profile", "email"},
			AuthorizeURL:   "https://www.facebook.com/v19.0/dialog/oauth",
			TokenURL:       "https://graph.facebook.com/v19.0/oauth/access_token",
			ProfileURL:     "https://graph.facebook.com/v19.0/me",
			SupportsCounts: false, // page insights permission required for counts
			IssuesRefresh:  false,
		},
		{
			ID:             models.PlatformInstagram,
			DisplayName:    "Instagram",
			Scopes:         []string{"user_profile", "user_media"},
			AuthorizeURL:   "https://api.instagram.com/oauth/authorize",
			TokenURL:       "https://api.instagram.com/oauth/access_token",
			ProfileURL:     "https://graph.instagram.com/me",
			SupportsCounts: false, // Basic Display API has no follower counts
			IssuesRefresh:  false,
		},
		{
			ID:             models.PlatformLinkedIn,
			DisplayName:    "LinkedIn",
			Scopes:         []string{"openid", "profile", "email"},
			AuthorizeURL:   "https://www.linkedin.com/oauth/v2/authorization",
			TokenURL:       "https://www.linkedin.com/oauth/v2/accessToken",
			ProfileURL:     "https://api.linkedin.com/v2/userinfo",
			SupportsCounts: false, // connection counts need a partner program scope
			IssuesRefresh:  true,
		},
		{
			ID:             models.PlatformTikTok,
			DisplayName:    "TikTok",
			Scopes:         []string{"user.info.basic", "user.info.stats"},
			AuthorizeURL:   "https://www.tiktok.com/v2/auth/authorize/",
			TokenURL:       "https://open.tiktokapis.com/v2/oauth/token/",
			ProfileURL:     "https://open.tiktokapis.com/v2/user/info/",
			SupportsCounts: true,
			IssuesRefresh:  true,
		},
		{
			ID:             models.PlatformThreads,
			DisplayName:    "Threads",
			Scopes:         []string{"threads_basic"},
			AuthorizeURL:   "https://threads.net/oauth/authorize",
			TokenURL:       "https://graph.threads.net/oauth/access_token",
			ProfileURL:     "https://graph.threads.net/v1.0/me",
			SupportsCounts: false, // no insights fields exposed yet
			IssuesRefresh:  true,
		},
	}
}
