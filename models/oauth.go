package models

// OAuthTokens holds the credentials returned by a platform token endpoint.
// RefreshToken and ExpiresIn are optional; not every platform issues them.
type OAuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type"`
}

// SocialProfile is the normalized shape shared by every platform profile
// adapter. Count fields are 0 when the platform's minimal-scope API does not
// expose them; callers must consult platform capabilities before reading a 0
// as "zero followers".
type SocialProfile struct {
	Platform   string `json:"platform"`
	Username   string `json:"username"`
	ProfileURL string `json:"profile_url,omitempty"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Followers  int64  `json:"followers"`
	Following  int64  `json:"following"`
	Posts      int64  `json:"posts"`
	Verified   bool   `json:"verified"`
}
