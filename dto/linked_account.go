package dto

import (
	"time"

	"github.com/reputrace/social-link/models"
)

// LinkedAccountResponse represents a linked account in API responses.
// Token fields are intentionally excluded for security.
type LinkedAccountResponse struct {
	Platform   string    `json:"platform"`
	Username   string    `json:"username"`
	ProfileURL string    `json:"profileUrl,omitempty"`
	AvatarURL  string    `json:"avatarUrl,omitempty"`
	Followers  int64     `json:"followers"`
	Following  int64     `json:"following"`
	Posts      int64     `json:"posts"`
	Verified   bool      `json:"verified"`
	Connected  bool      `json:"connected"`
	LastSync   time.Time `json:"lastSync"`
}

// FromLinkedAccount converts a models.LinkedAccount to LinkedAccountResponse.
func FromLinkedAccount(a *models.LinkedAccount) LinkedAccountResponse {
	return LinkedAccountResponse{
		Platform:   a.Platform,
		Username:   a.Username,
		ProfileURL: a.ProfileURL,
		AvatarURL:  a.AvatarURL,
		Followers:  a.Followers,
		Following:  a.Following,
		Posts:      a.Posts,
		Verified:   a.Verified,
		Connected:  a.Connected,
		LastSync:   a.LastSync,
	}
}

// FromLinkedAccounts converts a slice of models.LinkedAccount to a slice of
// LinkedAccountResponse.
func FromLinkedAccounts(accounts []models.LinkedAccount) []LinkedAccountResponse {
	responses := make([]LinkedAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = FromLinkedAccount(&accounts[i])
	}
	return responses
}

// PlatformResponse describes one supported platform and this user's
// connection status, including which count fields the platform's
// minimal-scope API actually populates.
type PlatformResponse struct {
	ID             string `json:"id"`
	DisplayName    string `json:"displayName"`
	Connected      bool   `json:"connected"`
	SupportsCounts bool   `json:"supportsCounts"`
	IssuesRefresh  bool   `json:"issuesRefresh"`
}
