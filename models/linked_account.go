package models

import "time"

// LinkedAccount stores the link between a dashboard user and their social
// platform account: the normalized profile snapshot plus OAuth credentials.
// One row per (user, platform); disconnecting keeps the row for history.
type LinkedAccount struct {
	ID           string     `json:"id" db:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" db:"user_id" gorm:"uniqueIndex:idx_linked_account_identity"`
	Platform     string     `json:"platform" db:"platform" gorm:"uniqueIndex:idx_linked_account_identity"`
	Username     string     `json:"username" db:"username"`
	ProfileURL   string     `json:"profile_url,omitempty" db:"profile_url"`
	AvatarURL    string     `json:"avatar_url,omitempty" db:"avatar_url"`
	Followers    int64      `json:"followers" db:"followers"`
	Following    int64      `json:"following" db:"following"`
	Posts        int64      `json:"posts" db:"posts"`
	Verified     bool       `json:"verified" db:"verified"`
	Connected    bool       `json:"connected" db:"connected"`
	LastSync     time.Time  `json:"last_sync" db:"last_sync"`
	AccessToken  string     `json:"-" db:"access_token"`
	RefreshToken string     `json:"-" db:"refresh_token"`
	TokenExpiry  *time.Time `json:"-" db:"token_expiry"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for GORM.
func (LinkedAccount) TableName() string {
	return "linked_accounts"
}

// TokenExpired reports whether the stored access token is past its expiry.
// A nil expiry means the provider issues non-expiring tokens.
func (a *LinkedAccount) TokenExpired(now time.Time) bool {
	if a.TokenExpiry == nil {
		return false
	}
	return !now.Before(*a.TokenExpiry)
}

// Supported platform IDs
const (
	PlatformX         = "x"
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformTikTok    = "tiktok"
	PlatformThreads   = "threads"
)
